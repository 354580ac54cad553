// Package app implements the interactive console flows: the top-level menu,
// persona selection, the conversation loader and the turn loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"persona-chat/internal/chat"
	"persona-chat/internal/console"
	"persona-chat/internal/llm"
	"persona-chat/internal/store"
)

// ErrInvalidSelection reports a bad menu index or malformed numeric input.
// It terminates the current flow; there is no re-prompting.
var ErrInvalidSelection = errors.New("invalid selection")

const banner = "\n" +
	" __        __   _                          _ \n" +
	" \\ \\      / /__| | ___ ___  _ __ ___   ___| |\n" +
	"  \\ \\ /\\ / / _ \\ |/ __/ _ \\| '_ ` _ \\ / _ \\ |\n" +
	"   \\ V  V /  __/ | (_| (_) | | | | | |  __/_|\n" +
	"    \\_/\\_/ \\___|_|\\___\\___/|_| |_| |_|\\___(_)\n" +
	"\n" +
	"  ----- Welcome to my chat application! -----\n"

type App struct {
	Console *console.Console
	Client  llm.Client
	Store   *store.Store
	Catalog chat.Catalog

	// StoreConversation controls whether a finished session is summarized
	// and persisted.
	StoreConversation bool
	// RequestTimeout bounds each generation backend call; zero means no bound.
	RequestTimeout time.Duration
}

// Run shows the top-level menu and dispatches to the loader or a new
// conversation.
func (a *App) Run(ctx context.Context) error {
	a.Console.Say(banner)
	a.Console.Say("What do you want to do? \n[0] continue a conversation \n[1] start a conversation")
	input, err := a.Console.Prompt("You: ")
	if err != nil {
		return err
	}
	switch input {
	case "0":
		return a.runLoader(ctx)
	case "1":
		return a.startNew(ctx)
	default:
		return fmt.Errorf("%w: please enter either 0 or 1", ErrInvalidSelection)
	}
}

func (a *App) startNew(ctx context.Context) error {
	persona, err := a.choosePersona()
	if err != nil {
		return err
	}
	sess := chat.NewSession(persona, a.Client)
	return a.runSession(ctx, sess)
}

// runLoader lists saved conversations and resumes the selected one. The
// "cancel" sentinel is ordinary control flow, not an error.
func (a *App) runLoader(ctx context.Context) error {
	ids, err := a.Store.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return a.handleEmptyStore(ctx)
	}

	a.Console.Say("Saved conversations:")
	for i, id := range ids {
		summary, err := a.Store.Load(id)
		if err != nil {
			return err
		}
		a.Console.Say("[%d] %s, topic: %s", i, strings.TrimSuffix(id, ".json"), summary.Topic)
	}

	input, err := a.Console.Prompt("Choose the conversation to continue (enter the index or 'cancel'): ")
	if err != nil {
		return err
	}
	if strings.ToLower(input) == "cancel" {
		return nil
	}
	idx, err := strconv.Atoi(input)
	if err != nil || idx < 0 || idx >= len(ids) {
		return fmt.Errorf("%w: please enter an appropriate, numerical index or 'cancel'", ErrInvalidSelection)
	}

	summary, err := a.Store.Load(ids[idx])
	if err != nil {
		return err
	}
	// The stored bot name must belong to the catalog before resuming.
	if _, err := a.Catalog.ByName(summary.BotName); err != nil {
		return err
	}
	a.Console.Say("Loaded conversation from %s", ids[idx])

	persona, err := a.choosePersona()
	if err != nil {
		return err
	}
	sess := chat.ResumeSession(persona, a.Client, summary.Messages)
	return a.runSession(ctx, sess)
}

func (a *App) handleEmptyStore(ctx context.Context) error {
	a.Console.Say("No saved conversations found. Would you like to start a new conversation?")
	a.Console.Say("[0] yes\n[1] no")
	input, err := a.Console.Prompt("You: ")
	if err != nil {
		return err
	}
	switch input {
	case "0":
		return a.startNew(ctx)
	case "1":
		return nil
	default:
		return fmt.Errorf("%w: please enter either 0 or 1", ErrInvalidSelection)
	}
}

func (a *App) choosePersona() (chat.Persona, error) {
	a.Console.Say("With whom would you like to chat today?")
	for i, name := range a.Catalog.Names() {
		a.Console.Say("[%d] %s", i, name)
	}
	input, err := a.Console.Prompt("You: ")
	if err != nil {
		return chat.Persona{}, err
	}
	idx, err := strconv.Atoi(input)
	if err != nil {
		return chat.Persona{}, fmt.Errorf("%w: please enter a persona index", ErrInvalidSelection)
	}
	persona, err := a.Catalog.ByIndex(idx)
	if err != nil {
		return chat.Persona{}, fmt.Errorf("%w: please enter a persona index between 0 and %d", ErrInvalidSelection, a.Catalog.Len()-1)
	}
	return persona, nil
}

// runSession drives the turn loop until the exit cue, then collects and
// persists the summary when storing is enabled.
func (a *App) runSession(ctx context.Context, sess *chat.Session) error {
	persona := sess.Persona()
	a.Console.Say("%s: %s", persona.Name, persona.StartPrompt)

	for {
		input, err := a.Console.Prompt("You: ")
		if err != nil {
			return err
		}

		if sess.IsExitCue(input) {
			a.Console.Say("%s", sess.Close())
			if !a.StoreConversation {
				return nil
			}
			summary := chat.Collect(sess.Log(), persona)
			id, err := a.Store.Save(summary)
			if err != nil {
				return err
			}
			log.Info().Str("artifact", id).Str("topic", summary.Topic).Msg("conversation stored")
			return nil
		}

		reply, err := a.advance(ctx, sess, input)
		if err != nil {
			return err
		}
		a.Console.Say("%s", reply)
	}
}

func (a *App) advance(ctx context.Context, sess *chat.Session, input string) (string, error) {
	if a.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.RequestTimeout)
		defer cancel()
	}
	return sess.Advance(ctx, input)
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"persona-chat/internal/llm"
)

var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrSessionClosed    = errors.New("session is closed")
)

// Session drives the turn loop for one persona against the generation
// backend. It exclusively owns its Log for the session's duration.
type Session struct {
	persona Persona
	client  llm.Client
	log     *Log
	closed  bool
}

// NewSession starts a fresh session: the log is seeded with a single system
// message carrying the persona's personality.
func NewSession(persona Persona, client llm.Client) *Session {
	l := NewLog(Message{Role: RoleSystem, Content: persona.Personality})
	return &Session{persona: persona, client: client, log: l}
}

// ResumeSession continues a stored transcript. Prior system messages are
// stripped and the chosen persona's personality is appended in their place,
// so the old conversation carries on in the new persona's voice.
func ResumeSession(persona Persona, client llm.Client, prior []Message) *Session {
	l := NewLog(prior...)
	l.ReplaceSystem(persona.Personality)
	return &Session{persona: persona, client: client, log: l}
}

func (s *Session) Persona() Persona { return s.persona }

// Log exposes the transcript for statistics collection. Read-only use.
func (s *Session) Log() *Log { return s.log }

// IsExitCue reports whether input terminates the session. Exact,
// case-sensitive match.
func (s *Session) IsExitCue(input string) bool {
	return input == s.persona.ExitCue
}

// Advance runs one turn: append the user's text, ask the backend for a
// completion, append and return the reply prefixed with the persona's name.
// On backend failure the already-appended user message is kept: a retried
// turn must not lose the user-authored input from the accounting.
func (s *Session) Advance(ctx context.Context, userText string) (string, error) {
	if s.closed {
		return "", fmt.Errorf("%w: cannot advance", ErrSessionClosed)
	}

	if err := s.log.Append(RoleUser, userText); err != nil {
		return "", err
	}

	msgs := s.log.Messages()
	llmMsgs := make([]llm.Message, len(msgs))
	for i, m := range msgs {
		llmMsgs[i] = llm.Message{Role: string(m.Role), Content: m.Content}
	}

	started := time.Now()
	resp, err := s.client.Generate(ctx, llmMsgs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	log.Debug().
		Str("persona", s.persona.Name).
		Str("model", resp.Model).
		Int("total_tokens", resp.TotalTokens).
		Dur("elapsed", time.Since(started)).
		Msg("turn completed")

	if err := s.log.Append(RoleAssistant, resp.Content); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %s", s.persona.Name, resp.Content), nil
}

// Close transitions the session to its terminal state and returns the
// persona's sign-off line. Further Advance calls fail with ErrSessionClosed.
func (s *Session) Close() string {
	s.closed = true
	return fmt.Sprintf("%s: %s", s.persona.Name, s.persona.Goodbye)
}

func (s *Session) Closed() bool { return s.closed }

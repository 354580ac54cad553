package chat

import (
	"errors"
	"fmt"
)

var ErrUnknownPersona = errors.New("unknown persona")

const (
	DefaultExitCue = "EXIT"
	DefaultGoodbye = "See you next time."
)

// Persona is the fixed identity bound to a session: display name, system
// personality text, opening line, the exit sentinel and the sign-off line.
// Immutable for the session's lifetime.
type Persona struct {
	Name        string
	Personality string
	StartPrompt string
	ExitCue     string
	Goodbye     string
}

// Catalog is an immutable registry of selectable personas, built once at
// startup and passed by value.
type Catalog struct {
	personas []Persona
}

func NewCatalog() Catalog {
	return Catalog{personas: []Persona{
		{
			Name:        "Henry",
			Personality: "You are a chatbot named Henry and should try to make as many jokes as possible, whilst staying relevant to the conversation.",
			StartPrompt: "Hi There, I am Henry the chatbot. What would you like to chat about today?",
			ExitCue:     DefaultExitCue,
			Goodbye:     DefaultGoodbye,
		},
		{
			Name:        "Vera",
			Personality: "You are a very sad chatbot named Vera and try respond as pessimistically as possible.",
			StartPrompt: "Hello, are you also very sad today? What is happening today?",
			ExitCue:     DefaultExitCue,
			Goodbye:     DefaultGoodbye,
		},
	}}
}

func (c Catalog) Len() int { return len(c.personas) }

func (c Catalog) Names() []string {
	names := make([]string, len(c.personas))
	for i, p := range c.personas {
		names[i] = p.Name
	}
	return names
}

func (c Catalog) ByIndex(i int) (Persona, error) {
	if i < 0 || i >= len(c.personas) {
		return Persona{}, fmt.Errorf("%w: index %d", ErrUnknownPersona, i)
	}
	return c.personas[i], nil
}

func (c Catalog) ByName(name string) (Persona, error) {
	for _, p := range c.personas {
		if p.Name == name {
			return p, nil
		}
	}
	return Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, name)
}

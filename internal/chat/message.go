package chat

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var ErrInvalidRole = errors.New("invalid message role")

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single transcript entry. Immutable once appended; sequence
// position is the only ordering key.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Log is the ordered transcript of one session. Append-only while the
// session is live; ReplaceSystem is used only when resuming a stored
// transcript under a new persona.
type Log struct {
	messages []Message
}

func NewLog(messages ...Message) *Log {
	l := &Log{}
	l.messages = append(l.messages, messages...)
	return l
}

func (l *Log) Append(role Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	l.messages = append(l.messages, Message{Role: role, Content: content})
	return nil
}

func (l *Log) Len() int { return len(l.messages) }

// Messages returns a copy so callers cannot mutate internal state.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Filter returns the contents of every message with the given role,
// preserving relative order. Re-callable any number of times.
func (l *Log) Filter(role Role) []string {
	var out []string
	for _, m := range l.messages {
		if m.Role == role {
			out = append(out, m.Content)
		}
	}
	return out
}

// ReplaceSystem drops every system entry and appends exactly one new system
// message at the tail. Non-system messages keep their relative order. The
// tail placement mirrors the recorded transcripts this tool replays: after a
// resume the backend sees the personality as the most recent instruction.
func (l *Log) ReplaceSystem(content string) {
	filtered := make([]Message, 0, len(l.messages)+1)
	for _, m := range l.messages {
		if m.Role != RoleSystem {
			filtered = append(filtered, m)
		}
	}
	filtered = append(filtered, Message{Role: RoleSystem, Content: content})
	l.messages = filtered
}

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/llm"
)

type stubClient struct {
	replies []string
	err     error
	calls   [][]llm.Message
}

func (s *stubClient) Generate(_ context.Context, messages []llm.Message) (llm.Response, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return llm.Response{}, s.err
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return llm.Response{Content: reply, Model: "stub"}, nil
}

func testPersona() Persona {
	return Persona{
		Name:        "Vera",
		Personality: "You are a very sad chatbot named Vera and try respond as pessimistically as possible.",
		StartPrompt: "Hello, are you also very sad today? What is happening today?",
		ExitCue:     DefaultExitCue,
		Goodbye:     DefaultGoodbye,
	}
}

func TestSessionTurnLoop(t *testing.T) {
	client := &stubClient{replies: []string{"gloomy", "still gloomy"}}
	sess := NewSession(testPersona(), client)

	require.Equal(t, 1, sess.Log().Len())

	reply, err := sess.Advance(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Vera: gloomy", reply)

	reply, err = sess.Advance(context.Background(), "why so sad")
	require.NoError(t, err)
	assert.Equal(t, "Vera: still gloomy", reply)

	// 1 system message plus a user/assistant pair per turn
	msgs := sess.Log().Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, msgs[1])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "gloomy"}, msgs[2])
	assert.Equal(t, Message{Role: RoleUser, Content: "why so sad"}, msgs[3])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "still gloomy"}, msgs[4])

	// The backend always sees the system message first and the full history
	require.Len(t, client.calls, 2)
	assert.Equal(t, "system", client.calls[0][0].Role)
	require.Len(t, client.calls[1], 4)
}

func TestSessionAdvanceFailureKeepsUserMessage(t *testing.T) {
	client := &stubClient{err: errors.New("rate limited")}
	sess := NewSession(testPersona(), client)

	_, err := sess.Advance(context.Background(), "hi")
	require.ErrorIs(t, err, ErrGenerationFailed)

	// The user message stands; only the assistant reply is missing.
	msgs := sess.Log().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, msgs[1])
}

func TestSessionClose(t *testing.T) {
	sess := NewSession(testPersona(), &stubClient{})

	assert.True(t, sess.IsExitCue("EXIT"))
	assert.False(t, sess.IsExitCue("exit"))

	goodbye := sess.Close()
	assert.Equal(t, "Vera: See you next time.", goodbye)
	assert.True(t, sess.Closed())

	_, err := sess.Advance(context.Background(), "one more")
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestResumeSessionReplacesSystemAtTail(t *testing.T) {
	prior := []Message{
		{Role: RoleSystem, Content: "old personality"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "gloomy"},
	}
	catalog := NewCatalog()
	henry, err := catalog.ByName("Henry")
	require.NoError(t, err)

	sess := ResumeSession(henry, &stubClient{}, prior)

	msgs := sess.Log().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, msgs[0])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "gloomy"}, msgs[1])
	assert.Equal(t, Message{Role: RoleSystem, Content: henry.Personality}, msgs[2])
}

package chat

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTopic(t *testing.T) {
	assert.Equal(t, "gardening tips",
		ExtractTopic("Hi Henry I would like to discuss gardening tips please", "Henry"))
	assert.Equal(t, Unknown, ExtractTopic("hello hi you know", "Vera"))
	// Punctuation is stripped per token before stop-word matching
	assert.Equal(t, "weather", ExtractTopic("Hello, Vera! the weather...", "Vera"))
	// Stop words match case-sensitively: "HELLO" is not a stop word
	assert.Equal(t, "HELLO", ExtractTopic("HELLO hello", "Vera"))
}

func TestExtractUserName(t *testing.T) {
	assert.Equal(t, "Alice", ExtractUserName([]string{"My name is Alice"}))
	assert.Equal(t, Unknown, ExtractUserName([]string{"my name is"}))
	assert.Equal(t, Unknown, ExtractUserName([]string{"hello there"}))
	// The first matching message wins; later ones are not scanned
	assert.Equal(t, "Bob", ExtractUserName([]string{"hi", "my name is Bob", "my name is Carol"}))
}

func TestExtractUserNameAnchorsOnLiteralIs(t *testing.T) {
	// An earlier "is" token wins over the actual phrase position. Known
	// fragility, pinned here so a change is deliberate.
	assert.Equal(t, "there", ExtractUserName([]string{"is there anyone? My name is Bob"}))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 4, countWords("Hi!\nHow are you?"))
	assert.Equal(t, 0, countWords(""))
	assert.Equal(t, 2, countWords("it's fine"))
}

func TestCollect(t *testing.T) {
	catalog := NewCatalog()
	henry, err := catalog.ByName("Henry")
	require.NoError(t, err)

	l := NewLog(Message{Role: RoleSystem, Content: henry.Personality})
	require.NoError(t, l.Append(RoleUser, "Hi Henry I would like to discuss gardening tips please"))
	require.NoError(t, l.Append(RoleAssistant, "Hi!\nHow are you?"))
	require.NoError(t, l.Append(RoleUser, "My name is Alice"))
	require.NoError(t, l.Append(RoleAssistant, "Nice to meet you, Alice."))

	summary := Collect(l, henry)

	assert.Equal(t, "Henry", summary.BotName)
	assert.Equal(t, "gardening tips", summary.Topic)
	assert.Equal(t, "Alice", summary.UserName)

	// The exit cue counts toward user characters even though it never
	// entered the log.
	wantChars := utf8.RuneCountInString("Hi Henry I would like to discuss gardening tips please") +
		utf8.RuneCountInString("My name is Alice") +
		utf8.RuneCountInString(henry.ExitCue)
	assert.Equal(t, wantChars, summary.UserCharCount)

	// Start prompt and goodbye are display-only but count toward bot words.
	wantWords := countWords(henry.StartPrompt) + 4 + 5 + countWords(henry.Goodbye)
	assert.Equal(t, wantWords, summary.BotWordCount)

	// The full log rides along for replay.
	assert.Equal(t, l.Messages(), summary.Messages)
}

func TestCollectEmptyConversationTopicIsExitCue(t *testing.T) {
	catalog := NewCatalog()
	vera, err := catalog.ByName("Vera")
	require.NoError(t, err)

	l := NewLog(Message{Role: RoleSystem, Content: vera.Personality})
	summary := Collect(l, vera)

	// With no user turns the synthetic exit entry is the first user message,
	// so the topic degrades to the exit cue itself.
	assert.Equal(t, vera.ExitCue, summary.Topic)
	assert.Equal(t, utf8.RuneCountInString(vera.ExitCue), summary.UserCharCount)
	assert.Equal(t, Unknown, summary.UserName)
}

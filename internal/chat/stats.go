package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unknown is the sentinel for statistics the heuristics could not infer.
const Unknown = "UNKNOWN"

// Summary is the write-once record derived from a completed session. The
// JSON field names are the stored artifact schema; the loader flow reads
// "topic" without replaying the log, and resumption reads "messages".
type Summary struct {
	BotName       string    `json:"bot_name"`
	UserCharCount int       `json:"user_char_count"`
	BotWordCount  int       `json:"bot_word_count"`
	Topic         string    `json:"topic"`
	UserName      string    `json:"user_name"`
	Messages      []Message `json:"messages"`
}

// Collect derives a Summary from a finished session's log. Pure: the log is
// only read. The exit cue never enters the log as a user turn, so it is
// counted here as a synthetic final user entry; likewise the start prompt
// and goodbye are display-only framing that still count toward bot words.
func Collect(l *Log, persona Persona) Summary {
	userMessages := l.Filter(RoleUser)
	userMessages = append(userMessages, persona.ExitCue)

	userChars := 0
	for _, m := range userMessages {
		userChars += utf8.RuneCountInString(m)
	}

	botMessages := l.Filter(RoleAssistant)
	botMessages = append([]string{persona.StartPrompt}, botMessages...)
	botMessages = append(botMessages, persona.Goodbye)

	botWords := 0
	for _, m := range botMessages {
		botWords += countWords(m)
	}

	return Summary{
		BotName:       persona.Name,
		UserCharCount: userChars,
		BotWordCount:  botWords,
		Topic:         ExtractTopic(userMessages[0], persona.Name),
		UserName:      ExtractUserName(userMessages),
		Messages:      l.Messages(),
	}
}

// countWords normalizes newlines to spaces, strips runes that are neither
// alphanumeric nor whitespace, and counts whitespace-separated tokens.
func countWords(s string) int {
	s = strings.ReplaceAll(s, "\n", " ")
	s = stripPunctuation(s)
	return len(strings.Fields(s))
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// Tokens carrying no topical signal: greetings, pronouns and discourse
// markers. Matched case-sensitively, after per-token punctuation stripping.
var stopWords = []string{
	"I", "i", "Hi", "Hello", "hi", "hello",
	"want", "would", "more", "to", "chat", "discuss", "about", "ask",
	"you", "Id", "like", "please", "talk", "know",
}

// ExtractTopic infers the conversation subject from the user's first
// message. Each whitespace-split token is stripped of punctuation, then
// dropped if it equals a stop word or the persona's name; the survivors,
// joined by single spaces, are the topic. Unknown when nothing survives.
func ExtractTopic(firstUserMessage, personaName string) string {
	stop := func(tok string) bool {
		if tok == personaName {
			return true
		}
		for _, w := range stopWords {
			if tok == w {
				return true
			}
		}
		return false
	}

	var kept []string
	for _, tok := range strings.Fields(firstUserMessage) {
		tok = stripPunctuation(tok)
		if tok == "" || stop(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return Unknown
	}
	return strings.Join(kept, " ")
}

// ExtractUserName scans user messages in order for the phrase "my name is"
// (case-insensitive) and takes the token following the first case-sensitive
// "is" token of that message. The "is" anchor breaks when "is" appears
// earlier in the sentence; that behavior is pinned by tests and kept as-is.
func ExtractUserName(userMessages []string) string {
	for _, m := range userMessages {
		if !strings.Contains(strings.ToLower(m), "my name is") {
			continue
		}
		words := strings.Fields(m)
		for i, w := range words {
			if w == "is" {
				if i+1 < len(words) {
					return words[i+1]
				}
				break
			}
		}
		// First matching message decides; a failed extraction stays Unknown.
		break
	}
	return Unknown
}

package types

import (
	"strings"
	"time"
)

// Language is a supported display/speech language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageHindi
}

// Other returns the counterpart language.
func (l Language) Other() Language {
	if l == LanguageHindi {
		return LanguageEnglish
	}
	return LanguageHindi
}

// ParseLanguage normalizes a language tag to a supported language.
// Anything that is not Hindi maps to English.
func ParseLanguage(tag string) Language {
	if strings.HasPrefix(strings.ToLower(tag), "hi") {
		return LanguageHindi
	}
	return LanguageEnglish
}

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn in a conversation. Content holds the text in the
// language it was authored in; Translation, when present, is the rendering
// into the other supported language.
type Message struct {
	Role             MessageRole `json:"role"`
	Content          string      `json:"content"`
	Translation      *string     `json:"translation,omitempty"`
	DetectedLanguage *Language   `json:"detected_language,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// NewMessage constructs a Message. It is the single construction point for
// messages so the translation invariant holds everywhere: a translation is
// only attached when it differs from the content and targets the language
// opposite the detected one.
func NewMessage(role MessageRole, content string, detected *Language, translation *string) Message {
	m := Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if detected != nil && detected.Valid() {
		lang := *detected
		m.DetectedLanguage = &lang
	}
	if translation != nil && *translation != "" && *translation != content {
		t := *translation
		m.Translation = &t
	}
	return m
}

// State is the per-session conversation state. Messages is append-only and
// never reordered; it is replaced wholesale only when restoring a session.
type State struct {
	Messages           []Message `json:"messages"`
	ActiveLanguage     Language  `json:"active_language"`
	TranslationVisible bool      `json:"translation_visible"`
}

// NewState returns an empty state in the given display language.
func NewState(lang Language) *State {
	if !lang.Valid() {
		lang = LanguageEnglish
	}
	return &State{
		Messages:       []Message{},
		ActiveLanguage: lang,
	}
}

// Append adds a message to the history.
func (s *State) Append(m Message) {
	s.Messages = append(s.Messages, m)
}

// UserInfo identifies the signed-in user for assistant personalization.
type UserInfo struct {
	Name              string   `json:"name,omitempty"`
	PreferredLanguage Language `json:"preferredLanguage,omitempty"`
}

// HistoryEntry is one prior turn in the assistant API wire format.
type HistoryEntry struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest is the request body for the assistant API.
type ChatRequest struct {
	Message  string         `json:"message"`
	History  []HistoryEntry `json:"history"`
	UserInfo *UserInfo      `json:"userInfo"`
}

// ChatResponse is the assistant API reply. Extra fields are ignored.
type ChatResponse struct {
	Response string `json:"response"`
}

package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/finergize/assistant-backend/internal/types"
)

// apologyText is appended when both assistant endpoints fail. It is the only
// user-visible failure in a turn.
const apologyText = "Sorry, I encountered an issue. Please try again later."

var (
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("empty message")
	// ErrTurnInFlight is returned when the session already has an active turn.
	ErrTurnInFlight = errors.New("turn already in flight")
)

// Assistant is the conversational completion capability with a primary and a
// fallback endpoint. Both calls fail with an error on transport problems or
// non-success status; fallback routing happens here, not in the gateway.
type Assistant interface {
	Complete(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error)
	CompleteFallback(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error)
}

// Translator detects and translates text. Failures are absorbed by the
// implementation; see gateway/translate.
type Translator interface {
	Detect(ctx context.Context, text string) types.Language
	Translate(ctx context.Context, text string, target types.Language) string
}

// Speaker vocalizes assistant replies. Optional; a nil Speaker skips playback.
type Speaker interface {
	Speak(text string, lang types.Language)
}

// SpeechHint tells the client what to vocalize for a turn and in which
// language, mirroring what the Speaker was asked to play.
type SpeechHint struct {
	Text     string         `json:"text"`
	Language types.Language `json:"language"`
}

// TurnResult is the outcome of one complete conversation turn.
type TurnResult struct {
	Messages []types.Message `json:"messages"`
	Reply    types.Message   `json:"reply"`
	Speech   *SpeechHint     `json:"speech,omitempty"`
}

// Service drives conversation turns end to end: language detection,
// translation, assistant completion, history bookkeeping and speech playback.
type Service struct {
	store      *Store
	translator Translator
	assistant  Assistant
	speaker    Speaker
	logger     *logrus.Logger
	botName    string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService creates the chat orchestrator. speaker may be nil when no speech
// synthesis capability is available.
func NewService(store *Store, translator Translator, assistant Assistant, speaker Speaker, logger *logrus.Logger, botName string) *Service {
	if botName == "" {
		botName = "Nova"
	}
	return &Service{
		store:      store,
		translator: translator,
		assistant:  assistant,
		speaker:    speaker,
		logger:     logger,
		botName:    botName,
		inFlight:   make(map[string]struct{}),
	}
}

// beginTurn marks a session as having an active turn. It fails with
// ErrTurnInFlight if one is already running, so submissions cannot interleave.
func (s *Service) beginTurn(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return ErrTurnInFlight
	}
	s.inFlight[sessionID] = struct{}{}
	return nil
}

func (s *Service) endTurn(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

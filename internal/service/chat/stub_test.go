package chat

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finergize/assistant-backend/internal/cache/redis"
	"github.com/finergize/assistant-backend/internal/types"
)

// memKV is an in-memory KV for tests.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, redis.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// stubTranslator detects via a fixed map and translates via a dictionary.
// With zero values it behaves like the gateway under total API failure:
// everything detects as English and translation is the identity.
type stubTranslator struct {
	mu         sync.Mutex
	detections map[string]types.Language
	dictionary map[types.Language]map[string]string
	calls      int
}

func (t *stubTranslator) Detect(_ context.Context, text string) types.Language {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if lang, ok := t.detections[text]; ok {
		return lang
	}
	return types.LanguageEnglish
}

func (t *stubTranslator) Translate(_ context.Context, text string, target types.Language) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if translated, ok := t.dictionary[target][text]; ok {
		return translated
	}
	return text
}

// stubAssistant scripts the primary and fallback endpoints.
type stubAssistant struct {
	mu            sync.Mutex
	primaryErr    error
	fallbackErr   error
	reply         string
	fallbackReply string
	primaryCalls  int
	fallbackCalls int
	requests      []*types.ChatRequest
	// onComplete, when set, runs inside Complete before returning.
	onComplete func()
	// block, when set, makes Complete wait until the channel is closed.
	block chan struct{}
}

func (a *stubAssistant) Complete(_ context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	a.mu.Lock()
	a.primaryCalls++
	a.requests = append(a.requests, req)
	hook := a.onComplete
	block := a.block
	a.mu.Unlock()

	if hook != nil {
		hook()
	}
	if block != nil {
		<-block
	}
	if a.primaryErr != nil {
		return nil, a.primaryErr
	}
	return &types.ChatResponse{Response: a.reply}, nil
}

func (a *stubAssistant) CompleteFallback(_ context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	a.mu.Lock()
	a.fallbackCalls++
	a.requests = append(a.requests, req)
	a.mu.Unlock()

	if a.fallbackErr != nil {
		return nil, a.fallbackErr
	}
	reply := a.fallbackReply
	if reply == "" {
		reply = a.reply
	}
	return &types.ChatResponse{Response: reply}, nil
}

func (a *stubAssistant) totalCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.primaryCalls + a.fallbackCalls
}

// recordingSpeaker captures Speak invocations.
type recordingSpeaker struct {
	mu    sync.Mutex
	texts []string
	langs []types.Language
}

func (s *recordingSpeaker) Speak(text string, lang types.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	s.langs = append(s.langs, lang)
}

var errDown = errors.New("endpoint down")

func newTestService(translator Translator, assistant Assistant, speaker Speaker) (*Service, *Store) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := NewStore(newMemKV(), time.Hour)
	return NewService(store, translator, assistant, speaker, logger, "Nova"), store
}

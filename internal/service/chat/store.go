package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finergize/assistant-backend/internal/cache/redis"
	"github.com/finergize/assistant-backend/internal/types"
)

const statePrefix = "chat:state:"

// KV is the durable key-value capability backing conversation state.
// The redis client satisfies it; tests use an in-memory map.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store persists per-session conversation state. The message log is
// append-only; the whole state is replaced only when restoring a session.
type Store struct {
	kv  KV
	ttl time.Duration
}

// NewStore creates a conversation store. Each write refreshes the TTL, so a
// session survives as long as it stays active.
func NewStore(kv KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

// Load returns the state for a session, or nil if none exists yet.
func (s *Store) Load(ctx context.Context, sessionID string) (*types.State, error) {
	data, err := s.kv.Get(ctx, statePrefix+sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load state: %w", err)
	}

	var state types.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if !state.ActiveLanguage.Valid() {
		state.ActiveLanguage = types.LanguageEnglish
	}
	return &state, nil
}

// Save replaces the stored state for a session.
func (s *Store) Save(ctx context.Context, sessionID string, state *types.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.kv.Set(ctx, statePrefix+sessionID, data, s.ttl); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Append adds messages to a session's history and persists the result.
// It returns the updated state.
func (s *Store) Append(ctx context.Context, sessionID string, msgs ...types.Message) (*types.State, error) {
	state, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = types.NewState(types.LanguageEnglish)
	}
	for _, m := range msgs {
		state.Append(m)
	}
	if err := s.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset clears the history back to a single greeting message, keeping the
// session's language and translation-visibility preferences.
func (s *Store) Reset(ctx context.Context, sessionID string, greeting types.Message) (*types.State, error) {
	state, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = types.NewState(types.LanguageEnglish)
	}
	state.Messages = []types.Message{greeting}
	if err := s.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetLanguage updates the session's active display language.
func (s *Store) SetLanguage(ctx context.Context, sessionID string, lang types.Language) (*types.State, error) {
	if !lang.Valid() {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	state, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = types.NewState(lang)
	}
	state.ActiveLanguage = lang
	if err := s.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetTranslationVisible updates whether secondary-language text is shown.
func (s *Store) SetTranslationVisible(ctx context.Context, sessionID string, visible bool) (*types.State, error) {
	state, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = types.NewState(types.LanguageEnglish)
	}
	state.TranslationVisible = visible
	if err := s.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

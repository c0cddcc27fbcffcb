package chat

import (
	"context"
	"fmt"

	"github.com/finergize/assistant-backend/internal/types"
)

// greeting builds the assistant's opening message, personalized when the
// user's name is known and carrying a Hindi rendering when Hindi is active.
// The greeting itself is authored in English; translation is best-effort.
func (s *Service) greeting(ctx context.Context, userInfo *types.UserInfo, active types.Language) types.Message {
	text := fmt.Sprintf("Hi there! I'm %s, your financial assistant. How can I help you today?", s.botName)
	if userInfo != nil && userInfo.Name != "" {
		text = fmt.Sprintf("Hi %s! I'm %s, your financial assistant. How can I help you today?", userInfo.Name, s.botName)
	}

	var translation *string
	if active == types.LanguageHindi {
		if t := s.translator.Translate(ctx, text, types.LanguageHindi); t != text {
			translation = &t
		}
	}

	english := types.LanguageEnglish
	return types.NewMessage(types.RoleAssistant, text, &english, translation)
}

// ensureState loads a session's state, creating it with a greeting on first
// contact. The new session's display language follows the user's preference.
func (s *Service) ensureState(ctx context.Context, sessionID string, userInfo *types.UserInfo) (*types.State, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state != nil {
		return state, nil
	}

	lang := types.LanguageEnglish
	if userInfo != nil && userInfo.PreferredLanguage.Valid() {
		lang = userInfo.PreferredLanguage
	}
	state = types.NewState(lang)
	state.Append(s.greeting(ctx, userInfo, lang))
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// History returns a session's conversation, initializing it on first open.
func (s *Service) History(ctx context.Context, sessionID string, userInfo *types.UserInfo) (*types.State, error) {
	return s.ensureState(ctx, sessionID, userInfo)
}

// Reset clears a session back to a fresh greeting, keeping language and
// translation-visibility preferences. A custom greeting overrides the default.
func (s *Service) Reset(ctx context.Context, sessionID, customGreeting string, userInfo *types.UserInfo) (*types.State, error) {
	state, err := s.ensureState(ctx, sessionID, userInfo)
	if err != nil {
		return nil, err
	}

	greeting := s.greeting(ctx, userInfo, state.ActiveLanguage)
	if customGreeting != "" {
		var translation *string
		if state.ActiveLanguage == types.LanguageHindi {
			if t := s.translator.Translate(ctx, customGreeting, types.LanguageHindi); t != customGreeting {
				translation = &t
			}
		}
		english := types.LanguageEnglish
		greeting = types.NewMessage(types.RoleAssistant, customGreeting, &english, translation)
	}

	state, err = s.store.Reset(ctx, sessionID, greeting)
	if err != nil {
		return nil, err
	}

	s.vocalize(greeting, state.ActiveLanguage)
	return state, nil
}

// SetLanguage switches the session's display and speech language.
func (s *Service) SetLanguage(ctx context.Context, sessionID string, lang types.Language) (*types.State, error) {
	return s.store.SetLanguage(ctx, sessionID, lang)
}

// SetTranslationVisible toggles secondary-language display for the session.
func (s *Service) SetTranslationVisible(ctx context.Context, sessionID string, visible bool) (*types.State, error) {
	return s.store.SetTranslationVisible(ctx, sessionID, visible)
}

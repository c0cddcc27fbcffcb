package chat

import (
	"context"
	"strings"

	"github.com/finergize/assistant-backend/internal/types"
)

// SubmitTurn runs one complete conversation turn for rawText, typed or
// transcribed. The user message is appended to the history before the
// assistant is consulted, so it is visible regardless of downstream outcome.
// Detection and translation failures degrade to untranslated text; only the
// failure of both assistant endpoints is user-visible, as a fixed apology
// reply. The in-flight guard admits at most one active turn per session.
func (s *Service) SubmitTurn(ctx context.Context, sessionID, rawText string, userInfo *types.UserInfo) (*TurnResult, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.beginTurn(sessionID); err != nil {
		return nil, err
	}
	defer s.endTurn(sessionID)

	state, err := s.ensureState(ctx, sessionID, userInfo)
	if err != nil {
		return nil, err
	}
	active := state.ActiveLanguage

	// Detection is best-effort; the gateway falls back to English on its own.
	detected := s.translator.Detect(ctx, text)

	// The assistant operates in English, so non-English input is translated
	// for processing. The stored message keeps the original wording.
	processed := text
	if detected != types.LanguageEnglish {
		processed = s.translator.Translate(ctx, text, types.LanguageEnglish)
	}

	var userTranslation *string
	if detected != active {
		if t := s.translator.Translate(ctx, text, active); t != text {
			userTranslation = &t
		}
	}

	// History snapshot excludes the current turn. Hindi user turns are sent in
	// their English form when one was captured.
	history := historyForAssistant(state.Messages)

	userMsg := types.NewMessage(types.RoleUser, text, &detected, userTranslation)
	state, err = s.store.Append(ctx, sessionID, userMsg)
	if err != nil {
		return nil, err
	}

	// The assistant sees the active display language as the user's preference.
	reqUserInfo := userInfo
	if reqUserInfo != nil {
		info := *reqUserInfo
		info.PreferredLanguage = active
		reqUserInfo = &info
	}

	req := &types.ChatRequest{
		Message:  processed,
		History:  history,
		UserInfo: reqUserInfo,
	}

	resp, err := s.assistant.Complete(ctx, req)
	if err != nil {
		s.logger.WithError(err).Warn("primary assistant endpoint failed, trying fallback")
		resp, err = s.assistant.CompleteFallback(ctx, req)
	}
	if err != nil {
		s.logger.WithError(err).Error("assistant unavailable")
		english := types.LanguageEnglish
		apology := types.NewMessage(types.RoleAssistant, apologyText, &english, nil)
		state, storeErr := s.store.Append(ctx, sessionID, apology)
		if storeErr != nil {
			return nil, storeErr
		}
		return &TurnResult{Messages: state.Messages, Reply: apology}, nil
	}

	reply := resp.Response
	var replyTranslation *string
	if active == types.LanguageHindi || detected == types.LanguageHindi {
		if t := s.translator.Translate(ctx, reply, types.LanguageHindi); t != reply {
			replyTranslation = &t
		}
	}

	english := types.LanguageEnglish
	assistantMsg := types.NewMessage(types.RoleAssistant, reply, &english, replyTranslation)
	state, err = s.store.Append(ctx, sessionID, assistantMsg)
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Messages: state.Messages,
		Reply:    assistantMsg,
		Speech:   s.vocalize(assistantMsg, active),
	}, nil
}

// vocalize picks the spoken rendition of a reply: the Hindi translation when
// Hindi is active and one exists, otherwise the English content.
func (s *Service) vocalize(msg types.Message, active types.Language) *SpeechHint {
	hint := &SpeechHint{Text: msg.Content, Language: types.LanguageEnglish}
	if active == types.LanguageHindi && msg.Translation != nil {
		hint = &SpeechHint{Text: *msg.Translation, Language: types.LanguageHindi}
	}
	if s.speaker != nil {
		s.speaker.Speak(hint.Text, hint.Language)
	}
	return hint
}

// historyForAssistant converts stored messages to the assistant wire format,
// substituting the English translation for Hindi-authored user turns.
func historyForAssistant(msgs []types.Message) []types.HistoryEntry {
	history := make([]types.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		content := m.Content
		if m.Role == types.RoleUser &&
			m.DetectedLanguage != nil && *m.DetectedLanguage == types.LanguageHindi &&
			m.Translation != nil {
			content = *m.Translation
		}
		history = append(history, types.HistoryEntry{Role: m.Role, Content: content})
	}
	return history
}

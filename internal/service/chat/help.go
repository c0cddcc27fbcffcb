package chat

import (
	"context"

	"github.com/finergize/assistant-backend/internal/types"
)

// helpAnswers are canned onboarding answers served without an assistant
// round-trip. Unknown topics get a generic prompt for more detail.
var helpAnswers = map[string]string{
	"How do I register?":         "To register for an account, click on the 'Register' button at the top of the website. You'll need to provide your name, phone number, and Aadhaar number. Once verified, you can set up your PIN for secure access.",
	"How do I check my balance?": "You can check your balance by logging into your account and visiting the Dashboard. Your current balance will be displayed prominently. You can also ask me 'What is my current balance?' and I'll help you retrieve that information.",
	"How do I send money?":       "To send money, go to the 'Transfer' section from your dashboard. Enter the recipient's phone number or select them from your contacts, enter the amount, and confirm with your PIN. I can also guide you through the process if you type 'I want to send money'.",
	"How do I reset my PIN?":     "If you've forgotten your PIN, click on the 'Forgot PIN' option on the login screen. We'll send a verification code to your registered phone number. After verification, you'll be able to set a new PIN.",
}

// HelpTopics lists the available canned help questions.
func HelpTopics() []string {
	return []string{
		"How do I register?",
		"How do I check my balance?",
		"How do I send money?",
		"How do I reset my PIN?",
	}
}

// HelpTopic answers a predefined help question locally, recording both turns
// in the history and translating like a normal reply when Hindi is active.
func (s *Service) HelpTopic(ctx context.Context, sessionID, topic string, userInfo *types.UserInfo) (*TurnResult, error) {
	if err := s.beginTurn(sessionID); err != nil {
		return nil, err
	}
	defer s.endTurn(sessionID)

	state, err := s.ensureState(ctx, sessionID, userInfo)
	if err != nil {
		return nil, err
	}
	active := state.ActiveLanguage

	english := types.LanguageEnglish

	var topicTranslation *string
	if active == types.LanguageHindi {
		if t := s.translator.Translate(ctx, topic, types.LanguageHindi); t != topic {
			topicTranslation = &t
		}
	}
	userMsg := types.NewMessage(types.RoleUser, topic, &english, topicTranslation)

	answer, ok := helpAnswers[topic]
	if !ok {
		answer = "I'm happy to help with your question about " + topic + ". Please provide more details so I can assist you better."
	}

	var answerTranslation *string
	if active == types.LanguageHindi {
		if t := s.translator.Translate(ctx, answer, types.LanguageHindi); t != answer {
			answerTranslation = &t
		}
	}
	assistantMsg := types.NewMessage(types.RoleAssistant, answer, &english, answerTranslation)

	state, err = s.store.Append(ctx, sessionID, userMsg, assistantMsg)
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Messages: state.Messages,
		Reply:    assistantMsg,
		Speech:   s.vocalize(assistantMsg, active),
	}, nil
}

package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finergize/assistant-backend/internal/types"
)

func TestSubmitTurnAppendsUserMessageBeforeAssistantCall(t *testing.T) {
	translator := &stubTranslator{}
	assistant := &stubAssistant{reply: "Happy to help."}
	svc, store := newTestService(translator, assistant, nil)

	var userMsgsAtCallTime int
	assistant.onComplete = func() {
		state, err := store.Load(context.Background(), "s1")
		require.NoError(t, err)
		require.NotNil(t, state)
		for _, m := range state.Messages {
			if m.Role == types.RoleUser {
				userMsgsAtCallTime++
			}
		}
	}

	result, err := svc.SubmitTurn(context.Background(), "s1", "What is my balance?", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, userMsgsAtCallTime, "user message must be persisted before the assistant is consulted")
	// greeting + user + assistant
	require.Len(t, result.Messages, 3)
	assert.Equal(t, types.RoleUser, result.Messages[1].Role)
	assert.Equal(t, "What is my balance?", result.Messages[1].Content)
	assert.Equal(t, "Happy to help.", result.Reply.Content)
}

func TestSubmitTurnRejectsBlankInput(t *testing.T) {
	assistant := &stubAssistant{reply: "hi"}
	svc, _ := newTestService(&stubTranslator{}, assistant, nil)

	_, err := svc.SubmitTurn(context.Background(), "s1", "   \t\n", nil)
	require.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, assistant.totalCalls())
}

func TestSubmitTurnInFlightGuard(t *testing.T) {
	translator := &stubTranslator{}
	assistant := &stubAssistant{reply: "done", block: make(chan struct{})}
	svc, _ := newTestService(translator, assistant, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.SubmitTurn(context.Background(), "s1", "first", nil)
		firstDone <- err
	}()

	// Wait for the first turn to reach the assistant call.
	require.Eventually(t, func() bool {
		return assistant.totalCalls() == 1
	}, time.Second, 5*time.Millisecond)

	_, err := svc.SubmitTurn(context.Background(), "s1", "second", nil)
	require.ErrorIs(t, err, ErrTurnInFlight)
	assert.Equal(t, 1, assistant.totalCalls(), "rejected turn must make no network call")

	close(assistant.block)
	require.NoError(t, <-firstDone)

	// Another session is never blocked by s1's turn.
	assistant.block = nil
	_, err = svc.SubmitTurn(context.Background(), "s2", "hello", nil)
	require.NoError(t, err)
}

func TestSubmitTurnSurvivesTranslatorFailure(t *testing.T) {
	// The zero-value stub behaves like the gateway under total API failure:
	// identity translation, everything detected as English.
	assistant := &stubAssistant{reply: "Still here."}
	svc, _ := newTestService(&stubTranslator{}, assistant, nil)

	result, err := svc.SubmitTurn(context.Background(), "s1", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Still here.", result.Reply.Content)
	assert.Nil(t, result.Reply.Translation)
}

func TestSubmitTurnIdentityTranslatorRoundTrip(t *testing.T) {
	const text = "Send ₹100 to Asha"
	assistant := &stubAssistant{reply: "ok"}
	svc, _ := newTestService(&stubTranslator{}, assistant, nil)

	result, err := svc.SubmitTurn(context.Background(), "s1", text, nil)
	require.NoError(t, err)

	userMsg := result.Messages[1]
	assert.Equal(t, text, userMsg.Content, "identity translation must leave the text byte-for-byte intact")
	assert.Nil(t, userMsg.Translation, "an identity rendering is not stored as a translation")
	require.Len(t, assistant.requests, 1)
	assert.Equal(t, text, assistant.requests[0].Message)
}

func TestSubmitTurnUsesFallbackWhenPrimaryFails(t *testing.T) {
	assistant := &stubAssistant{primaryErr: errDown, fallbackReply: "fallback says hi"}
	svc, _ := newTestService(&stubTranslator{}, assistant, nil)

	result, err := svc.SubmitTurn(context.Background(), "s1", "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, assistant.primaryCalls)
	assert.Equal(t, 1, assistant.fallbackCalls)
	assert.Equal(t, "fallback says hi", result.Reply.Content)
}

func TestSubmitTurnApologizesWhenBothEndpointsFail(t *testing.T) {
	assistant := &stubAssistant{primaryErr: errDown, fallbackErr: errDown, reply: "recovered"}
	svc, _ := newTestService(&stubTranslator{}, assistant, nil)

	result, err := svc.SubmitTurn(context.Background(), "s1", "hello", nil)
	require.NoError(t, err, "total assistant failure is not an error from the caller's perspective")

	// greeting + user + apology, nothing else
	require.Len(t, result.Messages, 3)
	assert.Equal(t, apologyText, result.Reply.Content)
	assert.Equal(t, types.RoleAssistant, result.Reply.Role)
	assert.Nil(t, result.Reply.Translation)

	// The in-flight guard must have cleared.
	assistant.primaryErr = nil
	result, err = svc.SubmitTurn(context.Background(), "s1", "again", nil)
	require.NoError(t, err)
	assert.Len(t, result.Messages, 5)
}

func TestSubmitTurnHindiActiveEnglishInput(t *testing.T) {
	translator := &stubTranslator{
		detections: map[string]types.Language{"Hello": types.LanguageEnglish},
		dictionary: map[types.Language]map[string]string{
			types.LanguageHindi: {
				"Hello":                 "नमस्ते",
				"How can I help?":       "मैं कैसे मदद कर सकती हूँ?",
			},
		},
	}
	assistant := &stubAssistant{reply: "How can I help?"}
	speaker := &recordingSpeaker{}
	svc, _ := newTestService(translator, assistant, speaker)

	_, err := svc.SetLanguage(context.Background(), "s1", types.LanguageHindi)
	require.NoError(t, err)

	result, err := svc.SubmitTurn(context.Background(), "s1", "Hello", nil)
	require.NoError(t, err)

	userMsg := result.Messages[len(result.Messages)-2]
	require.Equal(t, types.RoleUser, userMsg.Role)
	assert.Equal(t, "Hello", userMsg.Content)
	require.NotNil(t, userMsg.DetectedLanguage)
	assert.Equal(t, types.LanguageEnglish, *userMsg.DetectedLanguage)
	require.NotNil(t, userMsg.Translation)
	assert.Equal(t, "नमस्ते", *userMsg.Translation)

	require.NotNil(t, result.Reply.Translation)
	assert.Equal(t, "मैं कैसे मदद कर सकती हूँ?", *result.Reply.Translation)

	// Hindi display speaks the Hindi rendering.
	require.NotNil(t, result.Speech)
	assert.Equal(t, types.LanguageHindi, result.Speech.Language)
	assert.Equal(t, "मैं कैसे मदद कर सकती हूँ?", result.Speech.Text)
	require.Len(t, speaker.texts, 1)
	assert.Equal(t, "मैं कैसे मदद कर सकती हूँ?", speaker.texts[0])
}

func TestSubmitTurnHindiInputProcessedInEnglish(t *testing.T) {
	translator := &stubTranslator{
		detections: map[string]types.Language{"नमस्ते": types.LanguageHindi},
		dictionary: map[types.Language]map[string]string{
			types.LanguageEnglish: {"नमस्ते": "Hello"},
			types.LanguageHindi:   {"Nice to meet you.": "आपसे मिलकर खुशी हुई।"},
		},
	}
	assistant := &stubAssistant{reply: "Nice to meet you."}
	svc, _ := newTestService(translator, assistant, nil)

	result, err := svc.SubmitTurn(context.Background(), "s1", "नमस्ते", nil)
	require.NoError(t, err)

	// The assistant receives the English form; the stored message keeps the
	// original wording with its English translation attached.
	require.Len(t, assistant.requests, 1)
	assert.Equal(t, "Hello", assistant.requests[0].Message)

	userMsg := result.Messages[len(result.Messages)-2]
	assert.Equal(t, "नमस्ते", userMsg.Content)
	require.NotNil(t, userMsg.Translation)
	assert.Equal(t, "Hello", *userMsg.Translation)

	// A Hindi turn gets a Hindi reply rendering even with English active.
	require.NotNil(t, result.Reply.Translation)
	assert.Equal(t, "आपसे मिलकर खुशी हुई।", *result.Reply.Translation)
	// English stays the spoken language when English is the display language.
	require.NotNil(t, result.Speech)
	assert.Equal(t, types.LanguageEnglish, result.Speech.Language)

	// A later turn sends the Hindi user message to the assistant in English.
	_, err = svc.SubmitTurn(context.Background(), "s1", "What next?", nil)
	require.NoError(t, err)
	history := assistant.requests[1].History
	var found bool
	for _, h := range history {
		if h.Role == types.RoleUser && h.Content == "Hello" {
			found = true
		}
	}
	assert.True(t, found, "history must carry the English form of Hindi user turns")
}

func TestSubmitTurnPassesUserInfoWithActiveLanguage(t *testing.T) {
	assistant := &stubAssistant{reply: "ok"}
	svc, _ := newTestService(&stubTranslator{}, assistant, nil)

	_, err := svc.SetLanguage(context.Background(), "s1", types.LanguageHindi)
	require.NoError(t, err)

	info := &types.UserInfo{Name: "Asha"}
	_, err = svc.SubmitTurn(context.Background(), "s1", "hello", info)
	require.NoError(t, err)

	require.Len(t, assistant.requests, 1)
	require.NotNil(t, assistant.requests[0].UserInfo)
	assert.Equal(t, "Asha", assistant.requests[0].UserInfo.Name)
	assert.Equal(t, types.LanguageHindi, assistant.requests[0].UserInfo.PreferredLanguage)
	// The caller's struct is not mutated.
	assert.Equal(t, types.Language(""), info.PreferredLanguage)
}

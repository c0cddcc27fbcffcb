// Package speech models platform speech capture and playback as a small
// state machine. The platform capabilities are injected as interfaces and
// capability-detected: a nil Recognizer or Synthesizer marks the
// corresponding feature unsupported.
package speech

import (
	"errors"

	"github.com/finergize/assistant-backend/internal/types"
)

// State is the adapter's current activity.
type State int

const (
	Idle State = iota
	Listening
	Speaking
)

func (s State) String() string {
	switch s {
	case Listening:
		return "listening"
	case Speaking:
		return "speaking"
	default:
		return "idle"
	}
}

var (
	// ErrUnsupported means the platform lacks the requested capability.
	ErrUnsupported = errors.New("speech: not supported")
	// ErrBusy means the adapter is not in a state that allows the call.
	ErrBusy = errors.New("speech: busy")
	// ErrNoSpeech means capture ended without detecting any speech.
	ErrNoSpeech = errors.New("speech: no speech detected")
	// ErrTimeout means no platform event arrived within the safety window.
	ErrTimeout = errors.New("speech: listening timed out")
	// ErrPermissionDenied means microphone access was refused.
	ErrPermissionDenied = errors.New("speech: microphone permission denied")
)

// Result is the outcome of one capture session: a transcript or a terminal
// error, never both.
type Result struct {
	Transcript string
	Err        error
}

// Recognizer captures a single utterance. Start begins one capture session
// and delivers exactly one Result on the returned channel; Stop cancels the
// active session.
type Recognizer interface {
	Start(lang types.Language) (<-chan Result, error)
	Stop()
}

// Voice is one synthesis voice from the platform's capability snapshot.
type Voice struct {
	Name     string
	Language types.Language
	Default  bool
}

// Synthesizer plays text aloud. Voices returns the current capability
// snapshot (queried on demand, not cached, so a language switch sees fresh
// voices). Speak closes the returned channel when playback finishes; Cancel
// aborts the in-progress utterance.
type Synthesizer interface {
	Voices() []Voice
	Speak(text string, voice Voice) (<-chan struct{}, error)
	Cancel()
}

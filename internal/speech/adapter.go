package speech

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finergize/assistant-backend/internal/types"
)

// defaultListenTimeout forces a stuck capture session back to Idle.
const defaultListenTimeout = 15 * time.Second

// Adapter coordinates speech capture and playback. Valid transitions:
// Idle -> Listening (StartListening), Listening -> Idle (transcript, error,
// timeout or StopListening), Idle -> Speaking (Speak), Speaking -> Speaking
// (Speak cancels and restarts), Speaking -> Idle (playback done). Listening
// and Speaking are mutually exclusive.
type Adapter struct {
	recognizer  Recognizer
	synthesizer Synthesizer
	logger      *logrus.Logger

	onTranscript func(string)
	onError      func(error)

	listenTimeout time.Duration

	mu    sync.Mutex
	state State
	// gen invalidates events from a superseded capture or utterance.
	gen uint64
}

// Config wires the adapter's capabilities and event handlers.
type Config struct {
	Recognizer  Recognizer
	Synthesizer Synthesizer
	// OnTranscript receives the transcribed text of a completed capture.
	OnTranscript func(string)
	// OnError receives terminal capture errors (no-speech, timeout, ...).
	OnError func(error)
}

// NewAdapter creates a speech adapter in the Idle state.
func NewAdapter(cfg Config, logger *logrus.Logger) *Adapter {
	onTranscript := cfg.OnTranscript
	if onTranscript == nil {
		onTranscript = func(string) {}
	}
	onError := cfg.OnError
	if onError == nil {
		onError = func(error) {}
	}
	return &Adapter{
		recognizer:    cfg.Recognizer,
		synthesizer:   cfg.Synthesizer,
		logger:        logger,
		onTranscript:  onTranscript,
		onError:       onError,
		listenTimeout: defaultListenTimeout,
	}
}

// State returns the adapter's current state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// CanListen reports whether speech capture is supported.
func (a *Adapter) CanListen() bool { return a.recognizer != nil }

// CanSpeak reports whether speech playback is supported.
func (a *Adapter) CanSpeak() bool { return a.synthesizer != nil }

// StartListening begins one capture session. Valid only from Idle; a second
// call without an intervening terminal event fails with ErrBusy, so no two
// capture sessions can run concurrently. The session ends on the first
// platform event, or after the safety timeout.
func (a *Adapter) StartListening(lang types.Language) error {
	if a.recognizer == nil {
		return ErrUnsupported
	}

	a.mu.Lock()
	if a.state != Idle {
		a.mu.Unlock()
		return ErrBusy
	}
	a.state = Listening
	a.gen++
	gen := a.gen
	a.mu.Unlock()

	results, err := a.recognizer.Start(lang)
	if err != nil {
		a.settle(gen, Idle)
		return err
	}

	go a.awaitResult(gen, results)
	return nil
}

func (a *Adapter) awaitResult(gen uint64, results <-chan Result) {
	timer := time.NewTimer(a.listenTimeout)
	defer timer.Stop()

	select {
	case res, ok := <-results:
		if !a.settle(gen, Idle) {
			return
		}
		switch {
		case !ok:
			a.onError(ErrNoSpeech)
		case res.Err != nil:
			a.onError(res.Err)
		default:
			a.onTranscript(res.Transcript)
		}
	case <-timer.C:
		if !a.settle(gen, Idle) {
			return
		}
		a.recognizer.Stop()
		a.onError(ErrTimeout)
	}
}

// StopListening cancels the active capture session. It is a no-op outside
// Listening.
func (a *Adapter) StopListening() {
	a.mu.Lock()
	if a.state != Listening {
		a.mu.Unlock()
		return
	}
	a.state = Idle
	a.gen++
	a.mu.Unlock()

	a.recognizer.Stop()
}

// Speak plays text in the requested language, cancelling any in-progress
// utterance first. Only the most recent request is honored; there is no
// queue. Synthesis problems are logged, never propagated. Speak implements
// the orchestrator's Speaker capability.
func (a *Adapter) Speak(text string, lang types.Language) {
	if a.synthesizer == nil {
		return
	}

	a.mu.Lock()
	if a.state == Listening {
		a.mu.Unlock()
		a.logger.Warn("speak requested while listening, ignored")
		return
	}
	if a.state == Speaking {
		a.synthesizer.Cancel()
	}
	a.state = Speaking
	a.gen++
	gen := a.gen
	a.mu.Unlock()

	done, err := a.synthesizer.Speak(text, a.pickVoice(lang))
	if err != nil {
		a.logger.WithError(err).Warn("speech synthesis failed")
		a.settle(gen, Idle)
		return
	}

	go func() {
		<-done
		a.settle(gen, Idle)
	}()
}

// pickVoice selects a voice matching the requested language from a fresh
// capability snapshot, falling back to the platform default.
func (a *Adapter) pickVoice(lang types.Language) Voice {
	voices := a.synthesizer.Voices()
	for _, v := range voices {
		if v.Language == lang {
			return v
		}
	}
	for _, v := range voices {
		if v.Default {
			return v
		}
	}
	if len(voices) > 0 {
		return voices[0]
	}
	return Voice{}
}

// settle returns to the given state if gen still identifies the active
// session, reporting whether the caller won.
func (a *Adapter) settle(gen uint64, state State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		return false
	}
	a.state = state
	a.gen++
	return true
}

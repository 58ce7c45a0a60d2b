package speech

import "errors"

var (
	// ErrCaptureUnsupported is returned when no capture capability is
	// configured for this deployment. Capture controls should be treated
	// as disabled; the coordinator never pretends to listen.
	ErrCaptureUnsupported = errors.New("speech capture is not supported in this environment")

	// ErrAlreadyListening is returned when capture is started twice.
	ErrAlreadyListening = errors.New("speech capture is already active")
)

// Utterance is a playback request at fixed synthesis parameters.
type Utterance struct {
	Text   string  `json:"text"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// CaptureCallbacks receive capture-side events from a Recognizer.
type CaptureCallbacks struct {
	// OnResult delivers the cumulative transcript of the utterance so
	// far. Each call carries the full reinterpreted text, not a delta.
	OnResult func(text string)

	// OnEnd fires when the engine decides the speaker is done.
	OnEnd func()

	// OnError fires on a capture failure. Capture is stopped afterwards.
	OnError func(err error)
}

// Recognizer is the speech-to-text capture capability.
type Recognizer interface {
	// Start begins a capture session delivering events to cb.
	Start(cb CaptureCallbacks) error

	// SendAudio feeds an audio chunk into the active capture session.
	SendAudio(audio []byte) error

	// Stop ends the capture session.
	Stop() error

	// Close closes the recognizer and cleans up resources.
	Close() error
}

// Synthesizer is the text-to-speech playback capability. Playback is
// asynchronous and no completion callback is consumed.
type Synthesizer interface {
	Speak(u Utterance) error
	Close() error
}

package speech

import (
	"sync"

	"github.com/lexiqai/interview-gateway/internal/config"
	"github.com/rs/zerolog"
)

// Events are the coordinator's notifications to the surrounding layer.
// All callbacks are optional.
type Events struct {
	// OnListening fires when the capture channel starts or stops.
	OnListening func(active bool)

	// OnInterim delivers the current input buffer after each capture
	// result.
	OnInterim func(text string)

	// OnCaptureError fires once per capture failure. Typed input remains
	// usable afterwards.
	OnCaptureError func(err error)
}

// Coordinator wraps the capture and playback capabilities for one session.
// It enforces that listening and manual editing are mutually exclusive for
// input purposes; playback is independent and may run concurrently with
// either.
type Coordinator struct {
	recognizer Recognizer // nil when capture is unsupported
	synth      Synthesizer
	events     Events
	logger     zerolog.Logger

	rate   float64
	pitch  float64
	volume float64

	queue chan Utterance
	done  chan struct{}

	mu        sync.Mutex
	listening bool
	buffer    string
}

// NewCoordinator creates a coordinator. recognizer may be nil, in which
// case StartCapture reports ErrCaptureUnsupported.
func NewCoordinator(cfg *config.Config, recognizer Recognizer, synth Synthesizer, logger zerolog.Logger, events Events) *Coordinator {
	c := &Coordinator{
		recognizer: recognizer,
		synth:      synth,
		events:     events,
		logger:     logger,
		rate:       cfg.SpeechRate,
		pitch:      cfg.SpeechPitch,
		volume:     cfg.SpeechVolume,
		queue:      make(chan Utterance, 32),
		done:       make(chan struct{}),
	}
	go c.playbackLoop()
	return c
}

// playbackLoop drains the utterance queue in call order. Ordering beyond
// that is delegated to the synthesizer.
func (c *Coordinator) playbackLoop() {
	for {
		select {
		case u := <-c.queue:
			if c.synth == nil {
				continue
			}
			if err := c.synth.Speak(u); err != nil {
				c.logger.Error().Err(err).Msg("Speech playback failed")
			}
		case <-c.done:
			return
		}
	}
}

// StartCapture begins a capture session. Valid only when not already
// listening. The input buffer is cleared and then replaced wholesale by
// each cumulative interim result.
func (c *Coordinator) StartCapture() error {
	if c.recognizer == nil {
		return ErrCaptureUnsupported
	}

	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return ErrAlreadyListening
	}
	c.listening = true
	c.buffer = ""
	c.mu.Unlock()

	cb := CaptureCallbacks{
		OnResult: c.handleResult,
		OnEnd:    c.handleEnd,
		OnError:  c.handleError,
	}
	if err := c.recognizer.Start(cb); err != nil {
		c.mu.Lock()
		c.listening = false
		c.mu.Unlock()
		return err
	}

	c.logger.Info().Msg("Speech capture started")
	c.notifyListening(true)
	return nil
}

// StopCapture ends the capture session, freezing the input buffer. Safe
// to call when not listening; that is a no-op.
func (c *Coordinator) StopCapture() {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.mu.Unlock()

	if err := c.recognizer.Stop(); err != nil {
		c.logger.Warn().Err(err).Msg("Error stopping speech capture")
	}
	c.notifyListening(false)
}

// SendAudio forwards an audio chunk to the active capture session.
func (c *Coordinator) SendAudio(audio []byte) error {
	c.mu.Lock()
	active := c.listening
	c.mu.Unlock()
	if !active || c.recognizer == nil {
		return nil // audio arriving outside a capture session is dropped
	}
	return c.recognizer.SendAudio(audio)
}

// handleResult replaces the input buffer with the cumulative utterance.
func (c *Coordinator) handleResult(text string) {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return
	}
	c.buffer = text
	c.mu.Unlock()

	if c.events.OnInterim != nil {
		c.events.OnInterim(text)
	}
}

// handleEnd resets the listening flag on engine-driven end of speech.
func (c *Coordinator) handleEnd() {
	c.mu.Lock()
	wasListening := c.listening
	c.listening = false
	c.mu.Unlock()

	if wasListening {
		c.notifyListening(false)
	}
}

// handleError stops capture and surfaces the failure once. The session
// continues; typed input remains usable.
func (c *Coordinator) handleError(err error) {
	c.mu.Lock()
	wasListening := c.listening
	c.listening = false
	c.mu.Unlock()

	c.logger.Error().Err(err).Msg("Speech capture error")
	if wasListening {
		c.notifyListening(false)
	}
	if c.events.OnCaptureError != nil {
		c.events.OnCaptureError(err)
	}
}

func (c *Coordinator) notifyListening(active bool) {
	if c.events.OnListening != nil {
		c.events.OnListening(active)
	}
}

// Listening reports whether capture is active.
func (c *Coordinator) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Buffer returns the current input buffer.
func (c *Coordinator) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// SetBuffer replaces the input buffer from the manual typing path.
func (c *Coordinator) SetBuffer(text string) {
	c.mu.Lock()
	c.buffer = text
	c.mu.Unlock()
}

// TakeInput freezes and returns the input buffer for submission. Capture
// is stopped first if it is running, guaranteeing the buffer cannot change
// after send.
func (c *Coordinator) TakeInput() string {
	c.StopCapture()

	c.mu.Lock()
	text := c.buffer
	c.buffer = ""
	c.mu.Unlock()
	return text
}

// Speak enqueues an utterance at the fixed rate/pitch/volume constants.
// Multiple calls queue in call order.
func (c *Coordinator) Speak(text string) {
	u := Utterance{Text: text, Rate: c.rate, Pitch: c.pitch, Volume: c.volume}
	select {
	case c.queue <- u:
	default:
		c.logger.Warn().Msg("Playback queue full, dropping utterance")
	}
}

// Close shuts the coordinator down and releases the capabilities.
func (c *Coordinator) Close() error {
	c.StopCapture()
	close(c.done)
	if c.recognizer != nil {
		if err := c.recognizer.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Error closing recognizer")
		}
	}
	if c.synth != nil {
		return c.synth.Close()
	}
	return nil
}

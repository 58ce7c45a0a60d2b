package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"

	websocketv1api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/rs/zerolog"

	"github.com/lexiqai/interview-gateway/internal/config"
)

// messageCallbackHandler implements the LiveMessageCallback interface.
// It embeds the default handler and overrides only the methods we need.
type messageCallbackHandler struct {
	*websocketv1api.DefaultCallbackHandler
	handler      func(*msginterfaces.MessageResponse)
	errorHandler func(*msginterfaces.ErrorResponse) error
}

func (m *messageCallbackHandler) Message(message *msginterfaces.MessageResponse) error {
	m.handler(message)
	return nil
}

func (m *messageCallbackHandler) Error(errorResponse *msginterfaces.ErrorResponse) error {
	if m.errorHandler != nil {
		return m.errorHandler(errorResponse)
	}
	return m.DefaultCallbackHandler.Error(errorResponse)
}

// DeepgramRecognizer implements Recognizer using Deepgram's streaming
// API. It converts Deepgram's interim/final results into the cumulative
// utterance-so-far text the coordinator expects.
type DeepgramRecognizer struct {
	config *config.Config
	logger zerolog.Logger

	mu       sync.Mutex
	client   *listenClient.WSCallback
	cb       CaptureCallbacks
	isActive bool
	finals   []string
	interim  string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewDeepgramRecognizer creates a new Deepgram streaming recognizer
func NewDeepgramRecognizer(cfg *config.Config, logger zerolog.Logger) *DeepgramRecognizer {
	ctx, cancel := context.WithCancel(context.Background())
	return &DeepgramRecognizer{
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins a Deepgram streaming transcription session
func (d *DeepgramRecognizer) Start(cb CaptureCallbacks) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isActive {
		return fmt.Errorf("deepgram recognizer is already active")
	}

	// A previous session ended by UtteranceEnd leaves its connection
	// behind; finish it so its trailing results cannot reach this session.
	if d.client != nil {
		d.client.Finish()
		d.client = nil
	}

	tOptions := &interfaces.LiveTranscriptionOptions{
		Model:          d.config.DeepgramModel,
		Language:       d.config.DeepgramLanguage,
		Punctuate:      true,
		InterimResults: true,
		UtteranceEndMs: "1000", // end of speech after 1 second of silence
		VadEvents:      true,
		Encoding:       "linear16",
		Channels:       1,
		SampleRate:     16000,
	}

	callback := &messageCallbackHandler{
		DefaultCallbackHandler: websocketv1api.NewDefaultCallbackHandler(),
		handler:                d.handleDeepgramMessage,
		errorHandler: func(errorResponse *msginterfaces.ErrorResponse) error {
			d.logger.Error().
				Str("type", errorResponse.Type).
				Str("description", errorResponse.Description).
				Msg("Deepgram capture error")

			d.mu.Lock()
			d.isActive = false
			errCb := d.cb.OnError
			d.mu.Unlock()

			if errCb != nil {
				errCb(fmt.Errorf("deepgram capture failed: %s", errorResponse.Description))
			}
			return nil
		},
	}

	client, err := listenClient.NewWSUsingCallback(
		d.ctx,
		d.config.DeepgramAPIKey,
		nil, // ClientOptions - nil uses defaults
		tOptions,
		callback,
	)
	if err != nil {
		return fmt.Errorf("failed to create Deepgram client: %w", err)
	}

	d.client = client
	d.cb = cb
	d.isActive = true
	d.finals = nil
	d.interim = ""

	d.logger.Info().
		Str("model", d.config.DeepgramModel).
		Str("language", d.config.DeepgramLanguage).
		Msg("Deepgram capture session started")
	return nil
}

// handleDeepgramMessage processes messages from Deepgram
func (d *DeepgramRecognizer) handleDeepgramMessage(msg *msginterfaces.MessageResponse) {
	if msg == nil {
		return
	}

	switch msg.Type {
	case "SpeechStarted":
		d.logger.Debug().Msg("Deepgram: speech started")

	case "UtteranceEnd":
		d.mu.Lock()
		d.isActive = false
		client := d.client
		d.client = nil
		endCb := d.cb.OnEnd
		d.mu.Unlock()
		if client != nil {
			client.Finish()
		}
		if endCb != nil {
			endCb()
		}

	case "Results", "Message":
		if len(msg.Channel.Alternatives) == 0 {
			return
		}
		alt := msg.Channel.Alternatives[0]
		if alt.Transcript == "" {
			return
		}

		d.mu.Lock()
		if !d.isActive {
			// A trailing flush from a finished connection; it must not
			// leak into the next capture session.
			d.mu.Unlock()
			return
		}
		if msg.IsFinal {
			d.finals = append(d.finals, alt.Transcript)
			d.interim = ""
		} else {
			d.interim = alt.Transcript
		}
		cumulative := d.cumulativeLocked()
		resultCb := d.cb.OnResult
		d.mu.Unlock()

		if resultCb != nil {
			resultCb(cumulative)
		}

	default:
		d.logger.Debug().Str("type", msg.Type).Msg("Deepgram: unhandled message type")
	}
}

// cumulativeLocked joins finalized segments and the current interim into
// the full utterance observed so far. Caller must hold d.mu.
func (d *DeepgramRecognizer) cumulativeLocked() string {
	parts := make([]string, 0, len(d.finals)+1)
	parts = append(parts, d.finals...)
	if d.interim != "" {
		parts = append(parts, d.interim)
	}
	return strings.Join(parts, " ")
}

// SendAudio sends an audio chunk to Deepgram
func (d *DeepgramRecognizer) SendAudio(audio []byte) error {
	d.mu.Lock()
	active := d.isActive
	client := d.client
	d.mu.Unlock()

	if !active || client == nil {
		return fmt.Errorf("deepgram recognizer is not active")
	}

	if _, err := client.Write(audio); err != nil {
		return fmt.Errorf("failed to send audio to Deepgram: %w", err)
	}
	return nil
}

// Stop ends the streaming session
func (d *DeepgramRecognizer) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isActive {
		return nil // already stopped
	}

	d.client.Finish()
	d.client = nil
	d.isActive = false
	d.logger.Info().Msg("Deepgram capture session stopped")
	return nil
}

// Close closes the recognizer and cleans up resources
func (d *DeepgramRecognizer) Close() error {
	d.cancel()
	return d.Stop()
}

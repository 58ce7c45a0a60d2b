package speech

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lexiqai/interview-gateway/internal/config"
)

// AudioSink receives synthesized audio. The gateway forwards chunks to
// the connected client.
type AudioSink func(audio []byte)

// DeepgramSynthesizer implements Synthesizer using Deepgram's speak REST
// API. Synthesis runs asynchronously; audio is delivered to the sink and
// no completion signal is surfaced to the caller.
type DeepgramSynthesizer struct {
	config     *config.Config
	apiKey     string
	apiURL     string
	httpClient *http.Client
	sink       AudioSink
	logger     zerolog.Logger

	mu       sync.Mutex
	isActive bool
}

type speakRequest struct {
	Text string `json:"text"`
}

// NewDeepgramSynthesizer creates a new Deepgram speak client
func NewDeepgramSynthesizer(cfg *config.Config, sink AudioSink, logger zerolog.Logger) *DeepgramSynthesizer {
	return &DeepgramSynthesizer{
		config:     cfg,
		apiKey:     cfg.DeepgramAPIKey,
		apiURL:     "https://api.deepgram.com/v1/speak",
		httpClient: &http.Client{},
		sink:       sink,
		logger:     logger,
	}
}

// Speak synthesizes the utterance text and streams the audio to the sink.
// Rate, pitch and volume are applied client-side at playback; the speak
// API itself only consumes the text and voice model.
func (s *DeepgramSynthesizer) Speak(u Utterance) error {
	if s.apiKey == "" {
		return fmt.Errorf("deepgram api key missing")
	}

	query := url.Values{}
	query.Set("model", s.config.DeepgramSpeakModel)
	query.Set("encoding", "linear16")
	query.Set("sample_rate", "24000")
	endpoint := s.apiURL + "?" + query.Encode()

	jsonData, err := json.Marshal(speakRequest{Text: u.Text})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+s.apiKey)

	s.mu.Lock()
	s.isActive = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isActive = false
			s.mu.Unlock()
		}()

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.logger.Error().Err(err).Msg("Deepgram speak request failed")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			s.logger.Error().Int("status", resp.StatusCode).Msg("Deepgram speak returned non-OK status")
			return
		}

		audio, err := io.ReadAll(resp.Body)
		if err != nil {
			s.logger.Error().Err(err).Msg("Error reading Deepgram speak response")
			return
		}
		if len(audio) == 0 {
			s.logger.Warn().Msg("Deepgram speak returned empty audio")
			return
		}

		if s.sink != nil {
			s.sink(audio)
		}
		s.logger.Debug().Int("bytes", len(audio)).Msg("Synthesized utterance")
	}()

	return nil
}

// IsActive returns whether a synthesis request is in flight
func (s *DeepgramSynthesizer) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isActive
}

// Close closes the synthesizer
func (s *DeepgramSynthesizer) Close() error {
	return nil
}

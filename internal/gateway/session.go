// Package gateway exposes interview sessions over a WebSocket endpoint.
// Each connection owns one session controller, one speech coordinator and
// one outbound event pump.
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/interview-gateway/internal/config"
	"github.com/lexiqai/interview-gateway/internal/interview"
	"github.com/lexiqai/interview-gateway/internal/llm"
	"github.com/lexiqai/interview-gateway/internal/observability"
	"github.com/lexiqai/interview-gateway/internal/speech"
	"github.com/lexiqai/interview-gateway/internal/transcript"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// In production, validate the origin of the interview client.
		// For now, allow all origins (development only).
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// SessionConn holds the state of a single connected interview client.
type SessionConn struct {
	conn   *websocket.Conn
	config *config.Config

	sessionID string
	logger    zerolog.Logger
	metrics   *observability.SessionMetrics

	controller  *interview.Controller
	coordinator *speech.Coordinator

	outbound  chan serverEvent
	done      chan struct{}
	closeOnce sync.Once
}

// HandleSessionWS is the entry point for interview WebSocket connections.
func HandleSessionWS(cfg *config.Config, client llm.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger := observability.GetLogger()
			logger.Error().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}
		defer conn.Close()

		session := NewSessionConn(conn, cfg, client)
		session.logger.Info().Msg("Interview client connected")

		go session.writeLoop()
		session.readLoop()
		session.shutdown()
	}
}

// NewSessionConn wires up the orchestrator for one connection.
func NewSessionConn(conn *websocket.Conn, cfg *config.Config, client llm.Client) *SessionConn {
	sessionID := observability.NewSessionID()
	logger := observability.WithSessionID(sessionID)
	metrics := observability.NewSessionMetrics(sessionID)

	s := &SessionConn{
		conn:      conn,
		config:    cfg,
		sessionID: sessionID,
		logger:    logger,
		metrics:   metrics,
		outbound:  make(chan serverEvent, 64),
		done:      make(chan struct{}),
	}

	var recognizer speech.Recognizer
	if cfg.SpeechCaptureEnabled() {
		recognizer = speech.NewDeepgramRecognizer(cfg, logger)
	}

	var synth speech.Synthesizer
	if cfg.DeepgramAPIKey != "" {
		synth = speech.NewDeepgramSynthesizer(cfg, s.sendAudio, logger)
	} else {
		// No speech backend configured: hand utterances to the client,
		// which plays them with its native synthesis engine.
		synth = &clientSynthesizer{send: s.send}
	}
	synth = &meteredSynthesizer{inner: synth, metrics: metrics}

	s.coordinator = speech.NewCoordinator(cfg, recognizer, synth, logger, speech.Events{
		OnListening: func(active bool) {
			s.send(serverEvent{Event: "listening", Active: boolPtr(active)})
		},
		OnInterim: func(text string) {
			s.send(serverEvent{Event: "interim", Text: text})
		},
		OnCaptureError: func(err error) {
			s.metrics.RecordError("capture_failed", "speech")
			s.send(serverEvent{Event: "error", Code: "capture_error", Error: "Speech recognition error. Please try again."})
		},
	})

	s.controller = interview.NewController(cfg, client, s.coordinator, logger, metrics, interview.Hooks{
		OnMessage: func(m transcript.Message) {
			msg := m
			s.send(serverEvent{Event: "message", Message: &msg})
		},
		OnCodingSurface: func(visible bool) {
			s.send(serverEvent{Event: "coding_surface", Visible: boolPtr(visible)})
		},
	})

	return s
}

// readLoop handles all incoming WebSocket messages until the connection
// drops.
func (s *SessionConn) readLoop() {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			s.logger.Error().Err(err).Msg("Failed to parse client event")
			continue
		}

		s.handleEvent(ev)
	}
}

// handleEvent dispatches one client event.
func (s *SessionConn) handleEvent(ev clientEvent) {
	switch ev.Event {
	case evSelectDomain:
		if _, err := s.controller.SelectDomain(ev.Domain); err != nil {
			s.sendError("invalid_state", err)
		}

	case evUserTurn:
		// The turn runs off the read loop so capture/audio events keep
		// flowing; the engine's gate rejects overlapping submissions.
		go s.submitTurn(ev.Text)

	case evInput:
		// Manual typing path: the client mirrors its input box so the
		// buffer is consistent if the user switches to the mic.
		s.coordinator.SetBuffer(ev.Text)

	case evStartCapture:
		if err := s.coordinator.StartCapture(); err == nil {
			s.metrics.RecordCapture(true)
		} else {
			switch {
			case errors.Is(err, speech.ErrCaptureUnsupported):
				s.sendErrorMessage("capture_unsupported", "Speech capture is not available.")
			case errors.Is(err, speech.ErrAlreadyListening):
				// Redundant start; nothing to do.
			default:
				s.metrics.RecordCapture(false)
				s.sendErrorMessage("capture_error", "Could not start speech capture.")
			}
		}

	case evStopCapture:
		s.coordinator.StopCapture()

	case evAudio:
		audio, err := base64.StdEncoding.DecodeString(ev.Payload)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to decode audio payload")
			return
		}
		if err := s.coordinator.SendAudio(audio); err != nil {
			s.logger.Error().Err(err).Msg("Error forwarding audio to recognizer")
		}

	case evCodingSurface:
		if err := s.controller.SetCodingSurfaceVisible(ev.Visible); err != nil {
			s.sendError("invalid_state", err)
		}

	case evEndInterview:
		card, err := s.controller.EndInterview()
		if err != nil {
			s.sendError("invalid_state", err)
			return
		}
		s.send(serverEvent{Event: "scorecard", Scorecard: &card})

	case evNewInterview:
		s.controller.NewInterview()
		s.send(serverEvent{Event: "reset"})

	default:
		s.logger.Debug().Str("event", ev.Event).Msg("Unknown client event")
	}
}

// submitTurn runs one conversational turn. When text is empty the frozen
// capture buffer is submitted instead; otherwise capture is stopped first
// so the buffer cannot change under the send.
func (s *SessionConn) submitTurn(text string) {
	if text == "" {
		text = s.coordinator.TakeInput()
	} else {
		s.coordinator.StopCapture()
	}

	_, err := s.controller.SubmitUserTurn(context.Background(), text)
	switch {
	case err == nil:
		// Messages and surface changes already flowed through hooks.
	case errors.Is(err, interview.ErrEmptyInput):
		// Silently ignored per the input contract.
	case errors.Is(err, interview.ErrSessionDiscarded):
		// Stale reply against a reset session; nothing to report.
	case errors.Is(err, interview.ErrTurnInFlight):
		s.sendErrorMessage("turn_in_flight", "Please wait for the current response.")
	case errors.Is(err, interview.ErrNoActiveInterview):
		s.sendErrorMessage("invalid_state", "No active interview.")
	default:
		s.sendErrorMessage("service_error", "Failed to generate AI response")
	}
}

// send queues an event for the client without blocking the caller.
func (s *SessionConn) send(ev serverEvent) {
	select {
	case s.outbound <- ev:
	case <-s.done:
	default:
		s.logger.Warn().Str("event", ev.Event).Msg("Outbound queue full, dropping event")
	}
}

func (s *SessionConn) sendError(code string, err error) {
	s.send(serverEvent{Event: "error", Code: code, Error: err.Error()})
}

func (s *SessionConn) sendErrorMessage(code, message string) {
	s.send(serverEvent{Event: "error", Code: code, Error: message})
}

// sendAudio forwards synthesized audio to the client.
func (s *SessionConn) sendAudio(audio []byte) {
	s.send(serverEvent{Event: "audio", Audio: base64.StdEncoding.EncodeToString(audio)})
}

// writeLoop is the single writer for the WebSocket connection.
func (s *SessionConn) writeLoop() {
	for {
		select {
		case ev := <-s.outbound:
			if err := s.conn.WriteJSON(ev); err != nil {
				s.logger.Warn().Err(err).Msg("WebSocket write error")
				return
			}
		case <-s.done:
			return
		}
	}
}

// shutdown tears the session down after the connection drops.
func (s *SessionConn) shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.controller.State() == interview.StateActiveInterview {
			s.metrics.RecordSessionEnd()
		}
		if err := s.coordinator.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing speech coordinator")
		}
		s.logger.Info().Msg("Interview client disconnected")
	})
}

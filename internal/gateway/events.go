package gateway

import (
	"github.com/lexiqai/interview-gateway/internal/scorecard"
	"github.com/lexiqai/interview-gateway/internal/speech"
	"github.com/lexiqai/interview-gateway/internal/transcript"
)

// clientEvent is a message from the browser client.
type clientEvent struct {
	Event   string `json:"event"`
	Domain  string `json:"domain,omitempty"`
	Text    string `json:"text,omitempty"`
	Payload string `json:"payload,omitempty"` // base64 encoded audio
	Visible bool   `json:"visible,omitempty"`
}

// Client event names.
const (
	evSelectDomain  = "select_domain"
	evUserTurn      = "user_turn"
	evInput         = "input"
	evStartCapture  = "start_capture"
	evStopCapture   = "stop_capture"
	evAudio         = "audio"
	evCodingSurface = "coding_surface"
	evEndInterview  = "end_interview"
	evNewInterview  = "new_interview"
)

// serverEvent is a message to the browser client.
type serverEvent struct {
	Event     string               `json:"event"`
	Message   *transcript.Message  `json:"message,omitempty"`
	Text      string               `json:"text,omitempty"`
	Active    *bool                `json:"active,omitempty"`
	Visible   *bool                `json:"visible,omitempty"`
	Utterance *speech.Utterance    `json:"utterance,omitempty"`
	Audio     string               `json:"audio,omitempty"` // base64 encoded audio
	Scorecard *scorecard.Scorecard `json:"scorecard,omitempty"`
	Code      string               `json:"code,omitempty"`
	Error     string               `json:"error,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

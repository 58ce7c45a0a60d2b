// Package interview contains the session orchestrator: the state machine
// that drives a simulated interview from domain selection through the
// final scorecard.
package interview

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/interview-gateway/internal/config"
	"github.com/lexiqai/interview-gateway/internal/llm"
	"github.com/lexiqai/interview-gateway/internal/observability"
	"github.com/lexiqai/interview-gateway/internal/scorecard"
	"github.com/lexiqai/interview-gateway/internal/speech"
	"github.com/lexiqai/interview-gateway/internal/transcript"
)

// State is the lifecycle phase of a controller.
type State int

const (
	StateDomainSelection State = iota
	StateActiveInterview
	StateScorecard
)

func (s State) String() string {
	switch s {
	case StateDomainSelection:
		return "domain_selection"
	case StateActiveInterview:
		return "active_interview"
	case StateScorecard:
		return "scorecard"
	}
	return "unknown"
}

var (
	// ErrEmptyInput rejects empty or whitespace-only submissions. The
	// session is left untouched; callers ignore it silently.
	ErrEmptyInput = errors.New("empty input submitted")

	// ErrTurnInFlight rejects a submission while a language model
	// request is outstanding. At most one turn is in flight per session.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrNoActiveInterview rejects turn operations outside
	// StateActiveInterview.
	ErrNoActiveInterview = errors.New("no active interview")

	// ErrSessionDiscarded reports that the session was reset or ended
	// while the language model request was outstanding. The stale reply
	// has been dropped; callers must not surface this to the user.
	ErrSessionDiscarded = errors.New("session discarded while turn was in flight")
)

const welcomeTemplate = "Welcome to your %s interview! I'm your AI interviewer. Let's start with some questions to understand your background. Are you ready to begin?"

// Session is the full state of one interview. It is owned by the
// Controller and discarded wholesale on reset.
type Session struct {
	Domain               string
	Transcript           *transcript.Store
	QuestionNumber       int
	CurrentQuestion      string
	CodingSurfaceVisible bool
}

// Hooks let the transport layer observe session mutations. All hooks are
// optional and are invoked outside the controller lock.
type Hooks struct {
	// OnMessage fires after a message has been appended to the transcript.
	OnMessage func(m transcript.Message)

	// OnCodingSurface fires when coding surface visibility changes.
	OnCodingSurface func(visible bool)
}

// Controller is the top-level interview state machine. All mutation of the
// session happens under one lock; the only suspending operation is the
// language model request, which runs with the lock released behind the
// one-in-flight gate.
type Controller struct {
	cfg     *config.Config
	llm     llm.Client
	speech  *speech.Coordinator
	logger  zerolog.Logger
	metrics *observability.SessionMetrics
	hooks   Hooks

	speakDelay time.Duration

	mu         sync.Mutex
	state      State
	session    *Session
	inFlight   bool
	generation uint64
}

// NewController creates a controller in StateDomainSelection. The speech
// coordinator may be nil when no playback surface exists.
func NewController(cfg *config.Config, client llm.Client, coordinator *speech.Coordinator, logger zerolog.Logger, metrics *observability.SessionMetrics, hooks Hooks) *Controller {
	return &Controller{
		cfg:        cfg,
		llm:        client,
		speech:     coordinator,
		logger:     logger,
		metrics:    metrics,
		hooks:      hooks,
		speakDelay: time.Duration(cfg.SpeakDelayMs) * time.Millisecond,
		state:      StateDomainSelection,
	}
}

// SelectDomain starts the interview for the given domain. The transcript
// begins with the templated welcome greeting as its sole entry.
func (c *Controller) SelectDomain(domain string) (transcript.Message, error) {
	c.mu.Lock()
	if c.state != StateDomainSelection {
		state := c.state
		c.mu.Unlock()
		return transcript.Message{}, fmt.Errorf("cannot select domain in state %s", state)
	}

	store := transcript.NewStore()
	welcome := store.NewMessage(fmt.Sprintf(welcomeTemplate, domain), transcript.SenderAI)
	store.Append(welcome)

	c.session = &Session{
		Domain:          domain,
		Transcript:      store,
		QuestionNumber:  1,
		CurrentQuestion: welcome.Text,
	}
	c.state = StateActiveInterview
	c.mu.Unlock()

	c.logger.Info().Str("domain", domain).Msg("Interview started")
	if c.metrics != nil {
		c.metrics.RecordSessionStart()
		c.metrics.RecordMessage(string(transcript.SenderAI))
	}
	if c.hooks.OnMessage != nil {
		c.hooks.OnMessage(welcome)
	}
	return welcome, nil
}

// EndInterview freezes the transcript and derives the scorecard. No
// further turns are accepted afterwards.
func (c *Controller) EndInterview() (scorecard.Scorecard, error) {
	c.mu.Lock()
	if c.state != StateActiveInterview || c.session == nil {
		state := c.state
		c.mu.Unlock()
		return scorecard.Scorecard{}, fmt.Errorf("cannot end interview in state %s", state)
	}
	c.state = StateScorecard
	session := c.session
	c.mu.Unlock()

	card := scorecard.Compute(session.Domain, session.Transcript)
	c.logger.Info().
		Str("domain", session.Domain).
		Int("questions_asked", card.QuestionsAsked).
		Int("responses_given", card.ResponsesGiven).
		Msg("Interview ended")
	if c.metrics != nil {
		c.metrics.RecordSessionEnd()
	}
	return card, nil
}

// NewInterview discards the session unconditionally and returns to domain
// selection. An in-flight language model request is not cancelled; its
// reply is dropped on arrival against the discarded session.
func (c *Controller) NewInterview() {
	if c.speech != nil {
		c.speech.StopCapture()
	}

	c.mu.Lock()
	c.generation++
	c.session = nil
	c.inFlight = false
	c.state = StateDomainSelection
	c.mu.Unlock()

	c.logger.Info().Msg("Session reset")
	if c.hooks.OnCodingSurface != nil {
		c.hooks.OnCodingSurface(false)
	}
}

// SetCodingSurfaceVisible mutates coding surface visibility during an
// active interview, driven by the detector or an explicit user action.
func (c *Controller) SetCodingSurfaceVisible(visible bool) error {
	c.mu.Lock()
	if c.state != StateActiveInterview || c.session == nil {
		c.mu.Unlock()
		return ErrNoActiveInterview
	}
	changed := c.session.CodingSurfaceVisible != visible
	c.session.CodingSurfaceVisible = visible
	c.mu.Unlock()

	if changed && c.hooks.OnCodingSurface != nil {
		c.hooks.OnCodingSurface(visible)
	}
	return nil
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current session value. ok is false in
// StateDomainSelection.
func (c *Controller) Snapshot() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

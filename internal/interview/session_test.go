package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lexiqai/interview-gateway/internal/config"
	"github.com/lexiqai/interview-gateway/internal/transcript"
)

func TestEndInterview_FreezesSession(t *testing.T) {
	client := &fakeLLM{replies: []string{"What projects have you shipped?"}}
	c := startedController(t, client, "Product Management")

	if _, err := c.SubmitUserTurn(context.Background(), "I'm ready"); err != nil {
		t.Fatalf("SubmitUserTurn() failed: %v", err)
	}

	card, err := c.EndInterview()
	if err != nil {
		t.Fatalf("EndInterview() failed: %v", err)
	}
	if c.State() != StateScorecard {
		t.Errorf("Expected state scorecard, got %s", c.State())
	}
	if card.Domain != "Product Management" {
		t.Errorf("Expected scorecard domain preserved, got %q", card.Domain)
	}
	if card.QuestionsAsked != 2 {
		t.Errorf("Expected 2 questions asked (welcome + reply), got %d", card.QuestionsAsked)
	}
	if card.ResponsesGiven != 1 {
		t.Errorf("Expected 1 response given, got %d", card.ResponsesGiven)
	}

	// No further turns are accepted after the interview ends.
	if _, err := c.SubmitUserTurn(context.Background(), "one more"); !errors.Is(err, ErrNoActiveInterview) {
		t.Errorf("Expected ErrNoActiveInterview after end, got %v", err)
	}
	if _, err := c.EndInterview(); err == nil {
		t.Error("Expected error ending an already-ended interview")
	}
}

func TestEndInterview_RequiresActiveInterview(t *testing.T) {
	c := testController(&fakeLLM{})

	if _, err := c.EndInterview(); err == nil {
		t.Error("Expected error ending an interview during domain selection")
	}
}

func TestNewInterview_ResetsEverything(t *testing.T) {
	c := startedController(t, &fakeLLM{}, "Software Development")

	if _, err := c.SubmitUserTurn(context.Background(), "hello"); err != nil {
		t.Fatalf("SubmitUserTurn() failed: %v", err)
	}

	c.NewInterview()

	if c.State() != StateDomainSelection {
		t.Errorf("Expected state domain_selection, got %s", c.State())
	}
	if _, ok := c.Snapshot(); ok {
		t.Error("Expected no session after reset")
	}

	// A fresh interview starts clean.
	welcome, err := c.SelectDomain("Design & UX")
	if err != nil {
		t.Fatalf("SelectDomain() after reset failed: %v", err)
	}
	session, _ := c.Snapshot()
	if session.Transcript.Len() != 1 {
		t.Errorf("Expected a fresh transcript, got %d entries", session.Transcript.Len())
	}
	if session.Transcript.Messages()[0].ID != welcome.ID {
		t.Error("Expected the new welcome as the sole entry")
	}
}

func TestNewInterview_FromScorecard(t *testing.T) {
	c := startedController(t, &fakeLLM{}, "Software Development")
	if _, err := c.EndInterview(); err != nil {
		t.Fatalf("EndInterview() failed: %v", err)
	}

	c.NewInterview()
	if c.State() != StateDomainSelection {
		t.Errorf("Expected state domain_selection, got %s", c.State())
	}
}

func TestNewInterview_IdempotentFromDomainSelection(t *testing.T) {
	c := testController(&fakeLLM{})
	c.NewInterview()
	c.NewInterview()
	if c.State() != StateDomainSelection {
		t.Errorf("Expected state domain_selection, got %s", c.State())
	}
}

func TestSetCodingSurfaceVisible(t *testing.T) {
	var events []bool
	client := &fakeLLM{}
	cfg := &config.Config{SpeakDelayMs: 0}
	c := NewController(cfg, client, nil, zerolog.Nop(), nil, Hooks{
		OnCodingSurface: func(visible bool) { events = append(events, visible) },
	})

	if err := c.SetCodingSurfaceVisible(true); !errors.Is(err, ErrNoActiveInterview) {
		t.Errorf("Expected ErrNoActiveInterview before the interview, got %v", err)
	}

	if _, err := c.SelectDomain("Software Development"); err != nil {
		t.Fatalf("SelectDomain() failed: %v", err)
	}

	if err := c.SetCodingSurfaceVisible(true); err != nil {
		t.Fatalf("SetCodingSurfaceVisible(true) failed: %v", err)
	}
	session, _ := c.Snapshot()
	if !session.CodingSurfaceVisible {
		t.Error("Expected the coding surface visible")
	}

	// Unchanged visibility does not refire the hook.
	if err := c.SetCodingSurfaceVisible(true); err != nil {
		t.Fatalf("SetCodingSurfaceVisible(true) repeat failed: %v", err)
	}
	if err := c.SetCodingSurfaceVisible(false); err != nil {
		t.Fatalf("SetCodingSurfaceVisible(false) failed: %v", err)
	}

	want := []bool{true, false}
	if len(events) != len(want) {
		t.Fatalf("Expected %d hook events, got %d: %v", len(want), len(events), events)
	}
	for i, v := range want {
		if events[i] != v {
			t.Errorf("Hook event %d: expected %v, got %v", i, v, events[i])
		}
	}
}

func TestStateString(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{StateDomainSelection, "domain_selection"},
		{StateActiveInterview, "active_interview"},
		{StateScorecard, "scorecard"},
		{State(42), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestHooks_MessageOrder(t *testing.T) {
	var senders []transcript.Sender
	client := &fakeLLM{}
	cfg := &config.Config{SpeakDelayMs: 0}
	c := NewController(cfg, client, nil, zerolog.Nop(), nil, Hooks{
		OnMessage: func(m transcript.Message) { senders = append(senders, m.Sender) },
	})

	if _, err := c.SelectDomain("Software Development"); err != nil {
		t.Fatalf("SelectDomain() failed: %v", err)
	}
	if _, err := c.SubmitUserTurn(context.Background(), "hi"); err != nil {
		t.Fatalf("SubmitUserTurn() failed: %v", err)
	}

	want := []transcript.Sender{transcript.SenderAI, transcript.SenderUser, transcript.SenderAI}
	if len(senders) != len(want) {
		t.Fatalf("Expected %d hook messages, got %d", len(want), len(senders))
	}
	for i, s := range want {
		if senders[i] != s {
			t.Errorf("Hook message %d: expected sender %q, got %q", i, s, senders[i])
		}
	}
}

package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lexiqai/interview-gateway/internal/challenge"
	"github.com/lexiqai/interview-gateway/internal/llm"
	"github.com/lexiqai/interview-gateway/internal/transcript"
)

const systemPromptTemplate = `You are an expert AI interviewer conducting a %s interview.

Key Guidelines:
- Ask relevant, progressive questions based on the domain
- Analyze user responses and provide brief feedback
- If asking coding/DSA questions, mention "coding question" in your response
- Keep responses conversational but professional
- Ask follow-up questions based on user answers
- Progress from basic to advanced topics
- Limit responses to 2-3 sentences for better conversation flow

Current question number: %d

For coding questions, format them clearly and mention it's a coding challenge.`

// TurnResult is the outcome of one successful user turn.
type TurnResult struct {
	User            transcript.Message
	Reply           transcript.Message
	QuestionNumber  int
	CodingChallenge bool
}

// SubmitUserTurn runs one conversational turn: it appends the user
// message, asks the language model for the interviewer's reply, appends
// it, and schedules playback.
//
// Empty or whitespace-only text is rejected without mutating anything.
// Only one turn may be in flight at a time. On a service failure no AI
// message is appended and the question counter is unchanged; the user's
// turn stays in the transcript so they may resubmit.
func (c *Controller) SubmitUserTurn(ctx context.Context, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	if c.state != StateActiveInterview || c.session == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveInterview
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrTurnInFlight
	}

	session := c.session
	gen := c.generation
	domain := session.Domain
	questionNumber := session.QuestionNumber

	// Snapshot the history before the new user message; the turn text is
	// sent as its own trailing entry.
	history := session.Transcript.Messages()

	userMsg := session.Transcript.NewMessage(text, transcript.SenderUser)
	session.Transcript.Append(userMsg)
	c.inFlight = true
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordMessage(string(transcript.SenderUser))
	}
	if c.hooks.OnMessage != nil {
		c.hooks.OnMessage(userMsg)
	}

	messages := buildPrompt(domain, questionNumber, history, text)

	if c.metrics != nil {
		c.metrics.RecordLLMStart()
	}
	reply, err := c.llm.Complete(ctx, messages)

	c.mu.Lock()
	if gen != c.generation {
		// The session was discarded while the request was outstanding.
		// Drop the reply; there is nothing to attach it to.
		c.mu.Unlock()
		c.logger.Debug().Msg("Dropping language model reply for discarded session")
		return nil, ErrSessionDiscarded
	}
	c.inFlight = false
	if c.state != StateActiveInterview {
		// The interview ended while the request was outstanding. The
		// transcript is frozen; the reply is dropped unspoken.
		c.mu.Unlock()
		c.logger.Debug().Msg("Dropping language model reply for ended interview")
		return nil, ErrSessionDiscarded
	}

	if err != nil {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.RecordLLMEnd(false)
			c.metrics.RecordError("llm_request_failed", "interview")
		}
		c.logger.Error().Err(err).Msg("Failed to generate interviewer reply")
		return nil, fmt.Errorf("failed to generate interviewer reply: %w", err)
	}

	isChallenge := challenge.Detect(reply)

	aiMsg := session.Transcript.NewMessage(reply, transcript.SenderAI)
	session.Transcript.Append(aiMsg)
	session.CurrentQuestion = reply
	session.QuestionNumber++
	newQuestionNumber := session.QuestionNumber

	surfaceShown := false
	if isChallenge && !session.CodingSurfaceVisible {
		session.CodingSurfaceVisible = true
		surfaceShown = true
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordLLMEnd(true)
		c.metrics.RecordMessage(string(transcript.SenderAI))
		if surfaceShown {
			c.metrics.RecordCodingSurfaceShown()
		}
	}
	if c.hooks.OnMessage != nil {
		c.hooks.OnMessage(aiMsg)
	}
	if surfaceShown && c.hooks.OnCodingSurface != nil {
		c.hooks.OnCodingSurface(true)
	}

	c.schedulePlayback(gen, reply)

	return &TurnResult{
		User:            userMsg,
		Reply:           aiMsg,
		QuestionNumber:  newQuestionNumber,
		CodingChallenge: isChallenge,
	}, nil
}

// schedulePlayback hands the reply to the speech coordinator after a
// short fixed delay, so synthesized speech does not race the transcript
// update. The delay is part of the turn-taking contract.
func (c *Controller) schedulePlayback(gen uint64, reply string) {
	if c.speech == nil {
		return
	}
	time.AfterFunc(c.speakDelay, func() {
		c.mu.Lock()
		stale := gen != c.generation || c.state != StateActiveInterview
		c.mu.Unlock()
		if stale {
			return
		}
		c.speech.Speak(reply)
	})
}

// buildPrompt assembles the role-tagged request: the system instruction,
// the prior transcript (assistant/user roles in original order), and the
// new user text as the final entry.
func buildPrompt(domain string, questionNumber int, history []transcript.Message, userText string) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptTemplate, domain, questionNumber),
	})
	for _, m := range history {
		role := "user"
		if m.Sender == transcript.SenderAI {
			role = "assistant"
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: userText})
	return messages
}

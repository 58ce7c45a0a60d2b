// Package scorecard derives a summary assessment from a finished
// interview transcript.
package scorecard

import (
	"math/rand"
	"time"

	"github.com/lexiqai/interview-gateway/internal/transcript"
)

// Scorecard is a pure projection of a frozen transcript plus the domain
// string. It is computed once and never mutated.
type Scorecard struct {
	Domain              string `json:"domain"`
	CommunicationScore  int    `json:"communication_score"`
	TechnicalScore      int    `json:"technical_score"`
	ProblemSolvingScore int    `json:"problem_solving_score"`
	OverallScore        int    `json:"overall_score"`
	PerformanceLevel    string `json:"performance_level"`
	DurationMinutes     int    `json:"duration_minutes"`
	QuestionsAsked      int    `json:"questions_asked"`
	ResponsesGiven      int    `json:"responses_given"`
}

// Score bands per category. The four scores are a placeholder for a real
// analysis engine: they are drawn at random within these bands and are
// NOT derived from transcript content. Tests must only assert bounds.
const (
	communicationBase   = 75
	communicationRange  = 20
	technicalBase       = 70
	technicalRange      = 25
	problemSolvingBase  = 75
	problemSolvingRange = 20
	overallBase         = 80
	overallRange        = 15
)

// Performance thresholds on the overall score.
const (
	excellentThreshold = 85
	goodThreshold      = 70
)

// Compute builds the scorecard for a finished interview.
func Compute(domain string, store *transcript.Store) Scorecard {
	card := Scorecard{
		Domain:              domain,
		CommunicationScore:  communicationBase + rand.Intn(communicationRange),
		TechnicalScore:      technicalBase + rand.Intn(technicalRange),
		ProblemSolvingScore: problemSolvingBase + rand.Intn(problemSolvingRange),
		OverallScore:        overallBase + rand.Intn(overallRange),
		QuestionsAsked:      store.CountBySender(transcript.SenderAI),
		ResponsesGiven:      store.CountBySender(transcript.SenderUser),
	}

	if first, last, ok := store.Bounds(); ok && store.Len() >= 2 {
		card.DurationMinutes = int(last.Sub(first).Round(time.Minute) / time.Minute)
	}

	card.PerformanceLevel = PerformanceLevel(card.OverallScore)
	return card
}

// PerformanceLevel is a step function of the overall score.
func PerformanceLevel(overall int) string {
	switch {
	case overall >= excellentThreshold:
		return "Excellent"
	case overall >= goodThreshold:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

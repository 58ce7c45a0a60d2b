package scorecard

import (
	"testing"
	"time"

	"github.com/lexiqai/interview-gateway/internal/transcript"
)

func messageAt(id, text string, sender transcript.Sender, at time.Time) transcript.Message {
	return transcript.Message{ID: id, Text: text, Sender: sender, Timestamp: at}
}

func TestCompute_ScoresWithinBands(t *testing.T) {
	store := transcript.NewStore()
	store.Append(store.NewMessage("welcome", transcript.SenderAI))

	// Scores are random placeholders; only the bands are contractual.
	for i := 0; i < 50; i++ {
		card := Compute("Software Development", store)

		if card.CommunicationScore < 75 || card.CommunicationScore >= 95 {
			t.Fatalf("Communication score %d outside [75,95)", card.CommunicationScore)
		}
		if card.TechnicalScore < 70 || card.TechnicalScore >= 95 {
			t.Fatalf("Technical score %d outside [70,95)", card.TechnicalScore)
		}
		if card.ProblemSolvingScore < 75 || card.ProblemSolvingScore >= 95 {
			t.Fatalf("Problem solving score %d outside [75,95)", card.ProblemSolvingScore)
		}
		if card.OverallScore < 80 || card.OverallScore >= 95 {
			t.Fatalf("Overall score %d outside [80,95)", card.OverallScore)
		}
		if card.PerformanceLevel != PerformanceLevel(card.OverallScore) {
			t.Fatalf("Performance level %q inconsistent with overall %d", card.PerformanceLevel, card.OverallScore)
		}
	}
}

func TestCompute_Counts(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := transcript.NewStore()
	store.Append(messageAt("1", "welcome", transcript.SenderAI, base))
	store.Append(messageAt("2", "ready", transcript.SenderUser, base.Add(time.Minute)))
	store.Append(messageAt("3", "question one", transcript.SenderAI, base.Add(2*time.Minute)))
	store.Append(messageAt("4", "answer one", transcript.SenderUser, base.Add(3*time.Minute)))
	store.Append(messageAt("5", "question two", transcript.SenderAI, base.Add(4*time.Minute)))

	card := Compute("Data Science & Analytics", store)

	if card.Domain != "Data Science & Analytics" {
		t.Errorf("Expected domain preserved, got %q", card.Domain)
	}
	if card.QuestionsAsked != 3 {
		t.Errorf("Expected 3 questions asked, got %d", card.QuestionsAsked)
	}
	if card.ResponsesGiven != 2 {
		t.Errorf("Expected 2 responses given, got %d", card.ResponsesGiven)
	}
	if card.DurationMinutes != 4 {
		t.Errorf("Expected 4 minute duration, got %d", card.DurationMinutes)
	}
}

func TestCompute_DurationRoundsToNearestMinute(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"rounds down", 7*time.Minute + 20*time.Second, 7},
		{"rounds up", 7*time.Minute + 40*time.Second, 8},
		{"under half a minute", 25 * time.Second, 0},
	}

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := transcript.NewStore()
			store.Append(messageAt("1", "welcome", transcript.SenderAI, base))
			store.Append(messageAt("2", "bye", transcript.SenderUser, base.Add(tc.elapsed)))

			card := Compute("Software Development", store)
			if card.DurationMinutes != tc.want {
				t.Errorf("Elapsed %v: expected %d minutes, got %d", tc.elapsed, tc.want, card.DurationMinutes)
			}
		})
	}
}

func TestCompute_DurationZeroForShortTranscripts(t *testing.T) {
	empty := transcript.NewStore()
	if card := Compute("Software Development", empty); card.DurationMinutes != 0 {
		t.Errorf("Empty transcript: expected 0 minutes, got %d", card.DurationMinutes)
	}

	single := transcript.NewStore()
	single.Append(messageAt("1", "welcome", transcript.SenderAI, time.Now()))
	if card := Compute("Software Development", single); card.DurationMinutes != 0 {
		t.Errorf("Single message: expected 0 minutes, got %d", card.DurationMinutes)
	}
}

func TestPerformanceLevel(t *testing.T) {
	cases := []struct {
		overall int
		want    string
	}{
		{94, "Excellent"},
		{85, "Excellent"},
		{84, "Good"},
		{70, "Good"},
		{69, "Needs Improvement"},
		{0, "Needs Improvement"},
	}
	for _, tc := range cases {
		if got := PerformanceLevel(tc.overall); got != tc.want {
			t.Errorf("PerformanceLevel(%d) = %q, want %q", tc.overall, got, tc.want)
		}
	}
}

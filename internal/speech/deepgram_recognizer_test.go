package speech

import (
	"encoding/json"
	"testing"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	"github.com/rs/zerolog"

	"github.com/lexiqai/interview-gateway/internal/config"
)

func resultsMessage(t *testing.T, transcript string, isFinal bool) *msginterfaces.MessageResponse {
	t.Helper()
	payload := map[string]any{
		"type":     "Results",
		"is_final": isFinal,
		"channel": map[string]any{
			"alternatives": []map[string]any{{"transcript": transcript}},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal message: %v", err)
	}
	var msg msginterfaces.MessageResponse
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return &msg
}

func utteranceEndMessage() *msginterfaces.MessageResponse {
	return &msginterfaces.MessageResponse{Type: "UtteranceEnd"}
}

// activeRecognizer builds a recognizer mid-session without a live
// connection, so message handling can be exercised directly.
func activeRecognizer(cb CaptureCallbacks) *DeepgramRecognizer {
	d := NewDeepgramRecognizer(&config.Config{DeepgramModel: "nova-2", DeepgramLanguage: "en"}, zerolog.Nop())
	d.cb = cb
	d.isActive = true
	return d
}

func TestDeepgramRecognizer_CumulativeResults(t *testing.T) {
	var results []string
	d := activeRecognizer(CaptureCallbacks{
		OnResult: func(text string) { results = append(results, text) },
	})

	d.handleDeepgramMessage(resultsMessage(t, "hello", false))
	d.handleDeepgramMessage(resultsMessage(t, "hello there", true))
	d.handleDeepgramMessage(resultsMessage(t, "how are", false))

	want := []string{"hello", "hello there", "hello there how are"}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d: %v", len(want), len(results), results)
	}
	for i, text := range want {
		if results[i] != text {
			t.Errorf("Result %d: expected %q, got %q", i, text, results[i])
		}
	}
}

func TestDeepgramRecognizer_UtteranceEndReleasesConnection(t *testing.T) {
	ended := 0
	d := activeRecognizer(CaptureCallbacks{
		OnEnd: func() { ended++ },
	})

	d.handleDeepgramMessage(utteranceEndMessage())

	if ended != 1 {
		t.Fatalf("Expected 1 end callback, got %d", ended)
	}
	d.mu.Lock()
	active, client := d.isActive, d.client
	d.mu.Unlock()
	if active {
		t.Error("Expected the recognizer inactive after end of speech")
	}
	if client != nil {
		t.Error("Expected the connection released after end of speech")
	}
}

func TestDeepgramRecognizer_TrailingResultsDroppedAfterEnd(t *testing.T) {
	var results []string
	d := activeRecognizer(CaptureCallbacks{
		OnResult: func(text string) { results = append(results, text) },
	})

	d.handleDeepgramMessage(resultsMessage(t, "first utterance", true))
	d.handleDeepgramMessage(utteranceEndMessage())

	// A finished connection may still flush buffered results; they belong
	// to the ended session and must not survive into the next one.
	d.handleDeepgramMessage(resultsMessage(t, "stale flush", true))

	if len(results) != 1 || results[0] != "first utterance" {
		t.Fatalf("Expected only the pre-end result, got %v", results)
	}
	d.mu.Lock()
	finals := len(d.finals)
	d.mu.Unlock()
	if finals != 1 {
		t.Errorf("Expected the stale flush discarded, got %d finals", finals)
	}
}

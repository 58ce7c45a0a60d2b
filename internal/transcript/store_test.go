package transcript

import (
	"strconv"
	"testing"
	"time"
)

func TestStore_AppendPreservesOrder(t *testing.T) {
	store := NewStore()

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		m := store.NewMessage(text, SenderUser)
		store.Append(m)
	}

	messages := store.Messages()
	if len(messages) != len(texts) {
		t.Fatalf("Expected %d messages, got %d", len(texts), len(messages))
	}
	for i, text := range texts {
		if messages[i].Text != text {
			t.Errorf("Message %d: expected %q, got %q", i, text, messages[i].Text)
		}
	}
}

func TestStore_IDsAreMonotonic(t *testing.T) {
	store := NewStore()

	var prev int64
	for i := 0; i < 100; i++ {
		m := store.NewMessage("msg", SenderAI)
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			t.Fatalf("ID %q is not numeric: %v", m.ID, err)
		}
		if id <= prev {
			t.Fatalf("IDs not strictly increasing: %d then %d", prev, id)
		}
		prev = id
	}
}

func TestStore_MessagesReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Append(store.NewMessage("original", SenderAI))

	view := store.Messages()
	view[0].Text = "mutated"

	if store.Messages()[0].Text != "original" {
		t.Error("Mutating the returned view changed the store")
	}
}

func TestStore_CountBySender(t *testing.T) {
	store := NewStore()
	store.Append(store.NewMessage("welcome", SenderAI))
	store.Append(store.NewMessage("hi", SenderUser))
	store.Append(store.NewMessage("question", SenderAI))

	if got := store.CountBySender(SenderAI); got != 2 {
		t.Errorf("Expected 2 AI messages, got %d", got)
	}
	if got := store.CountBySender(SenderUser); got != 1 {
		t.Errorf("Expected 1 user message, got %d", got)
	}
}

func TestStore_Bounds(t *testing.T) {
	store := NewStore()

	if _, _, ok := store.Bounds(); ok {
		t.Error("Expected no bounds for an empty store")
	}

	first := Message{ID: "1", Text: "a", Sender: SenderAI, Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	last := Message{ID: "2", Text: "b", Sender: SenderUser, Timestamp: time.Date(2024, 1, 1, 10, 7, 0, 0, time.UTC)}
	store.Append(first)
	store.Append(last)

	gotFirst, gotLast, ok := store.Bounds()
	if !ok {
		t.Fatal("Expected bounds for a populated store")
	}
	if !gotFirst.Equal(first.Timestamp) || !gotLast.Equal(last.Timestamp) {
		t.Errorf("Bounds mismatch: got %v..%v", gotFirst, gotLast)
	}
}

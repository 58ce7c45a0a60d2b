// Package transcript holds the ordered message history of an interview
// session. The store is append-only and is the ground truth the scorecard
// is derived from.
package transcript

import (
	"strconv"
	"sync"
	"time"
)

// Sender identifies which side of the interview produced a message.
type Sender string

const (
	SenderAI   Sender = "ai"
	SenderUser Sender = "user"
)

// Message is a single transcript entry. Messages are immutable once
// appended.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is an append-only, ordered list of messages. It does not serialize
// concurrent appends into turn order; that is the conversation engine's
// job. The internal lock only keeps individual operations safe.
type Store struct {
	mu       sync.RWMutex
	messages []Message
	lastID   int64
}

// NewStore creates an empty transcript store.
func NewStore() *Store {
	return &Store{}
}

// NewMessage builds a message stamped with the current instant. IDs are
// millisecond-derived and strictly monotonic within the store, so two
// messages created in the same millisecond still get distinct IDs.
func (s *Store) NewMessage(text string, sender Sender) Message {
	now := time.Now()

	s.mu.Lock()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	s.mu.Unlock()

	return Message{
		ID:        strconv.FormatInt(id, 10),
		Text:      text,
		Sender:    sender,
		Timestamp: now,
	}
}

// Append adds a message to the end of the transcript. There is no delete
// or reorder operation.
func (s *Store) Append(m Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
}

// Messages returns a copy of the transcript in insertion order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the transcript.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// CountBySender returns the number of messages from the given sender.
func (s *Store) CountBySender(sender Sender) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if m.Sender == sender {
			n++
		}
	}
	return n
}

// Bounds returns the timestamps of the first and last messages. ok is
// false when the transcript is empty.
func (s *Store) Bounds() (first, last time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.messages[0].Timestamp, s.messages[len(s.messages)-1].Timestamp, true
}

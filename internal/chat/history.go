// Package chat maintains the bounded buffer of recent chat messages that is
// replayed to every client on join and after each broadcast.
package chat

import (
	"sync"
	"time"
)

// timestampLayout renders the wall-clock time clients display next to each
// message.
const timestampLayout = "15:04:05"

// Message is a single chat entry. Immutable once created.
type Message struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	PlayerID  string `json:"playerId"`
	Text      string `json:"message"`
}

// History is a fixed-capacity, insertion-ordered buffer of recent messages.
// When the capacity is exceeded the oldest entries are dropped from the
// front. Ids count every message ever accepted, so they keep increasing after
// trimming and are not contiguous with buffer positions.
type History struct {
	mu       sync.Mutex
	capacity int
	total    int
	messages []Message
}

// NewHistory creates an empty history holding at most capacity messages.
// Non-positive capacities fall back to 1.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{
		capacity: capacity,
		messages: make([]Message, 0, capacity),
	}
}

// Append records a new message with the next sequence id and returns it.
// The oldest entries are trimmed once the buffer exceeds its capacity.
func (h *History) Append(playerID, text string, now time.Time) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.total++
	msg := Message{
		ID:        h.total,
		Timestamp: now.Format(timestampLayout),
		PlayerID:  playerID,
		Text:      text,
	}
	h.messages = append(h.messages, msg)
	if len(h.messages) > h.capacity {
		h.messages = append(h.messages[:0:0], h.messages[len(h.messages)-h.capacity:]...)
	}
	return msg
}

// Snapshot returns a copy of the current buffer in arrival order. The slice
// is never nil so it marshals as an empty JSON array when the history is
// empty.
func (h *History) Snapshot() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make([]Message, len(h.messages))
	copy(snapshot, h.messages)
	return snapshot
}

// Len returns the number of buffered messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

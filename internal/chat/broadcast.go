// Package chat validates, rate-limits, moderates, records, and fans out chat
// messages to every registered player.
package chat

import (
	"log"
	"strings"
	"sync"
	"time"
)

const defaultMaxMessageLength = 100

// EngineConfig wires the collaborators of the broadcast engine.
type EngineConfig struct {
	Messages  *TokenBucket
	Moderator *Moderator
	History   *History
	Registry  *Registry
	MaxLength int
	Now       func() time.Time
}

// Engine runs the broadcast pipeline for submitted chat messages. Submission
// is fire-and-forget: invalid input is dropped and logged, never reported to
// the sender, and the absence of a broadcast is the only client-visible
// signal.
//
// The message-rate bucket is shared by all authors, so one chatty client can
// exhaust the budget for everyone. Per-author limiting would key a bucket by
// identity in the registry; the relay deliberately keeps the single global
// bucket.
type Engine struct {
	mu        sync.Mutex
	messages  *TokenBucket
	moderator *Moderator
	history   *History
	registry  *Registry
	maxLength int
	now       func() time.Time
}

// NewEngine creates a broadcast engine from the given collaborators.
func NewEngine(cfg EngineConfig) *Engine {
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = defaultMaxMessageLength
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		messages:  cfg.Messages,
		moderator: cfg.Moderator,
		history:   cfg.History,
		registry:  cfg.Registry,
		maxLength: maxLength,
		now:       now,
	}
}

// Submit runs the pipeline for one message from the given player,
// short-circuiting on the first failed check. Accepted messages are recorded
// in the history and the full history window is fanned out to every
// registered player, the author included.
//
// Submissions are serialized under one lock, so the history, the rate
// bucket, and the fan-out see each message to completion before the next
// begins. Per-author order is preserved because each connection submits from
// a single read loop.
func (e *Engine) Submit(playerID, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		log.Printf("Dropping empty message from player %s", playerID)
		return
	}

	if len([]rune(text)) > e.maxLength {
		log.Printf("Dropping message from player %s: exceeds %d characters", playerID, e.maxLength)
		return
	}

	if !e.messages.TryAcquire() {
		log.Printf("Message rate limit exceeded; dropping message from player %s", playerID)
		return
	}

	text = e.moderator.Filter(text)

	// Length is enforced again before storage; redaction keeps this a no-op
	// in practice.
	if runes := []rune(text); len(runes) > e.maxLength {
		text = string(runes[:e.maxLength])
	}

	msg := e.history.Append(playerID, text, e.now())

	payload, err := EncodeHistory(e.history.Snapshot())
	if err != nil {
		log.Printf("Error encoding chat history after message %d: %v", msg.ID, err)
		return
	}

	e.registry.ForEach(func(id string, conn Conn) {
		if err := conn.Send(payload); err != nil {
			log.Printf("Failed to deliver chat update to player %s: %v", id, err)
		}
	})
}

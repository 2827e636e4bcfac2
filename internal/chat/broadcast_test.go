package chat

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine   *Engine
	registry *Registry
	history  *History
}

func newEngineFixture(t *testing.T, messages *TokenBucket, moderator *Moderator) *engineFixture {
	t.Helper()
	if messages == nil {
		messages = NewTokenBucket(100, 100)
	}
	if moderator == nil {
		moderator = NewModerator(nil)
	}
	registry := NewRegistry()
	history := NewHistory(4)
	engine := NewEngine(EngineConfig{
		Messages:  messages,
		Moderator: moderator,
		History:   history,
		Registry:  registry,
		MaxLength: 100,
		Now:       func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	return &engineFixture{engine: engine, registry: registry, history: history}
}

func decodeEnvelope(t *testing.T, payload []byte) outboundEnvelope {
	t.Helper()
	var envelope outboundEnvelope
	require.NoError(t, json.Unmarshal(payload, &envelope))
	return envelope
}

func TestSubmitFansOutFullHistoryToAllPlayers(t *testing.T) {
	fx := newEngineFixture(t, nil, nil)
	author := newFakeConn()
	other := newFakeConn()
	require.NoError(t, fx.registry.TryRegister("author", author))
	require.NoError(t, fx.registry.TryRegister("other", other))

	fx.engine.Submit("author", "hello")

	for _, conn := range []*fakeConn{author, other} {
		payloads := conn.sentPayloads()
		require.Len(t, payloads, 1, "author and listeners alike receive the broadcast")

		envelope := decodeEnvelope(t, payloads[0])
		assert.Equal(t, "chat", envelope.Type)
		require.Len(t, envelope.Messages, 1)
		assert.Equal(t, 1, envelope.Messages[0].ID)
		assert.Equal(t, "author", envelope.Messages[0].PlayerID)
		assert.Equal(t, "hello", envelope.Messages[0].Text)
	}
}

func TestSubmitDropsEmptyMessages(t *testing.T) {
	fx := newEngineFixture(t, nil, nil)
	conn := newFakeConn()
	require.NoError(t, fx.registry.TryRegister("author", conn))

	fx.engine.Submit("author", "")
	fx.engine.Submit("author", "   \t  ")

	assert.Empty(t, conn.sentPayloads())
	assert.Equal(t, 0, fx.history.Len())
}

func TestSubmitEnforcesMaxLengthBoundary(t *testing.T) {
	fx := newEngineFixture(t, nil, nil)
	conn := newFakeConn()
	require.NoError(t, fx.registry.TryRegister("author", conn))

	fx.engine.Submit("author", strings.Repeat("a", 101))
	assert.Equal(t, 0, fx.history.Len(), "101 characters is over the limit")

	fx.engine.Submit("author", strings.Repeat("a", 100))
	assert.Equal(t, 1, fx.history.Len(), "exactly 100 characters is accepted")
}

func TestSubmitAppliesGlobalMessageRateLimit(t *testing.T) {
	fx := newEngineFixture(t, NewTokenBucket(1, 1), nil)
	conn := newFakeConn()
	require.NoError(t, fx.registry.TryRegister("author", conn))

	fx.engine.Submit("author", "first")
	fx.engine.Submit("author", "second within the same second")

	require.Len(t, conn.sentPayloads(), 1, "second message is dropped without a broadcast")
	assert.Equal(t, 1, fx.history.Len())

	// The bucket is global: a different author is throttled too.
	other := newFakeConn()
	require.NoError(t, fx.registry.TryRegister("other", other))
	fx.engine.Submit("other", "also dropped")
	assert.Equal(t, 1, fx.history.Len())
}

func TestSubmitRedactsBannedTermsButStillBroadcasts(t *testing.T) {
	fx := newEngineFixture(t, nil, NewModerator([]string{"heck"}))
	conn := newFakeConn()
	require.NoError(t, fx.registry.TryRegister("author", conn))

	fx.engine.Submit("author", "what the HECK is this")

	payloads := conn.sentPayloads()
	require.Len(t, payloads, 1, "redacted messages are still recorded and broadcast")

	envelope := decodeEnvelope(t, payloads[0])
	require.Len(t, envelope.Messages, 1)
	assert.Equal(t, RedactedText, envelope.Messages[0].Text)
}

func TestSubmitKeepsOnlyMostRecentWindow(t *testing.T) {
	fx := newEngineFixture(t, nil, nil)
	conn := newFakeConn()
	require.NoError(t, fx.registry.TryRegister("author", conn))

	for _, text := range []string{"one", "two", "three", "four", "five"} {
		fx.engine.Submit("author", text)
	}

	payloads := conn.sentPayloads()
	require.Len(t, payloads, 5)

	final := decodeEnvelope(t, payloads[4])
	require.Len(t, final.Messages, 4)
	assert.Equal(t, []int{2, 3, 4, 5}, []int{
		final.Messages[0].ID,
		final.Messages[1].ID,
		final.Messages[2].ID,
		final.Messages[3].ID,
	})
	assert.Equal(t, "two", final.Messages[0].Text)
	assert.Equal(t, "five", final.Messages[3].Text)
}

func TestSubmitLogsButContinuesOnDeadConnection(t *testing.T) {
	fx := newEngineFixture(t, nil, nil)
	dead := newFakeConn()
	live := newFakeConn()
	require.NoError(t, fx.registry.TryRegister("dead", dead))
	require.NoError(t, fx.registry.TryRegister("live", live))
	require.NoError(t, dead.Close(1000, "gone"))

	fx.engine.Submit("live", "anyone there")

	assert.Len(t, live.sentPayloads(), 1, "delivery failures to one player must not block the rest")
}

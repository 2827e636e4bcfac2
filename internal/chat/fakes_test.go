package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/liquemgames/globalchat/internal/identity"
)

// fakeConn records everything the core does to a connection handle.
type fakeConn struct {
	mu     sync.Mutex
	sent   [][]byte
	alive  bool
	code   int
	reason string
}

func newFakeConn() *fakeConn {
	return &fakeConn{alive: true}
}

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return errors.New("connection closed")
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	c.sent = append(c.sent, buf)
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = false
	c.code = code
	c.reason = reason
	return nil
}

func (c *fakeConn) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

func (c *fakeConn) sentPayloads() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *fakeConn) closeCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// fakeVerifier resolves tokens from a fixed table, or fails every call with
// err when set.
type fakeVerifier struct {
	ids   map[string]string
	err   error
	calls int32
}

func (v *fakeVerifier) Verify(_ context.Context, token string) (string, error) {
	atomic.AddInt32(&v.calls, 1)
	if v.err != nil {
		return "", v.err
	}
	id, ok := v.ids[token]
	if !ok || id == "" {
		return "", identity.ErrNoIdentity
	}
	return id, nil
}

func (v *fakeVerifier) callCount() int {
	return int(atomic.LoadInt32(&v.calls))
}

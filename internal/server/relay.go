// Package server wires the WebSocket transport to the chat core: it upgrades
// incoming requests, runs the admission pipeline, and pumps chat envelopes
// between clients and the broadcast engine.
package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/liquemgames/globalchat/internal/chat"
)

// Relay owns the transport side of the chat service. It tracks live
// connections so shutdown can close them all, but admission, moderation,
// history, and fan-out all live in the chat package.
type Relay struct {
	admission     *chat.Admission
	engine        *chat.Engine
	registry      *chat.Registry
	upgrader      websocket.Upgrader
	maxFrameBytes int64

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewRelay creates a relay around the given admission pipeline and broadcast
// engine.
func NewRelay(admission *chat.Admission, engine *chat.Engine, registry *chat.Registry, maxFrameBytes int64) *Relay {
	return &Relay{
		admission:     admission,
		engine:        engine,
		registry:      registry,
		maxFrameBytes: maxFrameBytes,
		clients:       make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The admission pipeline checks the origin after the upgrade so
			// rejected clients receive a close frame with a distinct code
			// instead of a failed handshake.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the request and runs the connection through the
// admission pipeline. The opaque auth token is the request path with the
// leading slash removed; non-upgrade requests get the health response so the
// relay can serve both on one port.
func (rl *Relay) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		HealthHandler(w, r)
		return
	}

	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	token := strings.TrimPrefix(r.URL.Path, "/")
	origin := originHeader(r)

	c := newClient(conn, r.RemoteAddr, rl.maxFrameBytes)
	rl.track(c)

	go rl.runSession(c, origin, token)
}

// runSession drives one connection from admission to disconnect.
func (rl *Relay) runSession(c *client, origin, token string) {
	defer rl.untrack(c)

	playerID, err := rl.admission.Admit(context.Background(), origin, token, c)
	if err != nil {
		// Admission already closed the connection with the rejection code.
		log.Printf("Connection %s from %s not admitted: %v", c.id, c.addr, err)
		return
	}

	log.Printf("Player %s joined global chat (conn %s). Active players: %d", playerID, c.id, rl.registry.Len())

	defer func() {
		rl.registry.Unregister(playerID)
		_ = c.Close(websocket.CloseNormalClosure, "")
		log.Printf("Player %s left global chat. Active players: %d", playerID, rl.registry.Len())
	}()

	c.readLoop(func(raw []byte) {
		text, ok := chat.DecodeInbound(raw)
		if !ok {
			log.Printf("Ignoring malformed envelope from player %s", playerID)
			return
		}
		rl.engine.Submit(playerID, text)
	})
}

// Shutdown closes every live connection with a going-away frame.
func (rl *Relay) Shutdown() {
	rl.mu.Lock()
	clients := make([]*client, 0, len(rl.clients))
	for c := range rl.clients {
		clients = append(clients, c)
	}
	rl.mu.Unlock()

	for _, c := range clients {
		_ = c.Close(websocket.CloseGoingAway, "server shutting down")
	}
	log.Printf("Closed %d client connection(s)", len(clients))
}

func (rl *Relay) track(c *client) {
	rl.mu.Lock()
	rl.clients[c] = struct{}{}
	rl.mu.Unlock()
}

func (rl *Relay) untrack(c *client) {
	rl.mu.Lock()
	delete(rl.clients, c)
	rl.mu.Unlock()
}

// originHeader returns the request origin, preferring the legacy
// Sec-Websocket-Origin header some embedded clients still send.
func originHeader(r *http.Request) string {
	if origin := r.Header.Get("Sec-Websocket-Origin"); origin != "" {
		return origin
	}
	return r.Header.Get("Origin")
}

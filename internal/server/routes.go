// Package server wires HTTP handlers into a ServeMux for the chat relay.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes. Every path is a potential WebSocket endpoint because clients carry
// their auth token in the path; non-upgrade requests fall through to the
// health handler.
func SetupRoutes(relay *Relay) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", relay.HandleWebSocket)
	return mux
}

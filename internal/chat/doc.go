// Package chat implements the core of the global chat relay: the connection
// admission pipeline and the moderated broadcast/history engine.
//
// The package is transport-agnostic. The websocket layer hands it an origin
// header, a token, and a Conn handle; everything else, from rate limiting to
// history fan-out, happens here. All shared structures are constructed once
// at startup and injected, so tests can run each component with fresh state.
package chat

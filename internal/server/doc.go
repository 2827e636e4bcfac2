// Package server implements the transport layer of the global chat relay:
// WebSocket upgrades, per-connection pumps, HTTP plumbing, and graceful
// shutdown.
//
// The package holds no chat semantics of its own. Admission decisions,
// rate limits, moderation, and history all belong to internal/chat; this
// package only moves frames and enforces socket hygiene.
package server

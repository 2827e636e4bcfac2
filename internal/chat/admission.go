// Package chat runs the ordered checks every incoming connection must pass
// before the player joins the chat.
package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/liquemgames/globalchat/internal/identity"
)

const defaultVerifyTimeout = 10 * time.Second

// AdmissionConfig wires the collaborators of the admission pipeline.
type AdmissionConfig struct {
	Origins       *OriginPolicy
	Connections   *TokenBucket
	Verifier      identity.Verifier
	Registry      *Registry
	History       *History
	VerifyTimeout time.Duration
}

// Admission orchestrates the connection admission pipeline: origin check,
// connection-rate check, identity verification, and registration. Each
// rejection closes the connection with a reason-specific code; no rejection
// is retried by the relay.
type Admission struct {
	origins       *OriginPolicy
	connections   *TokenBucket
	verifier      identity.Verifier
	registry      *Registry
	history       *History
	verifyTimeout time.Duration
}

// NewAdmission creates an admission pipeline from the given collaborators.
func NewAdmission(cfg AdmissionConfig) *Admission {
	timeout := cfg.VerifyTimeout
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}
	return &Admission{
		origins:       cfg.Origins,
		connections:   cfg.Connections,
		verifier:      cfg.Verifier,
		registry:      cfg.Registry,
		history:       cfg.History,
		verifyTimeout: timeout,
	}
}

// Admit runs the pipeline for one connection attempt. On success the player
// is registered, has received the current history window, and the returned
// id identifies it until disconnect. On failure the connection has been
// closed with a reason-specific close code and a *RejectionError is
// returned.
//
// The checks run strictly in order: origin, connection rate, verification,
// registration. Verification is the only step that waits on an external
// call; the uniqueness check and insert happen as one atomic step after it
// resolves, so two attempts resolving to the same identity cannot both
// register.
func (a *Admission) Admit(ctx context.Context, origin, token string, conn Conn) (string, error) {
	defer a.registry.SweepDead()

	if !a.origins.Allowed(origin) {
		log.Printf("Blocked chat connection from disallowed origin: %q", origin)
		return "", a.reject(conn, CloseUnauthorizedOrigin, "Unauthorized origin")
	}

	if !a.connections.TryAcquire() {
		log.Printf("Connection rate-limited; too many connections in a short period")
		return "", a.reject(conn, CloseConnectionRateLimited, "Connection rate-limited")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, a.verifyTimeout)
	defer cancel()

	playerID, err := a.verifier.Verify(verifyCtx, token)
	if err != nil {
		if errors.Is(err, identity.ErrNoIdentity) {
			return "", a.reject(conn, CloseInvalidToken, "Invalid token")
		}
		log.Printf("Error verifying token: %v", err)
		return "", a.reject(conn, CloseVerificationError, "Token verification error")
	}

	if err := a.registry.TryRegister(playerID, conn); err != nil {
		// The first connection for this identity stays registered untouched.
		return "", a.reject(conn, CloseDuplicateIdentity, "Duplicate player ID")
	}

	payload, err := EncodeHistory(a.history.Snapshot())
	if err != nil {
		log.Printf("Error encoding history for player %s: %v", playerID, err)
	} else if err := conn.Send(payload); err != nil {
		log.Printf("Error sending history to player %s: %v", playerID, err)
	}

	return playerID, nil
}

func (a *Admission) reject(conn Conn, code int, reason string) *RejectionError {
	if err := conn.Close(code, reason); err != nil {
		log.Printf("Error closing rejected connection (%d %s): %v", code, reason, err)
	}
	return &RejectionError{Code: code, Reason: reason}
}

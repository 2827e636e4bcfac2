// Package identity resolves opaque client tokens to stable player ids
// through the external verification service.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes bounds how much of the verification response is read.
const maxResponseBytes = 64 * 1024

// ErrNoIdentity is returned when the verification service answers normally
// but reports no player for the token. Callers must treat this differently
// from transport or decode failures: the former is an invalid token, the
// latter a verification error.
var ErrNoIdentity = errors.New("identity: no player for token")

// Verifier resolves an opaque token to a player identity. Implementations
// must be idempotent and side-effect free from the relay's perspective; the
// relay never retries a failed call.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// HTTPVerifier calls the verification service over HTTP:
//
//	GET <base>/verify-token/<token>
//
// answered with {"message":"<playerId>"}. The configured origin is sent as
// the Origin header because the service only answers requests from the game
// editor origin.
type HTTPVerifier struct {
	baseURL string
	origin  string
	client  *http.Client
}

// NewHTTPVerifier creates a verifier against the given base URL. Every call
// is bounded by timeout in addition to any context deadline.
func NewHTTPVerifier(baseURL, origin string, timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		origin:  origin,
		client:  &http.Client{Timeout: timeout},
	}
}

// Verify resolves token to a player id, returning ErrNoIdentity when the
// service reports no player and a wrapped error for any transport, status,
// or decode failure.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (string, error) {
	endpoint := v.baseURL + "/verify-token/" + url.PathEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("identity: building verification request: %w", err)
	}
	if v.origin != "" {
		req.Header.Set("Origin", v.origin)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: verification request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity: verification service returned %s", resp.Status)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return "", fmt.Errorf("identity: malformed verification response: %w", err)
	}

	if body.Message == "" {
		return "", ErrNoIdentity
	}
	return body.Message, nil
}

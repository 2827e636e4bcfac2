// Package chat applies the banned-term filter to outbound chat messages.
package chat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// RedactedText replaces the entire message body when any banned term matches.
const RedactedText = "***"

// Moderator tests message text against a static banned-term list. Matching is
// case-insensitive and substring-based, so a term inside a longer word still
// matches.
type Moderator struct {
	terms []string
}

// NewModerator builds a moderator from raw terms. Terms are trimmed and
// lower-cased; blank entries are discarded.
func NewModerator(terms []string) *Moderator {
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		trimmed := strings.ToLower(strings.TrimSpace(term))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return &Moderator{terms: cleaned}
}

// LoadModerator reads a newline-delimited term list from r.
func LoadModerator(r io.Reader) (*Moderator, error) {
	var terms []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		terms = append(terms, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading banned-term list: %w", err)
	}
	return NewModerator(terms), nil
}

// LoadModeratorFile reads a newline-delimited term list from the file at path.
func LoadModeratorFile(path string) (*Moderator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening banned-term list: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return LoadModerator(f)
}

// ContainsBanned reports whether text contains any banned term.
func (m *Moderator) ContainsBanned(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range m.terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// Filter returns text unchanged when it is clean, or the redaction marker
// when any banned term matches. The whole message is replaced, never just
// the offending span.
func (m *Moderator) Filter(text string) string {
	if m.ContainsBanned(text) {
		return RedactedText
	}
	return text
}

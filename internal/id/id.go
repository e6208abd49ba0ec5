// Package id generates the short random identifiers the front-end attaches to
// outgoing backend requests.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// requestAlphabet avoids characters that read ambiguously in log lines.
const requestAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generate creates a prefixed NanoID, e.g. "req-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// RequestID returns a 16 character lowercase ID for X-Request-ID headers.
func RequestID() (string, error) {
	id, err := gonanoid.Generate(requestAlphabet, 16)
	if err != nil {
		return "", fmt.Errorf("generate request id: %w", err)
	}
	return id, nil
}

// MustRequestID is like RequestID but panics when the system has no entropy.
func MustRequestID() string {
	id, err := RequestID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate request ID: %v", err))
	}
	return id
}

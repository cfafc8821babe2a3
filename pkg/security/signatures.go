// Package security holds request-screening rules for the signature payloads
// the portal submits.
package security

import (
	"errors"
	"fmt"
)

// ErrPayloadTooLarge marks a signature payload over the configured ceiling.
var ErrPayloadTooLarge = errors.New("signature payload too large")

// defaultMaxEncodedBytes bounds one encoded signature image. Captured
// signature strokes encode to tens of kilobytes.
const defaultMaxEncodedBytes = 2 << 20

// SignaturePolicy screens encoded signature payloads before any record
// building starts. Only the size is screened here; whether the bytes decode
// into a drawable image stays a non-fatal concern of the document filler.
type SignaturePolicy struct {
	MaxEncodedBytes int
}

// DefaultSignaturePolicy returns the production screening policy.
func DefaultSignaturePolicy() SignaturePolicy {
	return SignaturePolicy{MaxEncodedBytes: defaultMaxEncodedBytes}
}

// Check validates every given payload against the ceiling. A zero or
// negative ceiling disables the screen.
func (p SignaturePolicy) Check(payloads ...string) error {
	if p.MaxEncodedBytes <= 0 {
		return nil
	}
	for _, payload := range payloads {
		if len(payload) > p.MaxEncodedBytes {
			return fmt.Errorf("%w: %d byte payload exceeds the %d byte limit", ErrPayloadTooLarge, len(payload), p.MaxEncodedBytes)
		}
	}
	return nil
}

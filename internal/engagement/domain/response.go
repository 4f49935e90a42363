// Package domain holds the storefront's small-talk vocabulary.
package domain

import (
	"context"
	"errors"
)

// ErrUnknownResponseKey is returned when setting a reply for a key the
// classifier never produces.
var ErrUnknownResponseKey = errors.New("unknown response key")

// ResponseKey names a category of inbound chatter.
type ResponseKey string

const (
	ResponseGreeting   ResponseKey = "greeting"
	ResponseQuestion   ResponseKey = "question"
	ResponseCompliment ResponseKey = "compliment"
	ResponseDefault    ResponseKey = "default"
)

// Valid reports whether the key is one the classifier produces.
func (k ResponseKey) Valid() bool {
	switch k {
	case ResponseGreeting, ResponseQuestion, ResponseCompliment, ResponseDefault:
		return true
	}
	return false
}

// ResponseKeys lists every valid key, for listings and validation
// messages.
func ResponseKeys() []ResponseKey {
	return []ResponseKey{ResponseGreeting, ResponseQuestion, ResponseCompliment, ResponseDefault}
}

// Repository handles persistence for the configured replies.
type Repository interface {
	// Get retrieves the reply for a key. Returns "" if unset.
	Get(ctx context.Context, key ResponseKey) (string, error)

	// Set writes the reply for a key.
	Set(ctx context.Context, key ResponseKey, text string) error

	// All returns every configured reply.
	All(ctx context.Context) (map[ResponseKey]string, error)
}

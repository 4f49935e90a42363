// Package application answers casual chatter that is not a command.
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/mirelabalan/fanvault/internal/engagement/domain"
)

var (
	greetingWords   = []string{"hi", "hello", "hey"}
	complimentWords = []string{"beautiful", "gorgeous", "amazing", "love", "perfect"}
)

// Classify buckets a free-text message into a response category.
// Greetings win over compliments, and both win over the question mark,
// so "hey, you there?" reads as a greeting.
func Classify(text string) domain.ResponseKey {
	lowered := strings.ToLower(text)

	for _, word := range greetingWords {
		if containsWord(lowered, word) {
			return domain.ResponseGreeting
		}
	}
	for _, word := range complimentWords {
		if containsWord(lowered, word) {
			return domain.ResponseCompliment
		}
	}
	if strings.Contains(lowered, "?") {
		return domain.ResponseQuestion
	}
	return domain.ResponseDefault
}

func containsWord(text, word string) bool {
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	}) {
		if token == word {
			return true
		}
	}
	return false
}

// Responder turns chatter into the operator's configured replies.
type Responder struct {
	responses domain.Repository
}

// NewResponder creates a new Responder.
func NewResponder(responses domain.Repository) *Responder {
	return &Responder{responses: responses}
}

// Respond picks the reply for a message. An unset category falls back
// to the default reply so the storefront never answers with silence.
func (r *Responder) Respond(ctx context.Context, text string) (string, error) {
	key := Classify(text)

	reply, err := r.responses.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get response %s: %w", key, err)
	}
	if reply != "" {
		return reply, nil
	}

	reply, err = r.responses.Get(ctx, domain.ResponseDefault)
	if err != nil {
		return "", fmt.Errorf("get default response: %w", err)
	}
	return reply, nil
}

// SetResponse updates the reply for a category.
func (r *Responder) SetResponse(ctx context.Context, key domain.ResponseKey, text string) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownResponseKey, key)
	}
	return r.responses.Set(ctx, key, text)
}

// Responses lists every configured reply.
func (r *Responder) Responses(ctx context.Context) (map[domain.ResponseKey]string, error) {
	return r.responses.All(ctx)
}

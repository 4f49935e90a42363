package application

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mirelabalan/fanvault/internal/settlement/domain"
)

// ErrPayloadMalformed is returned when a payment payload cannot be
// decoded.
var ErrPayloadMalformed = errors.New("payment payload is malformed")

const (
	payloadContentPrefix      = "content"
	payloadSubscriptionPrefix = "subscription"
)

// Payload identifies what a payment is for. It is embedded in the
// provider invoice when the storefront issues it and comes back
// verbatim with the confirmation.
type Payload struct {
	Kind     domain.PaymentKind
	ItemName string
	UserID   int64
}

// EncodeContentPayload builds the invoice payload for an item purchase.
func EncodeContentPayload(itemName string, userID int64) string {
	return fmt.Sprintf("%s_%s_%d", payloadContentPrefix, itemName, userID)
}

// EncodeSubscriptionPayload builds the invoice payload for a
// subscription payment.
func EncodeSubscriptionPayload(userID int64) string {
	return fmt.Sprintf("%s_%d", payloadSubscriptionPrefix, userID)
}

// DecodePayload parses an invoice payload. Item names may themselves
// contain underscores, so the name is everything between the first and
// last separator.
func DecodePayload(payload string) (Payload, error) {
	tokens := strings.Split(payload, "_")

	switch tokens[0] {
	case payloadSubscriptionPrefix:
		if len(tokens) != 2 {
			return Payload{}, ErrPayloadMalformed
		}
		userID, err := strconv.ParseInt(tokens[1], 10, 64)
		if err != nil {
			return Payload{}, ErrPayloadMalformed
		}
		return Payload{Kind: domain.PaymentSubscription, UserID: userID}, nil

	case payloadContentPrefix:
		if len(tokens) < 3 {
			return Payload{}, ErrPayloadMalformed
		}
		userID, err := strconv.ParseInt(tokens[len(tokens)-1], 10, 64)
		if err != nil {
			return Payload{}, ErrPayloadMalformed
		}
		name := strings.Join(tokens[1:len(tokens)-1], "_")
		if name == "" {
			return Payload{}, ErrPayloadMalformed
		}
		return Payload{Kind: domain.PaymentContent, ItemName: name, UserID: userID}, nil

	default:
		return Payload{}, ErrPayloadMalformed
	}
}

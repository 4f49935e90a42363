// Package domain models the operator's step-by-step content upload.
package domain

import (
	"errors"
	"time"

	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
)

// ErrUnexpectedInput is returned when the operator sends the wrong kind
// of input for the current step. The session is left untouched so the
// operator can simply try again.
var ErrUnexpectedInput = errors.New("input does not match the current step")

// Step identifies what the upload session is waiting for.
type Step string

const (
	StepAwaitingAsset       Step = "awaiting_asset"
	StepAwaitingName        Step = "awaiting_name"
	StepAwaitingPrice       Step = "awaiting_price"
	StepAwaitingDescription Step = "awaiting_description"
	StepComplete            Step = "complete"
)

// Session is one operator's in-progress upload. Exactly one session
// exists per operator; starting a new one replaces it. Sessions are
// serialized to the session store between chat messages.
type Session struct {
	OperatorID  int64                    `json:"operator_id"`
	Pool        catalogDomain.Pool       `json:"pool"`
	Step        Step                     `json:"step"`
	AssetRef    string                   `json:"asset_ref,omitempty"`
	AssetKind   catalogDomain.AssetKind  `json:"asset_kind,omitempty"`
	Name        string                   `json:"name,omitempty"`
	Price       int64                    `json:"price"`
	Description string                   `json:"description,omitempty"`
	StartedAt   time.Time                `json:"started_at"`
}

// NewSession starts an upload for the given pool.
func NewSession(operatorID int64, pool catalogDomain.Pool, now time.Time) *Session {
	if !pool.Valid() {
		pool = catalogDomain.PoolIndividual
	}
	return &Session{
		OperatorID: operatorID,
		Pool:       pool,
		Step:       StepAwaitingAsset,
		StartedAt:  now,
	}
}

// Complete reports whether every step has been answered.
func (s *Session) Complete() bool {
	return s.Step == StepComplete
}

// ApplyAsset records the uploaded asset and advances to the name step.
// The delivery kind is inferred from the reference immediately so the
// operator sees it echoed back.
func (s *Session) ApplyAsset(assetRef string) error {
	if s.Step != StepAwaitingAsset {
		return ErrUnexpectedInput
	}
	if assetRef == "" {
		return catalogDomain.ErrItemAssetMissing
	}
	s.AssetRef = assetRef
	s.AssetKind = catalogDomain.InferAssetKind(assetRef)
	s.Step = StepAwaitingName
	return nil
}

// ApplyName records the item name. Subscription uploads skip the price
// step since exclusive items are never sold individually.
func (s *Session) ApplyName(name string) error {
	if s.Step != StepAwaitingName {
		return ErrUnexpectedInput
	}
	if err := catalogDomain.ValidateName(name); err != nil {
		return err
	}
	s.Name = name
	if s.Pool == catalogDomain.PoolSubscription {
		s.Step = StepAwaitingDescription
	} else {
		s.Step = StepAwaitingPrice
	}
	return nil
}

// ApplyPrice records the credit price.
func (s *Session) ApplyPrice(price int64) error {
	if s.Step != StepAwaitingPrice {
		return ErrUnexpectedInput
	}
	if price < 0 {
		return catalogDomain.ErrItemPriceInvalid
	}
	s.Price = price
	s.Step = StepAwaitingDescription
	return nil
}

// ApplyDescription records the description and completes the session.
func (s *Session) ApplyDescription(description string) error {
	if s.Step != StepAwaitingDescription {
		return ErrUnexpectedInput
	}
	s.Description = description
	s.Step = StepComplete
	return nil
}

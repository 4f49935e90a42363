package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
)

var (
	// ErrItemNameInvalid is returned when an item name fails validation.
	ErrItemNameInvalid = errors.New("item name must contain only letters, digits, and underscores")
	// ErrItemPriceInvalid is returned when a price is negative.
	ErrItemPriceInvalid = errors.New("item price must be zero or positive")
	// ErrItemAssetMissing is returned when an item has no asset reference.
	ErrItemAssetMissing = errors.New("item asset reference is required")
	// ErrNameTaken is returned when an item with the same name already exists.
	ErrNameTaken = errors.New("item name already exists")
	// ErrItemNotFound is returned by operator edits on a missing item.
	ErrItemNotFound = errors.New("item not found")
	// ErrPoolLocked is returned when changing the pool of an item that has
	// already been purchased.
	ErrPoolLocked = errors.New("item pool cannot change after the first purchase")
	// ErrSubscriptionItemPriced is returned when setting a price on a
	// subscription-exclusive item.
	ErrSubscriptionItemPriced = errors.New("subscription-exclusive items have no individual price")
)

// namePattern matches names that are safe to embed in payment payloads
// and chat commands.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Pool determines how an item can be accessed.
type Pool string

const (
	// PoolIndividual items are bought one at a time for credits.
	PoolIndividual Pool = "individual"
	// PoolSubscription items are available to every active subscriber and
	// never sold individually.
	PoolSubscription Pool = "subscription"
)

// Valid reports whether the pool is a known value.
func (p Pool) Valid() bool {
	return p == PoolIndividual || p == PoolSubscription
}

// AssetKind tells the delivery layer how to send an asset.
type AssetKind string

const (
	AssetPhoto    AssetKind = "photo"
	AssetVideo    AssetKind = "video"
	AssetDocument AssetKind = "document"
)

// Valid reports whether the asset kind is a known value.
func (k AssetKind) Valid() bool {
	return k == AssetPhoto || k == AssetVideo || k == AssetDocument
}

// InferAssetKind guesses the asset kind from the reference's extension.
// Unknown extensions fall back to document delivery, which every chat
// platform supports.
func InferAssetKind(assetRef string) AssetKind {
	ref := strings.ToLower(assetRef)
	switch {
	case hasAnySuffix(ref, ".jpg", ".jpeg", ".png", ".gif", ".webp"):
		return AssetPhoto
	case hasAnySuffix(ref, ".mp4", ".mov", ".avi", ".mkv", ".webm"):
		return AssetVideo
	default:
		return AssetDocument
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// ValidateName checks an item name against the naming rules.
func ValidateName(name string) error {
	if name == "" || !namePattern.MatchString(name) {
		return ErrItemNameInvalid
	}
	return nil
}

// ContentItem is a sellable piece of content, keyed by its unique name.
type ContentItem struct {
	sharedDomain.BaseAggregateRoot
	name        string
	price       int64
	assetRef    string
	assetKind   AssetKind
	description string
	pool        Pool
	createdAt   time.Time
}

// NewContentItem publishes a new catalog item.
// Subscription-exclusive items carry no individual price.
func NewContentItem(name string, price int64, assetRef string, assetKind AssetKind, description string, pool Pool, now time.Time) (*ContentItem, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if price < 0 {
		return nil, ErrItemPriceInvalid
	}
	if assetRef == "" {
		return nil, ErrItemAssetMissing
	}
	if !pool.Valid() {
		pool = PoolIndividual
	}
	if !assetKind.Valid() {
		assetKind = InferAssetKind(assetRef)
	}
	if pool == PoolSubscription {
		price = 0
	}

	item := &ContentItem{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		name:              name,
		price:             price,
		assetRef:          assetRef,
		assetKind:         assetKind,
		description:       description,
		pool:              pool,
		createdAt:         now,
	}

	item.AddDomainEvent(NewItemPublished(name, price, string(pool)))

	return item, nil
}

// RehydrateContentItem recreates an item from persisted state.
func RehydrateContentItem(name string, price int64, assetRef string, assetKind AssetKind, description string, pool Pool, createdAt time.Time) *ContentItem {
	return &ContentItem{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		name:              name,
		price:             price,
		assetRef:          assetRef,
		assetKind:         assetKind,
		description:       description,
		pool:              pool,
		createdAt:         createdAt,
	}
}

func (i *ContentItem) Name() string         { return i.name }
func (i *ContentItem) Price() int64         { return i.price }
func (i *ContentItem) AssetRef() string     { return i.assetRef }
func (i *ContentItem) AssetKind() AssetKind { return i.assetKind }
func (i *ContentItem) Description() string  { return i.description }
func (i *ContentItem) Pool() Pool           { return i.pool }
func (i *ContentItem) CreatedAt() time.Time { return i.createdAt }

// IsIndividual reports whether the item is sold one at a time.
func (i *ContentItem) IsIndividual() bool {
	return i.pool == PoolIndividual
}

// UpdatePrice changes the price of an individually sold item.
func (i *ContentItem) UpdatePrice(price int64) error {
	if i.pool == PoolSubscription {
		return ErrSubscriptionItemPriced
	}
	if price < 0 {
		return ErrItemPriceInvalid
	}
	i.price = price
	return nil
}

// UpdateDescription changes the item description.
func (i *ContentItem) UpdateDescription(description string) {
	i.description = description
}

// UpdateAsset swaps the underlying asset. An empty kind re-infers it
// from the new reference.
func (i *ContentItem) UpdateAsset(assetRef string, assetKind AssetKind) error {
	if assetRef == "" {
		return ErrItemAssetMissing
	}
	i.assetRef = assetRef
	if assetKind.Valid() {
		i.assetKind = assetKind
	} else {
		i.assetKind = InferAssetKind(assetRef)
	}
	return nil
}

// ChangePool moves the item to another pool. The caller must verify the
// item has never been purchased.
func (i *ContentItem) ChangePool(pool Pool) error {
	if !pool.Valid() {
		return errors.New("unknown pool")
	}
	i.pool = pool
	if pool == PoolSubscription {
		i.price = 0
	}
	return nil
}

package domain

// DenialReason classifies why a storefront request was refused.
// Denials are expected outcomes, not errors; transports map them to
// user-facing replies.
type DenialReason string

const (
	DenialNotFound                   DenialReason = "not_found"
	DenialAlreadyOwned               DenialReason = "already_owned"
	DenialSubscriptionRequired       DenialReason = "subscription_required"
	DenialNotOwned                   DenialReason = "not_owned"
	DenialNotIndividuallyPurchasable DenialReason = "not_individually_purchasable"
	DenialInvalidInput               DenialReason = "invalid_input"
	DenialStorageFailure             DenialReason = "storage_failure"
)

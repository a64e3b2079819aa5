package ports

import (
	"context"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
)

// PayoutRepository is the storage boundary for distribution. Implementations
// must express the claim predicate as one conditional write so concurrent
// automatic and manual claims cannot both apply.
type PayoutRepository interface {
	// ListEligibleTraders returns traders allowed to receive payouts right
	// now, ordered by numeric id. Capacity limits are not part of the store
	// and are overlaid by the caller.
	ListEligibleTraders(ctx context.Context) ([]entities.Trader, error)

	// ListUnassignedPayouts returns claimable outbound payouts ordered by
	// creation time.
	ListUnassignedPayouts(ctx context.Context) ([]entities.UnassignedPayout, error)

	// ClaimPayout atomically assigns the payout to the trader iff every
	// eligibility predicate still holds. Returns false when the conditional
	// write matched no row; that is an expected outcome, not an error.
	ClaimPayout(ctx context.Context, payoutID string, traderID string) (bool, error)

	// CancelPayout locks the payout row, rejects terminal statuses, applies
	// CANCELLED plus the optional reason fields, and returns the post-update
	// row joined with the merchant callback credential.
	CancelPayout(ctx context.Context, payoutID string, reason *string, reasonCode *string) (entities.PayoutDetails, error)

	// ListDeals serves the historical dashboard listing.
	ListDeals(ctx context.Context, filters entities.DealListFilters) (entities.DealPage, error)
}

// CallbackAuditLog records every merchant callback outcome, attempted or not.
// Append-only.
type CallbackAuditLog interface {
	AppendCallbackAttempt(ctx context.Context, attempt entities.CallbackAttempt) error
}

// WebhookGateway delivers a callback payload to a merchant endpoint. The
// returned status code and body describe the merchant's response; err is set
// only for transport-level failures (the call never reached a response).
type WebhookGateway interface {
	Post(ctx context.Context, url string, apiKey string, payload []byte) (statusCode int, responseBody string, err error)
}

// IDGenerator mints identifiers for audit records.
type IDGenerator interface {
	NewID() string
}

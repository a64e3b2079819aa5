package entities

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus mirrors the platform's payout lifecycle enum.
type PayoutStatus string

const (
	PayoutStatusCreated   PayoutStatus = "CREATED"
	PayoutStatusActive    PayoutStatus = "ACTIVE"
	PayoutStatusChecking  PayoutStatus = "CHECKING"
	PayoutStatusDisputed  PayoutStatus = "DISPUTED"
	PayoutStatusExpired   PayoutStatus = "EXPIRED"
	PayoutStatusCancelled PayoutStatus = "CANCELLED"
	PayoutStatusCompleted PayoutStatus = "COMPLETED"
	PayoutStatusSuccess   PayoutStatus = "SUCCESS"
	PayoutStatusFailed    PayoutStatus = "FAILED"
)

// Terminal reports whether the status rejects any further transition,
// cancellation included.
func (s PayoutStatus) Terminal() bool {
	switch s {
	case PayoutStatusCancelled, PayoutStatusCompleted, PayoutStatusSuccess, PayoutStatusFailed:
		return true
	}
	return false
}

const (
	// DirectionOut marks outbound payouts; inbound deals never enter
	// distribution.
	DirectionOut = "OUT"

	// AcceptanceGraceSeconds is stamped onto a payout when it is claimed and
	// bounds how long the trader has to accept it.
	AcceptanceGraceSeconds = 40
)

// Trader is an account eligible to receive payout assignments. MaxAmount is
// the volatile capacity limit overlaid from the in-memory registry; nil means
// unlimited.
type Trader struct {
	ID            string
	Email         string
	NumericID     int
	BalanceRub    decimal.Decimal
	FrozenRub     decimal.Decimal
	PayoutBalance decimal.Decimal
	MaxAmount     *decimal.Decimal
}

// UnassignedPayout is the projection the assignment policy works on.
type UnassignedPayout struct {
	ID                string
	NumericID         int
	Amount            decimal.Decimal
	Bank              string
	ExternalReference *string
}

// Pairing is one (payout, trader) decision produced by the planner.
type Pairing struct {
	Payout UnassignedPayout
	Trader Trader
}

// PayoutDetails is the full row read under lock during cancellation, plus the
// merchant credential needed for the status-change callback.
type PayoutDetails struct {
	ID                 string
	NumericID          int
	Amount             decimal.Decimal
	AmountUsdt         decimal.Decimal
	Status             PayoutStatus
	Wallet             string
	Bank               string
	ExternalReference  *string
	MerchantID         string
	MerchantWebhookURL string
	MerchantMetadata   json.RawMessage
	ProofFiles         []string
	DisputeFiles       []string
	DisputeMessage     *string
	CancelReason       *string
	CancelReasonCode   *string
	TraderID           *string
	MerchantAPIKey     string
}

// DealListItem is one row of the historical deals listing.
type DealListItem struct {
	ID                string
	NumericID         int
	Amount            decimal.Decimal
	AmountUsdt        decimal.Decimal
	Status            PayoutStatus
	Wallet            string
	Bank              string
	ExternalReference *string
	MerchantID        string
	TraderID          *string
	CreatedAt         time.Time
	CancelReason      *string
	CancelReasonCode  *string
}

type DealSortField string

const (
	DealSortCreatedAt DealSortField = "createdAt"
	DealSortStatus    DealSortField = "status"
)

type DealSortOrder string

const (
	DealOrderAsc  DealSortOrder = "asc"
	DealOrderDesc DealSortOrder = "desc"
)

// DealListFilters is the sanitized listing request. Zero values mean
// "no filter".
type DealListFilters struct {
	Search  string
	Wallet  string
	Amount  *decimal.Decimal
	Status  PayoutStatus
	Page    int
	PerPage int
	Sort    DealSortField
	Order   DealSortOrder
}

// DealPage is a single page of deals with its pagination envelope inputs.
type DealPage struct {
	Items   []DealListItem
	Total   int64
	Page    int
	PerPage int
}

// TotalPages derives the page count the dashboard paginator renders.
func (p DealPage) TotalPages() int {
	if p.Total == 0 || p.PerPage <= 0 {
		return 0
	}
	pages := p.Total / int64(p.PerPage)
	if p.Total%int64(p.PerPage) != 0 {
		pages++
	}
	return int(pages)
}

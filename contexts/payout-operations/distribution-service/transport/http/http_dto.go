// Package http holds the wire DTOs of the payout dashboard API. Field names
// follow the platform's historical camelCase format.
package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TraderDTO struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	NumericID     int      `json:"numericId"`
	BalanceRub    float64  `json:"balanceRub"`
	FrozenRub     float64  `json:"frozenRub"`
	PayoutBalance float64  `json:"payoutBalance"`
	MaxAmount     *float64 `json:"maxAmount"`
}

type UnassignedPayoutDTO struct {
	ID                string  `json:"id"`
	NumericID         int     `json:"numericId"`
	Amount            float64 `json:"amount"`
	Bank              string  `json:"bank"`
	ExternalReference *string `json:"externalReference"`
}

type AssignPayoutRequest struct {
	TraderID string `json:"traderId" validate:"required"`
}

type AssignPayoutResponse struct {
	Success bool `json:"success"`
}

type CancelPayoutRequest struct {
	Reason     *string `json:"reason"`
	ReasonCode *string `json:"reasonCode"`
}

type CancelPayoutResponse struct {
	Success            bool    `json:"success"`
	Status             string  `json:"status"`
	CallbackDispatched bool    `json:"callbackDispatched"`
	CallbackError      *string `json:"callbackError"`
}

type AutoSettingsDTO struct {
	Enabled         bool  `json:"enabled"`
	IntervalSeconds int64 `json:"intervalSeconds"`
}

type UpdateLimitRequest struct {
	MaxAmount *float64 `json:"maxAmount"`
}

type UpdateLimitResponse struct {
	TraderID  string   `json:"traderId"`
	MaxAmount *float64 `json:"maxAmount"`
}

type DealDTO struct {
	ID                string  `json:"id"`
	NumericID         int     `json:"numericId"`
	Amount            float64 `json:"amount"`
	AmountUsdt        float64 `json:"amountUsdt"`
	Status            string  `json:"status"`
	Wallet            string  `json:"wallet"`
	Bank              string  `json:"bank"`
	ExternalReference *string `json:"externalReference"`
	MerchantID        string  `json:"merchantId"`
	TraderID          *string `json:"traderId"`
	CreatedAt         string  `json:"createdAt"`
	CancelReason      *string `json:"cancelReason"`
	CancelReasonCode  *string `json:"cancelReasonCode"`
}

type DealPaginationDTO struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

type DealListResponse struct {
	Items      []DealDTO         `json:"items"`
	Pagination DealPaginationDTO `json:"pagination"`
}

// DealListQuery carries the raw listing query parameters; sanitation happens
// in the application layer.
type DealListQuery struct {
	Search  string
	Wallet  string
	Amount  *float64
	Status  string
	Page    int
	PerPage int
	Sort    string
	Order   string
}

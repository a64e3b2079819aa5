package errors

import "errors"

var (
	ErrTraderIDRequired    = errors.New("trader id is required")
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrPayoutNotEligible   = errors.New("payout is not eligible for assignment")
	ErrAlreadyCancelled    = errors.New("payout is already cancelled")
	ErrTerminalStatus      = errors.New("payout status does not allow cancellation")
	ErrInvalidListFilter   = errors.New("payout list filter is invalid")
	ErrCallbackAuditFailed = errors.New("failed to record payout callback attempt")
	ErrStoreUnavailable    = errors.New("payout store is unavailable")
)

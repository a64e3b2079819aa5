package entities

import "encoding/json"

// CallbackEventCanceled is the event name merchants receive when a payout is
// cancelled. The platform's historical wire format spells it with one L.
const CallbackEventCanceled = "CANCELED"

// CallbackAttempt is one append-only audit record of a merchant callback,
// attempted or not.
type CallbackAttempt struct {
	ID           string
	PayoutID     string
	URL          string
	Payload      json.RawMessage
	StatusCode   *int
	ResponseBody *string
	Error        *string
}

// CallbackResult is what the dispatcher reports back to the caller. A result
// with Delivered=false and a nil StatusCode means the call was never
// attempted (missing URL or credential) or failed at the transport layer.
type CallbackResult struct {
	Delivered    bool
	StatusCode   *int
	ResponseBody *string
	Error        *string
	URL          string
}

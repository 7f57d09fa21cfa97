package types

import "errors"

// Error taxonomy for the fulfillment pipeline. Callers match with
// errors.Is; handlers map these onto HTTP statuses.
var (
	// ErrUpstreamUnavailable is retryable: the payment provider fetch
	// failed and the webhook sender should redeliver.
	ErrUpstreamUnavailable = errors.New("payment provider unavailable")

	// ErrOrderNotFound is non-fatal: the notification references an order
	// that does not exist. Acknowledged, never retried.
	ErrOrderNotFound  = errors.New("order not found")
	ErrTicketNotFound = errors.New("ticket not found")

	ErrTransferWindowClosed   = errors.New("transfer window closed")
	ErrTransferAlreadyPending = errors.New("a transfer is already pending for this ticket")
	ErrTransferNotPending     = errors.New("transfer is not pending")
	ErrTransferForbidden      = errors.New("not the transfer sender")

	// ErrIssuanceFailed leaves the order paid; re-running issuance is safe.
	ErrIssuanceFailed = errors.New("ticket issuance failed")

	// ErrNotificationFailed is logged only and never gates a transition.
	ErrNotificationFailed = errors.New("notification delivery failed")
)

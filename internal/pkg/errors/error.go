package xerrors

import "errors"

// Common reusable application errors. Billing actions map the gateway and
// verification failures onto their own sentinels so handlers can pick the
// right status and wording.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict: resource already exists")
	ErrInternal           = errors.New("internal server error")
	ErrRateLimited        = errors.New("too many requests")
	ErrNoSubscription     = errors.New("no current subscription: create a subscription before paying")
	ErrCheckoutInFlight   = errors.New("a checkout is already open")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrVerificationFailed = errors.New("payment verification failed")
)

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

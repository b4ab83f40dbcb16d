// Package apperr defines the engine's error taxonomy. Handlers map these to
// HTTP statuses; services wrap them with context via fmt.Errorf and %w.
package apperr

import "errors"

var (
	// ErrValidation: malformed or missing input, caller's fault.
	ErrValidation = errors.New("validation error")
	// ErrEmptyCart: checkout requested with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidDiscount: discount negative or exceeding the subtotal.
	ErrInvalidDiscount = errors.New("invalid discount")
	// ErrUnknownSKU: cart or stock operation references a SKU with no variant.
	ErrUnknownSKU = errors.New("unknown sku")
	// ErrNotFound: referenced entity absent.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock: business-rule violation, surfaced verbatim so the
	// operator can adjust the cart or restock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrSameBranch: transfer with identical source and destination.
	ErrSameBranch = errors.New("source and destination branch are the same")
	// ErrConflict: concurrent-mutation contention; the whole operation is safe
	// to retry from scratch. The engine itself never retries.
	ErrConflict = errors.New("conflict, retry the operation")
	// ErrUnauthorized: bad credentials or missing identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: caller's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
)

// Status returns the HTTP status for an engine error. Unknown errors are
// internal failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidDiscount),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrSameBranch):
		return 400
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrUnknownSKU), errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConflict):
		return 409
	default:
		return 500
	}
}

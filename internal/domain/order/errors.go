package order

import (
	"github.com/xenking/efitness/internal/domain/apperr"
)

// PurchaseFailedError wraps the reason a checkout transaction was rolled back.
type PurchaseFailedError struct {
	Err error
}

func (e *PurchaseFailedError) Error() string {
	return "purchase failed: " + e.Err.Error()
}

func (e *PurchaseFailedError) Unwrap() error { return e.Err }

// Kind follows the wrapped reason.
func (e *PurchaseFailedError) Kind() apperr.Kind { return apperr.KindOf(e.Err) }

// Reason is the caller-facing cause. Internal causes are not disclosed.
func (e *PurchaseFailedError) Reason() string {
	if e.Kind() == apperr.KindInternal {
		return "internal error"
	}
	return e.Err.Error()
}

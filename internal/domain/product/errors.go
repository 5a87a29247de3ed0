package product

import (
	"fmt"

	"github.com/xenking/efitness/internal/domain/apperr"
)

// InsufficientStockError reports a request for more units than are in stock.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("insufficient stock for %s: only %d available, but %d requested",
			e.Name, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %d: only %d available, but %d requested",
		e.ProductID, e.Available, e.Requested)
}

// Kind classifies the error for the transport layer.
func (e *InsufficientStockError) Kind() apperr.Kind { return apperr.KindInsufficientStock }

package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition rejects transitions out of terminal states or
	// into statuses outside the documented state graph.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrLineItemsImmutable guards orders that already affected stock.
	ErrLineItemsImmutable = errors.New("line items are immutable after stock deduction; cancel the order and recreate it instead")

	// ErrOrderHasDeductedStock blocks hard deletion while stock is out.
	ErrOrderHasDeductedStock = errors.New("order has deducted stock; restore it first or use force delete")

	// ErrProductReferenced blocks deleting a product still referenced by a
	// non-terminal order.
	ErrProductReferenced = errors.New("product is referenced by open orders and cannot be deleted")

	// ErrReferenceCapacity surfaces daily sequence exhaustion instead of
	// silently wrapping.
	ErrReferenceCapacity = errors.New("daily reference sequence capacity exceeded")
)

// InsufficientStockError aborts the whole transition: no partial
// deduction ever commits. Carries enough context for a descriptive
// user-facing message.
type InsufficientStockError struct {
	ProductName string
	SKU         string
	Required    int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	if e.SKU != "" {
		return fmt.Sprintf("insufficient stock for %s (%s): required %d, available %d",
			e.ProductName, e.SKU, e.Required, e.Available)
	}
	return fmt.Sprintf("insufficient stock for %s: required %d, available %d",
		e.ProductName, e.Required, e.Available)
}

// IsInsufficientStock reports whether err is (or wraps) an
// InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

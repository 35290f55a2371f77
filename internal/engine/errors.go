package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when the item id does not resolve.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidQuantity is returned for non-positive sale quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInsufficientStock is returned when the requested quantity exceeds
	// the quantity on hand. Never retried: it reflects real stock, not
	// transient contention.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrTransactionConflict is returned after the bounded retry budget for
	// store-level contention is exhausted.
	ErrTransactionConflict = errors.New("transaction conflict: retries exhausted")
)

// ReferentialBlockError reports a deletion blocked by existing sales. The
// caller may re-invoke with force once an operator has confirmed the cascade.
type ReferentialBlockError struct {
	References int64
}

func (e *ReferentialBlockError) Error() string {
	return fmt.Sprintf("item is referenced by %d sale(s); deletion requires force", e.References)
}

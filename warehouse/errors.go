/*
errors.go - Centralized error types for the warehouse engine

PURPOSE:
  All caller-visible failures in one place. The engine never silently
  swallows a validation error; everything here propagates to the caller.

ERROR CATEGORIES:
  1. Lookup errors     - Part/line/kit not resolvable
  2. Validation errors - Bad quantity or argument combinations
  3. Stock errors      - Insufficient stock (carries requested vs. available)
  4. Fulfillment errors- Kit not fully shipped (carries the kit number)

USAGE:
  Sentinels work with errors.Is, structured errors with errors.As:

    if errors.Is(err, warehouse.ErrInsufficientStock) { ... }

    var stockErr *warehouse.InsufficientStockError
    if errors.As(err, &stockErr) {
        log.Printf("short by %d", stockErr.Requested-stockErr.Available)
    }

  Over-shipment (quantity exceeding a line's requirement) is explicitly
  NOT an error; it is logged and allowed.

SEE ALSO:
  - engine.go: Raises these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package warehouse

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPartNotFound is returned when a referenced part doesn't exist.
	ErrPartNotFound = errors.New("part not found")

	// ErrLineNotFound is returned when a referenced kit line doesn't exist.
	ErrLineNotFound = errors.New("kit line not found")

	// ErrKitNotFound is returned when a referenced kit doesn't exist.
	ErrKitNotFound = errors.New("kit not found")

	// ErrChapterNotFound is returned when a referenced chapter doesn't exist.
	ErrChapterNotFound = errors.New("chapter not found")

	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidArguments is returned for bad argument combinations, e.g.
	// the same part used as both sides of a correction.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrInsufficientStock matches any *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFullyShipped matches any *NotFullyShippedError.
	ErrNotFullyShipped = errors.New("kit is not fully shipped")
)

// =============================================================================
// STRUCTURED ERRORS - Use with errors.As()
// =============================================================================

// InsufficientStockError is returned when a debit would take a part's
// available quantity below zero. No state changes when it is raised.
type InsufficientStockError struct {
	PartID    PartID
	PartName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for part %q: available %d, requested %d",
		e.PartName, e.Available, e.Requested)
}

// Shortfall is how many units the request exceeds availability by.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NotFullyShippedError is returned by MarkKitFullyShipped when at least one
// line's shipped total is below its required quantity.
type NotFullyShippedError struct {
	KitID     KitID
	KitNumber string
}

func (e *NotFullyShippedError) Error() string {
	return fmt.Sprintf("kit %q is not fully shipped", e.KitNumber)
}

func (e *NotFullyShippedError) Is(target error) bool {
	return target == ErrNotFullyShipped
}

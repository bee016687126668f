/*
fulfillment.go - Kit fulfillment state machine

PURPOSE:
  Computes and persists whether a kit is fully satisfied, built on top of
  the shipment ledger. A kit is fully shipped once every line's shipped
  total meets or exceeds its required quantity.

STATES:
  Draft -> InProgress -> FullyShipped -> Archived (linear, no
  back-transitions). The core itself only drives Draft -> FullyShipped;
  InProgress and Archived are reserved for calling collaborators and
  reachable only through SetKitStatus.

SOURCE OF TRUTH:
  The check sums the shipment ledger per line rather than reading the
  cached line tracker. The ledger is authoritative; the tracker is a
  convenience aggregate for status displays.

SEE ALSO:
  - engine.go: Ship, which feeds the ledger this file reads
*/
package warehouse

import (
	"context"
	"fmt"
)

// IsKitFullyShipped reports whether every line of the kit has shipped at
// least its required quantity. Over-shipped lines count as satisfied.
//
// A kit already marked FullyShipped short-circuits to true without
// recomputation. A kit with zero lines is never fully shipped.
func (e *Engine) IsKitFullyShipped(ctx context.Context, kitID KitID) (bool, error) {
	return e.kitFullyShipped(ctx, e.store, kitID)
}

func (e *Engine) kitFullyShipped(ctx context.Context, tx Store, kitID KitID) (bool, error) {
	kit, err := tx.GetKit(ctx, kitID)
	if err != nil {
		return false, err
	}
	if kit == nil {
		return false, fmt.Errorf("kit %d: %w", kitID, ErrKitNotFound)
	}
	if kit.Status == StatusFullyShipped {
		return true, nil
	}
	if len(kit.Lines) == 0 {
		return false, nil
	}

	for _, line := range kit.Lines {
		shipments, err := tx.ListShipmentsByLine(ctx, line.ID)
		if err != nil {
			return false, err
		}
		shipped := 0
		for _, s := range shipments {
			shipped += s.Quantity
		}
		if shipped < line.RequiredQuantity {
			return false, nil
		}
	}
	return true, nil
}

// MarkKitFullyShipped re-checks fulfillment and, if satisfied, sets the
// kit's status to FullyShipped with the current timestamp.
//
// Fails with *NotFullyShippedError (carrying the kit number) and makes no
// change when the precondition does not hold. Idempotent in effect, but a
// repeat call re-timestamps FullyShippedAt.
func (e *Engine) MarkKitFullyShipped(ctx context.Context, kitID KitID) error {
	err := e.store.WithTx(ctx, func(tx Store) error {
		kit, err := tx.GetKit(ctx, kitID)
		if err != nil {
			return err
		}
		if kit == nil {
			return fmt.Errorf("kit %d: %w", kitID, ErrKitNotFound)
		}

		ok, err := e.kitFullyShipped(ctx, tx, kitID)
		if err != nil {
			return err
		}
		if !ok {
			return &NotFullyShippedError{KitID: kit.ID, KitNumber: kit.Number}
		}

		now := e.now()
		return tx.UpdateKitStatus(ctx, kitID, StatusFullyShipped, &now)
	})
	if err != nil {
		return err
	}

	e.logger.Printf("kit %d marked fully shipped", kitID)
	return nil
}

// SetKitStatus sets a kit's status without any fulfillment check. This is
// the escape hatch for collaborator-driven states (InProgress, Archived);
// it never touches FullyShippedAt. Use MarkKitFullyShipped to record
// fulfillment.
func (e *Engine) SetKitStatus(ctx context.Context, kitID KitID, status KitStatus) error {
	return e.store.WithTx(ctx, func(tx Store) error {
		kit, err := tx.GetKit(ctx, kitID)
		if err != nil {
			return err
		}
		if kit == nil {
			return fmt.Errorf("kit %d: %w", kitID, ErrKitNotFound)
		}
		return tx.UpdateKitStatus(ctx, kitID, status, kit.FullyShippedAt)
	})
}

// ListNotFullyShippedKits returns kits still open for shipping: neither
// fully shipped nor archived nor ignored.
func (e *Engine) ListNotFullyShippedKits(ctx context.Context) ([]Kit, error) {
	kits, err := e.store.ListKits(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Kit, 0, len(kits))
	for _, k := range kits {
		if k.Status == StatusFullyShipped || k.Status == StatusArchived || k.Ignored {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

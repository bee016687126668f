/*
correction.go - Misallocation corrections

PURPOSE:
  Fixes a part misallocation (mis-sort) by moving quantity units from the
  old part's ledger identity to the new part's, recording why. A
  correction is a composed operation: one unassigned shipment of the old
  part, one receipt of the new part, and one immutable audit record.

NUMBERING:
  Correction numbers follow CORR-{year}-{seq:03d}, where seq is one past
  the ID of the most recently created correction. The counter is global;
  only the year label changes. Numbering does NOT restart at year
  boundaries - this is observable, contractual behavior.

ATOMICITY:
  The whole composition runs in a single store transaction. If the
  write-off or the receipt fails, no correction record is written and no
  stock mutation survives.

SEE ALSO:
  - engine.go: shipTx / receiveTx, the reused units of work
*/
package warehouse

import (
	"context"
	"fmt"
)

// Correct moves quantity units of stock from oldPart's identity to
// newPart's and appends a correction audit record.
//
// Preconditions: quantity > 0, oldPartID != newPartID, both parts
// resolvable, and oldPart's available stock covers the quantity. The
// failure of any step rolls back every mutation of the operation.
func (e *Engine) Correct(ctx context.Context, oldPartID, newPartID PartID, quantity int, notes, createdBy string) (*CorrectionRecord, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("correct %d: %w", quantity, ErrInvalidQuantity)
	}
	if oldPartID == newPartID {
		return nil, fmt.Errorf("old and new part must differ: %w", ErrInvalidArguments)
	}
	if createdBy == "" {
		createdBy = "system"
	}

	unlock := e.partLocks.lockPair(int(oldPartID), int(newPartID))
	defer unlock()

	var rec *CorrectionRecord
	err := e.store.WithTx(ctx, func(tx Store) error {
		oldPart, err := tx.GetPart(ctx, oldPartID)
		if err != nil {
			return err
		}
		if oldPart == nil {
			return fmt.Errorf("old part %d: %w", oldPartID, ErrPartNotFound)
		}
		newPart, err := tx.GetPart(ctx, newPartID)
		if err != nil {
			return err
		}
		if newPart == nil {
			return fmt.Errorf("new part %d: %w", newPartID, ErrPartNotFound)
		}

		// Write off the old part. Unassigned: corrections are not tied to
		// any kit line, so the line shipment tracker is never touched.
		writeOffNotes := fmt.Sprintf("stock correction: write-off of %d x %s", quantity, oldPart.Name)
		if _, err := e.shipTx(ctx, tx, oldPartID, Unassigned(), quantity, writeOffNotes); err != nil {
			return err
		}

		// Receive the new part.
		receiptNotes := fmt.Sprintf("stock correction: intake of %d x %s", quantity, newPart.Name)
		if _, err := e.receiveTx(ctx, tx, newPartID, quantity, receiptNotes); err != nil {
			return err
		}

		number, err := e.nextCorrectionNumber(ctx, tx)
		if err != nil {
			return err
		}

		rec = &CorrectionRecord{
			CorrectionNumber: number,
			OldPartID:        oldPartID,
			NewPartID:        newPartID,
			Quantity:         quantity,
			CorrectedAt:      e.now(),
			Notes:            notes,
			CreatedBy:        createdBy,
		}
		return tx.AppendCorrection(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Printf("correction %s: part %d -> part %d x%d", rec.CorrectionNumber, oldPartID, newPartID, quantity)
	return rec, nil
}

func (e *Engine) nextCorrectionNumber(ctx context.Context, tx Store) (string, error) {
	last, err := tx.LastCorrection(ctx)
	if err != nil {
		return "", err
	}
	next := 1
	if last != nil {
		next = last.ID + 1
	}
	return fmt.Sprintf("CORR-%d-%03d", e.now().Year(), next), nil
}

package warehouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complectgroup/warehouse-engine/warehouse"
)

// =============================================================================
// CORRECTION TESTS
// =============================================================================

func TestCorrect_MovesStockBetweenParts(t *testing.T) {
	// GIVEN: 40 bolts on hand, 0 washers
	// WHEN: 15 units are corrected bolt -> washer
	// THEN: Bolts drop to 25, washers rise to 15, one audit record exists

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 40, "")
	require.NoError(t, err)

	rec, err := f.engine.Correct(ctx, f.bolt, f.washer, 15, "mis-sorted delivery", "operator-g")
	require.NoError(t, err)
	assert.Equal(t, 15, rec.Quantity)
	assert.Equal(t, "operator-g", rec.CreatedBy)

	boltStock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 25, boltStock.AvailableQuantity)

	washerStock, err := f.engine.Stock(ctx, f.washer)
	require.NoError(t, err)
	assert.Equal(t, 15, washerStock.AvailableQuantity)

	corrections, err := f.engine.Corrections(ctx)
	require.NoError(t, err)
	require.Len(t, corrections, 1)
}

func TestCorrect_WriteOffIsUnassignedShipment(t *testing.T) {
	// The write-off side must appear in the shipment ledger without a
	// line reference, and the intake side in the receipt ledger.

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 10, "")
	require.NoError(t, err)

	_, err = f.engine.Correct(ctx, f.bolt, f.washer, 10, "", "")
	require.NoError(t, err)

	shipments, err := f.engine.ShipmentsByPart(ctx, f.bolt)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.False(t, shipments[0].Line.Assigned())
	assert.Contains(t, shipments[0].Notes, "write-off")

	receipts, err := f.engine.ReceiptsByPart(ctx, f.washer)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Contains(t, receipts[0].Notes, "intake")
}

func TestCorrect_NumberingSequence(t *testing.T) {
	// GIVEN: A fixed clock in 2026
	// WHEN: Three corrections run back to back
	// THEN: Numbers are CORR-2026-001 through CORR-2026-003

	clock := func() time.Time {
		return time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	}
	f := newFixture(t, warehouse.WithClock(clock))
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 100, "")
	require.NoError(t, err)

	want := []string{"CORR-2026-001", "CORR-2026-002", "CORR-2026-003"}
	for _, expected := range want {
		rec, err := f.engine.Correct(ctx, f.bolt, f.washer, 5, "", "")
		require.NoError(t, err)
		assert.Equal(t, expected, rec.CorrectionNumber)
	}
}

func TestCorrect_DefaultsCreatedByToSystem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 10, "")
	require.NoError(t, err)

	rec, err := f.engine.Correct(ctx, f.bolt, f.washer, 3, "", "")
	require.NoError(t, err)
	assert.Equal(t, "system", rec.CreatedBy)
}

func TestCorrect_InsufficientStock_RollsBackEverything(t *testing.T) {
	// GIVEN: Only 5 bolts on hand
	// WHEN: A correction of 8 bolt -> washer is attempted
	// THEN: No stock moves, no ledger entries, no correction record

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 5, "")
	require.NoError(t, err)

	_, err = f.engine.Correct(ctx, f.bolt, f.washer, 8, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, warehouse.ErrInsufficientStock)

	boltStock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 5, boltStock.AvailableQuantity)

	washerStock, err := f.engine.Stock(ctx, f.washer)
	require.NoError(t, err)
	assert.Nil(t, washerStock, "no stock row may appear for the new part")

	receipts, err := f.engine.ReceiptsByPart(ctx, f.washer)
	require.NoError(t, err)
	assert.Empty(t, receipts)

	shipments, err := f.engine.ShipmentsByPart(ctx, f.bolt)
	require.NoError(t, err)
	assert.Empty(t, shipments)

	corrections, err := f.engine.Corrections(ctx)
	require.NoError(t, err)
	assert.Empty(t, corrections)
}

func TestCorrect_InvalidArguments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Correct(ctx, f.bolt, f.bolt, 5, "", "")
	assert.ErrorIs(t, err, warehouse.ErrInvalidArguments, "same part on both sides")

	_, err = f.engine.Correct(ctx, f.bolt, f.washer, 0, "", "")
	assert.ErrorIs(t, err, warehouse.ErrInvalidQuantity)

	_, err = f.engine.Correct(ctx, f.bolt, f.washer, -2, "", "")
	assert.ErrorIs(t, err, warehouse.ErrInvalidQuantity)

	_, err = f.engine.Correct(ctx, 9999, f.washer, 5, "", "")
	assert.ErrorIs(t, err, warehouse.ErrPartNotFound)

	_, err = f.engine.Correct(ctx, f.bolt, 9999, 5, "", "")
	assert.ErrorIs(t, err, warehouse.ErrPartNotFound)
}

func TestCorrectionsByPart_MatchesEitherSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 20, "")
	require.NoError(t, err)
	_, err = f.engine.Receive(ctx, f.bracket, 20, "")
	require.NoError(t, err)

	_, err = f.engine.Correct(ctx, f.bolt, f.washer, 5, "", "")
	require.NoError(t, err)
	_, err = f.engine.Correct(ctx, f.bracket, f.washer, 5, "", "")
	require.NoError(t, err)

	byWasher, err := f.engine.CorrectionsByPart(ctx, f.washer)
	require.NoError(t, err)
	assert.Len(t, byWasher, 2, "washer is the new part of both")

	byBolt, err := f.engine.CorrectionsByPart(ctx, f.bolt)
	require.NoError(t, err)
	assert.Len(t, byBolt, 1)
}

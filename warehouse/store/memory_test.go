package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complectgroup/warehouse-engine/warehouse"
	"github.com/complectgroup/warehouse-engine/warehouse/store"
)

func seedPart(t *testing.T, m *store.Memory) warehouse.PartID {
	t.Helper()
	ctx := context.Background()
	c := &warehouse.Chapter{Name: "Hydraulics"}
	require.NoError(t, m.SaveChapter(ctx, c))
	p := &warehouse.Part{Name: "Valve DN50", ChapterID: c.ID}
	require.NoError(t, m.SavePart(ctx, p))
	return p.ID
}

// =============================================================================
// TRANSACTION SEMANTICS
// =============================================================================

func TestMemory_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A store with one stock row
	// WHEN: A transaction writes stock and a ledger entry, then fails
	// THEN: Neither write survives

	m := store.NewMemory()
	ctx := context.Background()
	partID := seedPart(t, m)

	require.NoError(t, m.SaveStock(ctx, &warehouse.StockLevel{
		PartID: partID, AvailableQuantity: 10, LastModified: time.Now(),
	}))

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(tx warehouse.Store) error {
		stock, err := tx.GetStock(ctx, partID)
		require.NoError(t, err)
		stock.AvailableQuantity = 99
		require.NoError(t, tx.SaveStock(ctx, stock))
		require.NoError(t, tx.AppendReceipt(ctx, &warehouse.ReceiptRecord{
			PartID: partID, Quantity: 89, ReceivedAt: time.Now(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	stock, err := m.GetStock(ctx, partID)
	require.NoError(t, err)
	assert.Equal(t, 10, stock.AvailableQuantity)

	receipts, err := m.ListReceipts(ctx)
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestMemory_WithTx_CommitsOnSuccess(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	partID := seedPart(t, m)

	err := m.WithTx(ctx, func(tx warehouse.Store) error {
		return tx.SaveStock(ctx, &warehouse.StockLevel{
			PartID: partID, AvailableQuantity: 7, LastModified: time.Now(),
		})
	})
	require.NoError(t, err)

	stock, err := m.GetStock(ctx, partID)
	require.NoError(t, err)
	require.NotNil(t, stock)
	assert.Equal(t, 7, stock.AvailableQuantity)
	assert.NotZero(t, stock.ID)
}

// =============================================================================
// KIT LINE RECONCILIATION
// =============================================================================

func TestMemory_SaveKit_KeepsSurvivingLineIDsStable(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	partID := seedPart(t, m)

	kit := &warehouse.Kit{
		Number: "K-1",
		Lines: []warehouse.Line{
			{PartID: partID, RequiredQuantity: 5},
			{PartID: partID, RequiredQuantity: 3},
		},
	}
	require.NoError(t, m.SaveKit(ctx, kit))
	require.Len(t, kit.Lines, 2)
	firstID := kit.Lines[0].ID
	require.NotZero(t, firstID)

	// Drop the second line, edit the first, add a third
	kit.Lines = []warehouse.Line{
		{ID: firstID, KitID: kit.ID, PartID: partID, RequiredQuantity: 8},
		{PartID: partID, RequiredQuantity: 2},
	}
	require.NoError(t, m.SaveKit(ctx, kit))

	stored, err := m.GetKit(ctx, kit.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, firstID, stored.Lines[0].ID)
	assert.Equal(t, 8, stored.Lines[0].RequiredQuantity)
	assert.NotEqual(t, firstID, stored.Lines[1].ID)
}

func TestMemory_GetLine_FindsLineAcrossKits(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	partID := seedPart(t, m)

	kit := &warehouse.Kit{Number: "K-2", Lines: []warehouse.Line{{PartID: partID, RequiredQuantity: 4}}}
	require.NoError(t, m.SaveKit(ctx, kit))

	line, err := m.GetLine(ctx, kit.Lines[0].ID)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, kit.ID, line.KitID)

	missing, err := m.GetLine(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// ABSENCE AND ORDERING CONVENTIONS
// =============================================================================

func TestMemory_Getters_ReturnNilNilWhenAbsent(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	stock, err := m.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, stock)

	kit, err := m.GetKit(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, kit)

	last, err := m.LastCorrection(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestMemory_Ledgers_NewestFirst(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	partID := seedPart(t, m)

	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, m.AppendReceipt(ctx, &warehouse.ReceiptRecord{
			PartID: partID, Quantity: i + 1, ReceivedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	receipts, err := m.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	assert.Equal(t, 3, receipts[0].Quantity)
	assert.Equal(t, 1, receipts[2].Quantity)
}

func TestMemory_UpdateKitStatus_UnknownKit(t *testing.T) {
	m := store.NewMemory()

	err := m.UpdateKitStatus(context.Background(), 42, warehouse.StatusArchived, nil)
	assert.ErrorIs(t, err, warehouse.ErrKitNotFound)
}

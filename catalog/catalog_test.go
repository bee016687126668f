package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complectgroup/warehouse-engine/catalog"
	"github.com/complectgroup/warehouse-engine/warehouse"
	"github.com/complectgroup/warehouse-engine/warehouse/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestCatalog(t *testing.T) (*catalog.Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	svc := catalog.NewService(st, catalog.WithClock(func() time.Time {
		return time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	}))
	return svc, st
}

func seedParts(t *testing.T, svc *catalog.Service, names ...string) []warehouse.PartID {
	t.Helper()
	ctx := context.Background()
	ch, err := svc.CreateChapter(ctx, "Assembly")
	require.NoError(t, err)

	ids := make([]warehouse.PartID, len(names))
	for i, name := range names {
		p, err := svc.CreatePart(ctx, name, ch.ID)
		require.NoError(t, err)
		ids[i] = p.ID
	}
	return ids
}

// =============================================================================
// CHAPTERS AND PARTS
// =============================================================================

func TestCreateChapter_TrimsAndValidatesName(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	c, err := svc.CreateChapter(ctx, "  Electrics  ")
	require.NoError(t, err)
	assert.Equal(t, "Electrics", c.Name)
	assert.NotZero(t, c.ID)

	_, err = svc.CreateChapter(ctx, "   ")
	assert.ErrorIs(t, err, warehouse.ErrInvalidArguments)
}

func TestCreatePart_RequiresExistingChapter(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := svc.CreatePart(ctx, "Cable 3x1.5", 999)
	assert.ErrorIs(t, err, warehouse.ErrChapterNotFound)

	ch, err := svc.CreateChapter(ctx, "Electrics")
	require.NoError(t, err)

	p, err := svc.CreatePart(ctx, "Cable 3x1.5", ch.ID)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	got, err := svc.GetPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cable 3x1.5", got.Name)
}

func TestGetPart_Unknown(t *testing.T) {
	svc, _ := newTestCatalog(t)

	_, err := svc.GetPart(context.Background(), 404)
	assert.ErrorIs(t, err, warehouse.ErrPartNotFound)
}

func TestRenamePart(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Old Name")

	p, err := svc.RenamePart(ctx, ids[0], "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", p.Name)

	_, err = svc.RenamePart(ctx, ids[0], " ")
	assert.ErrorIs(t, err, warehouse.ErrInvalidArguments)
}

// =============================================================================
// KITS
// =============================================================================

func TestCreateKit_ValidatesNumberAndLines(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Panel A")

	_, err := svc.CreateKit(ctx, catalog.NewKit{Number: "  "})
	assert.ErrorIs(t, err, warehouse.ErrInvalidArguments)

	_, err = svc.CreateKit(ctx, catalog.NewKit{
		Number: "K-1",
		Lines:  []catalog.NewLine{{PartID: 999, RequiredQuantity: 1}},
	})
	assert.ErrorIs(t, err, warehouse.ErrPartNotFound)

	_, err = svc.CreateKit(ctx, catalog.NewKit{
		Number: "K-1",
		Lines:  []catalog.NewLine{{PartID: ids[0], RequiredQuantity: 0}},
	})
	assert.ErrorIs(t, err, warehouse.ErrInvalidQuantity)
}

func TestCreateKit_SetsDefaultsAndAssignsLineIDs(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Panel A", "Panel B")

	kit, err := svc.CreateKit(ctx, catalog.NewKit{
		Number:      "K-2026-17",
		Manager:     "L. Ansel",
		Customer:    "Brightline",
		TotalWeight: decimal.RequireFromString("44.2"),
		Lines: []catalog.NewLine{
			{PartID: ids[0], RequiredQuantity: 2},
			{PartID: ids[1], RequiredQuantity: 6},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, kit.ID)
	assert.Equal(t, warehouse.StatusDraft, kit.Status)
	assert.Equal(t, 2026, kit.CreatedDate.Year())
	require.Len(t, kit.Lines, 2)
	assert.NotZero(t, kit.Lines[0].ID)
	assert.Equal(t, kit.ID, kit.Lines[0].KitID)
}

func TestCreateKit_PartValidationFailure_WritesNothing(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Panel A")

	_, err := svc.CreateKit(ctx, catalog.NewKit{
		Number: "K-BAD",
		Lines: []catalog.NewLine{
			{PartID: ids[0], RequiredQuantity: 1},
			{PartID: 999, RequiredQuantity: 1},
		},
	})
	require.Error(t, err)

	kits, err := svc.ListKits(ctx)
	require.NoError(t, err)
	assert.Empty(t, kits)
}

func TestUpdateKit_PartialHeaderUpdate(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Panel A")

	kit, err := svc.CreateKit(ctx, catalog.NewKit{
		Number:   "K-3",
		Manager:  "L. Ansel",
		Customer: "Brightline",
		Lines:    []catalog.NewLine{{PartID: ids[0], RequiredQuantity: 2}},
	})
	require.NoError(t, err)

	newManager := "M. Petreus"
	updated, err := svc.UpdateKit(ctx, kit.ID, catalog.KitUpdate{Manager: &newManager})
	require.NoError(t, err)
	assert.Equal(t, "M. Petreus", updated.Manager)
	assert.Equal(t, "Brightline", updated.Customer, "untouched fields stay")
	assert.Equal(t, "K-3", updated.Number)
}

func TestUpdateKit_LineAddEditDelete(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Panel A", "Panel B")

	kit, err := svc.CreateKit(ctx, catalog.NewKit{
		Number: "K-4",
		Lines: []catalog.NewLine{
			{PartID: ids[0], RequiredQuantity: 2},
			{PartID: ids[0], RequiredQuantity: 7},
		},
	})
	require.NoError(t, err)
	editID := kit.Lines[0].ID
	dropID := kit.Lines[1].ID

	updated, err := svc.UpdateKit(ctx, kit.ID, catalog.KitUpdate{
		Lines: []catalog.LineUpdate{
			{ID: editID, PartID: ids[1], RequiredQuantity: 5},
			{ID: dropID, Delete: true},
			{PartID: ids[1], RequiredQuantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 2)
	assert.Equal(t, editID, updated.Lines[0].ID)
	assert.Equal(t, ids[1], updated.Lines[0].PartID)
	assert.Equal(t, 5, updated.Lines[0].RequiredQuantity)
	assert.Equal(t, 3, updated.Lines[1].RequiredQuantity)
}

func TestUpdateKit_UnknownLine(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Panel A")

	kit, err := svc.CreateKit(ctx, catalog.NewKit{
		Number: "K-5",
		Lines:  []catalog.NewLine{{PartID: ids[0], RequiredQuantity: 2}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateKit(ctx, kit.ID, catalog.KitUpdate{
		Lines: []catalog.LineUpdate{{ID: 999, Delete: true}},
	})
	assert.ErrorIs(t, err, warehouse.ErrLineNotFound)

	// The failed update must not have touched the kit
	got, err := svc.GetKit(ctx, kit.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}

func TestDeleteKit(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Panel A")

	kit, err := svc.CreateKit(ctx, catalog.NewKit{
		Number: "K-6",
		Lines:  []catalog.NewLine{{PartID: ids[0], RequiredQuantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteKit(ctx, kit.ID))

	_, err = svc.GetKit(ctx, kit.ID)
	assert.ErrorIs(t, err, warehouse.ErrKitNotFound)

	err = svc.DeleteKit(ctx, kit.ID)
	assert.ErrorIs(t, err, warehouse.ErrKitNotFound)
}

func TestSetIgnored(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	ids := seedParts(t, svc, "Panel A")

	kit, err := svc.CreateKit(ctx, catalog.NewKit{
		Number: "K-7",
		Lines:  []catalog.NewLine{{PartID: ids[0], RequiredQuantity: 2}},
	})
	require.NoError(t, err)
	assert.False(t, kit.Ignored)

	updated, err := svc.SetIgnored(ctx, kit.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Ignored)

	updated, err = svc.SetIgnored(ctx, kit.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Ignored)
}

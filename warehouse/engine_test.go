package warehouse_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complectgroup/warehouse-engine/warehouse"
	"github.com/complectgroup/warehouse-engine/warehouse/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	engine *warehouse.Engine
	store  *store.Memory

	bolt    warehouse.PartID
	washer  warehouse.PartID
	bracket warehouse.PartID
}

// newFixture creates an engine over a fresh in-memory store with three
// catalog parts under one chapter.
func newFixture(t *testing.T, opts ...warehouse.Option) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()

	chapter := &warehouse.Chapter{Name: "Fasteners"}
	require.NoError(t, st.SaveChapter(ctx, chapter))

	f := &fixture{store: st}
	for _, nm := range []struct {
		name string
		dst  *warehouse.PartID
	}{
		{"Bolt M8", &f.bolt},
		{"Washer 8mm", &f.washer},
		{"Bracket L", &f.bracket},
	} {
		p := &warehouse.Part{Name: nm.name, ChapterID: chapter.ID}
		require.NoError(t, st.SavePart(ctx, p))
		*nm.dst = p.ID
	}

	f.engine = warehouse.NewEngine(st, opts...)
	return f
}

// addKit creates a kit with one line per (part, required) pair and
// returns the kit with store-assigned line IDs.
func (f *fixture) addKit(t *testing.T, number string, lines ...warehouse.Line) *warehouse.Kit {
	t.Helper()
	kit := &warehouse.Kit{Number: number, Lines: lines}
	require.NoError(t, f.store.SaveKit(context.Background(), kit))
	return kit
}

func line(partID warehouse.PartID, required int) warehouse.Line {
	return warehouse.Line{PartID: partID, RequiredQuantity: required}
}

// =============================================================================
// RECEIPT TESTS
// =============================================================================

func TestReceive_CreatesStockAndAppendsLedger(t *testing.T) {
	// GIVEN: A part with no stock row yet
	// WHEN: 50 units are received
	// THEN: A stock row appears with available=50 and one receipt record

	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.engine.Receive(ctx, f.bolt, 50, "initial delivery")
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, 50, rec.Quantity)

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	require.NotNil(t, stock)
	assert.Equal(t, 50, stock.AvailableQuantity)

	history, err := f.engine.ReceiptsByPart(ctx, f.bolt)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "initial delivery", history[0].Notes)
}

func TestReceive_AccumulatesExistingStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 30, "")
	require.NoError(t, err)
	_, err = f.engine.Receive(ctx, f.bolt, 20, "")
	require.NoError(t, err)

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 50, stock.AvailableQuantity)

	history, err := f.engine.ReceiptsByPart(ctx, f.bolt)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestReceive_UnknownPart_Rejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Receive(context.Background(), 9999, 10, "")
	assert.ErrorIs(t, err, warehouse.ErrPartNotFound)
}

func TestReceive_NonPositiveQuantity_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, qty := range []int{0, -5} {
		_, err := f.engine.Receive(ctx, f.bolt, qty, "")
		assert.ErrorIs(t, err, warehouse.ErrInvalidQuantity)
	}

	// Nothing must have been written
	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Nil(t, stock)
}

// =============================================================================
// SHIPMENT TESTS
// =============================================================================

func TestShip_DebitsStockAndTracksLine(t *testing.T) {
	// GIVEN: 100 bolts on hand and a kit line requiring 40
	// WHEN: 25 are shipped against the line
	// THEN: Stock drops to 75 and the line status reports a partial

	f := newFixture(t)
	ctx := context.Background()
	kit := f.addKit(t, "K-100", line(f.bolt, 40))
	lineID := kit.Lines[0].ID

	_, err := f.engine.Receive(ctx, f.bolt, 100, "")
	require.NoError(t, err)

	rec, err := f.engine.Ship(ctx, f.bolt, warehouse.ForLine(lineID), 25, "first batch")
	require.NoError(t, err)
	gotLine, ok := rec.Line.LineID()
	require.True(t, ok)
	assert.Equal(t, lineID, gotLine)

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 75, stock.AvailableQuantity)

	status, err := f.engine.LineShipmentStatus(ctx, lineID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 25, status.Shipped)
	assert.Equal(t, 40, status.Required)
	assert.Equal(t, 15, status.Remaining)
	assert.Equal(t, warehouse.ShipmentPartiallyShipped, status.Status)
}

func TestShip_ExactDrain_SucceedsToZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kit := f.addKit(t, "K-101", line(f.bolt, 10))

	_, err := f.engine.Receive(ctx, f.bolt, 10, "")
	require.NoError(t, err)

	_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(kit.Lines[0].ID), 10, "")
	require.NoError(t, err)

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 0, stock.AvailableQuantity)

	// One more unit off an empty shelf is refused
	_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(kit.Lines[0].ID), 1, "")
	assert.ErrorIs(t, err, warehouse.ErrInsufficientStock)
}

func TestShip_TrackerEqualsLedgerSum(t *testing.T) {
	// GIVEN: Several shipments against the same line
	// WHEN: The tracker and the ledger are read back
	// THEN: The tracker total equals the sum of the line's ledger records

	f := newFixture(t)
	ctx := context.Background()
	kit := f.addKit(t, "K-105", line(f.bolt, 30))
	lineID := kit.Lines[0].ID

	_, err := f.engine.Receive(ctx, f.bolt, 30, "")
	require.NoError(t, err)

	for _, qty := range []int{4, 9, 2} {
		_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(lineID), qty, "")
		require.NoError(t, err)
	}

	records, err := f.engine.ShipmentsByLine(ctx, lineID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	total := 0
	for _, r := range records {
		total += r.Quantity
	}

	status, err := f.engine.LineShipmentStatus(ctx, lineID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 15, total)
	assert.Equal(t, total, status.Shipped)
}

func TestShip_InsufficientStock_NothingChanges(t *testing.T) {
	// GIVEN: 5 bolts on hand
	// WHEN: A shipment of 8 is attempted
	// THEN: InsufficientStockError with exact figures; no state mutated

	f := newFixture(t)
	ctx := context.Background()
	kit := f.addKit(t, "K-102", line(f.bolt, 20))
	lineID := kit.Lines[0].ID

	_, err := f.engine.Receive(ctx, f.bolt, 5, "")
	require.NoError(t, err)

	_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(lineID), 8, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, warehouse.ErrInsufficientStock)

	var stockErr *warehouse.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, f.bolt, stockErr.PartID)
	assert.Equal(t, "Bolt M8", stockErr.PartName)
	assert.Equal(t, 8, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 3, stockErr.Shortfall())

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 5, stock.AvailableQuantity, "stock must be untouched")

	shipments, err := f.engine.ShipmentsByLine(ctx, lineID)
	require.NoError(t, err)
	assert.Empty(t, shipments, "no shipment record on rejection")

	status, err := f.engine.LineShipmentStatus(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Shipped, "tracker must be untouched")
}

func TestShip_NeverReceivedPart_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	kit := f.addKit(t, "K-103", line(f.washer, 4))

	_, err := f.engine.Ship(context.Background(), f.washer, warehouse.ForLine(kit.Lines[0].ID), 1, "")
	require.Error(t, err)

	var stockErr *warehouse.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
}

func TestShip_OverShipment_AllowedAndRecorded(t *testing.T) {
	// GIVEN: A line requiring 10, of which 8 already shipped
	// WHEN: 5 more are shipped (total 13 > 10)
	// THEN: The shipment succeeds; remaining clamps to 0, fully shipped

	f := newFixture(t)
	ctx := context.Background()
	kit := f.addKit(t, "K-104", line(f.bolt, 10))
	lineID := kit.Lines[0].ID

	_, err := f.engine.Receive(ctx, f.bolt, 50, "")
	require.NoError(t, err)

	_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(lineID), 8, "")
	require.NoError(t, err)
	_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(lineID), 5, "")
	require.NoError(t, err, "over-shipment is permitted")

	status, err := f.engine.LineShipmentStatus(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, 13, status.Shipped)
	assert.Equal(t, 0, status.Remaining)
	assert.Equal(t, warehouse.ShipmentFullyShipped, status.Status)

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 37, stock.AvailableQuantity)
}

func TestShip_Unassigned_SkipsLineTracker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 10, "")
	require.NoError(t, err)

	rec, err := f.engine.Ship(ctx, f.bolt, warehouse.Unassigned(), 4, "scrap")
	require.NoError(t, err)
	assert.False(t, rec.Line.Assigned())

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 6, stock.AvailableQuantity)

	history, err := f.engine.ShipmentsByPart(ctx, f.bolt)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Line.Assigned())
}

func TestShip_UnknownLine_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 10, "")
	require.NoError(t, err)

	_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(777), 1, "")
	assert.ErrorIs(t, err, warehouse.ErrLineNotFound)

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 10, stock.AvailableQuantity)
}

func TestShip_PreconditionOrder_PartBeforeLineBeforeQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Unknown part wins over unknown line
	_, err := f.engine.Ship(ctx, 9999, warehouse.ForLine(777), 1, "")
	assert.ErrorIs(t, err, warehouse.ErrPartNotFound)

	// Unknown line wins over bad quantity
	_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(777), 0, "")
	assert.ErrorIs(t, err, warehouse.ErrLineNotFound)

	// Bad quantity reported once part and line resolve
	kit := f.addKit(t, "K-105", line(f.bolt, 5))
	_, err = f.engine.Ship(ctx, f.bolt, warehouse.ForLine(kit.Lines[0].ID), 0, "")
	assert.ErrorIs(t, err, warehouse.ErrInvalidQuantity)
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestLineShipmentStatus_UnknownLine_ReturnsNil(t *testing.T) {
	f := newFixture(t)

	status, err := f.engine.LineShipmentStatus(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestLineShipmentStatus_NotShippedLine(t *testing.T) {
	f := newFixture(t)
	kit := f.addKit(t, "K-106", line(f.bolt, 7))

	status, err := f.engine.LineShipmentStatus(context.Background(), kit.Lines[0].ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, warehouse.ShipmentNotShipped, status.Status)
	assert.Equal(t, 7, status.Remaining)
}

func TestListAvailableStock_FiltersDrainedParts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 10, "")
	require.NoError(t, err)
	_, err = f.engine.Receive(ctx, f.washer, 3, "")
	require.NoError(t, err)
	_, err = f.engine.Ship(ctx, f.washer, warehouse.Unassigned(), 3, "")
	require.NoError(t, err)

	all, err := f.engine.ListStock(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := f.engine.ListAvailableStock(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, f.bolt, available[0].PartID)
}

func TestHistories_NewestFirst(t *testing.T) {
	// GIVEN: Receipts made at strictly increasing times
	// WHEN: The history is listed
	// THEN: The most recent receipt comes first

	current := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	f := newFixture(t, warehouse.WithClock(clock))
	ctx := context.Background()

	for i, notes := range []string{"first", "second", "third"} {
		current = current.Add(time.Duration(i+1) * time.Hour)
		_, err := f.engine.Receive(ctx, f.bolt, 10, notes)
		require.NoError(t, err)
	}

	history, err := f.engine.Receipts(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "third", history[0].Notes)
	assert.Equal(t, "second", history[1].Notes)
	assert.Equal(t, "first", history[2].Notes)
}

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestConcurrentShipments_NeverOverdraw(t *testing.T) {
	// GIVEN: 100 units on hand and 20 goroutines each shipping 10
	// WHEN: All run concurrently
	// THEN: Exactly 10 succeed; stock ends at 0, never negative

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Receive(ctx, f.bolt, 100, "")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Ship(ctx, f.bolt, warehouse.Unassigned(), 10, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, warehouse.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 10, succeeded)

	stock, err := f.engine.Stock(ctx, f.bolt)
	require.NoError(t, err)
	assert.Equal(t, 0, stock.AvailableQuantity)

	shipments, err := f.engine.ShipmentsByPart(ctx, f.bolt)
	require.NoError(t, err)
	assert.Len(t, shipments, 10)
}

func TestConcurrentReceipts_AllAccounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Receive(ctx, f.washer, 4, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stock, err := f.engine.Stock(ctx, f.washer)
	require.NoError(t, err)
	assert.Equal(t, workers*4, stock.AvailableQuantity)
}

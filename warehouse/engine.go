/*
engine.go - Warehouse facade: the single entry point for stock mutations

PURPOSE:
  Orchestrates the stock store, the receipt/shipment ledgers, and the line
  shipment tracker. Validates every precondition before mutating state and
  runs each multi-write operation as one atomic store transaction.

OPERATIONS:
  Receive:   credit stock, append a receipt record
  Ship:      debit stock, upsert the line tracker, append a shipment record
  Correct:   see correction.go
  Queries:   stock levels, line shipment status, ledger histories

CONCURRENCY:
  Two callers reading available=10 and both approving a qty=8 shipment
  would overdraw to -6 if check-then-debit ran as two independent steps.
  The engine serializes check-and-debit per part with striped mutexes, and
  the tracker upsert per line the same way. Everything else is append-only
  and safe for concurrent readers.

OVER-SHIPMENT:
  Shipping more than a line requires is permitted: the ledger is
  authoritative, the required figure is advisory. The engine logs a
  warning and proceeds. The only hard gate is the stock check.

SEE ALSO:
  - store.go:       Persistence contract and atomicity requirements
  - correction.go:  Misallocation corrections
  - fulfillment.go: Kit fulfillment state machine
*/
package warehouse

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the warehouse facade. All stock mutations go through it.
type Engine struct {
	store  TxStore
	logger *log.Logger
	now    func() time.Time

	partLocks stripedMutex
	lineLocks stripedMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for shipment warnings and audit lines.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine on top of a transactional store.
func NewEngine(store TxStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// RECEIPT - Stock inflow
// =============================================================================

// Receive credits stock for a part and appends a receipt record.
// The stock row is created on first receipt.
//
// Fails with ErrPartNotFound or ErrInvalidQuantity; the credit and the
// ledger append succeed or fail together.
func (e *Engine) Receive(ctx context.Context, partID PartID, quantity int, notes string) (*ReceiptRecord, error) {
	unlock := e.partLocks.lock(int(partID))
	defer unlock()

	var rec *ReceiptRecord
	err := e.store.WithTx(ctx, func(tx Store) error {
		var err error
		rec, err = e.receiveTx(ctx, tx, partID, quantity, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.Printf("receipt: part %d x%d (receipt %d)", partID, quantity, rec.ID)
	return rec, nil
}

// receiveTx is the receipt unit of work. It must run inside a store
// transaction; Correct reuses it within its own.
func (e *Engine) receiveTx(ctx context.Context, tx Store, partID PartID, quantity int, notes string) (*ReceiptRecord, error) {
	part, err := tx.GetPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, fmt.Errorf("part %d: %w", partID, ErrPartNotFound)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("receive %d: %w", quantity, ErrInvalidQuantity)
	}

	now := e.now()

	stock, err := tx.GetStock(ctx, partID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		stock = &StockLevel{PartID: partID, AvailableQuantity: quantity, LastModified: now}
	} else {
		stock.AvailableQuantity += quantity
		stock.LastModified = now
	}
	if err := tx.SaveStock(ctx, stock); err != nil {
		return nil, err
	}

	rec := &ReceiptRecord{
		PartID:     partID,
		Quantity:   quantity,
		ReceivedAt: now,
		Notes:      notes,
	}
	if err := tx.AppendReceipt(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// =============================================================================
// SHIPMENT - Stock outflow
// =============================================================================

// Ship debits stock for a part, updates the line shipment tracker, and
// appends a shipment record, all in one store transaction.
//
// Preconditions, in order: the part exists, the line exists (when
// assigned), quantity > 0. Over-shipment past the line's requirement is
// logged and allowed. The stock check is the only hard gate: on
// *InsufficientStockError no state changes at all.
//
// An unassigned LineRef records a shipment not tied to any kit line and
// skips the tracker step entirely.
func (e *Engine) Ship(ctx context.Context, partID PartID, line LineRef, quantity int, notes string) (*ShipmentRecord, error) {
	unlockPart := e.partLocks.lock(int(partID))
	defer unlockPart()
	if lineID, ok := line.LineID(); ok {
		unlockLine := e.lineLocks.lock(int(lineID))
		defer unlockLine()
	}

	var rec *ShipmentRecord
	err := e.store.WithTx(ctx, func(tx Store) error {
		var err error
		rec, err = e.shipTx(ctx, tx, partID, line, quantity, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	if lineID, ok := line.LineID(); ok {
		e.logger.Printf("shipment: part %d x%d against line %d (shipment %d)", partID, quantity, lineID, rec.ID)
	} else {
		e.logger.Printf("shipment: part %d x%d, unassigned (shipment %d)", partID, quantity, rec.ID)
	}
	return rec, nil
}

// shipTx is the shipment unit of work. It must run inside a store
// transaction; Correct reuses it within its own.
func (e *Engine) shipTx(ctx context.Context, tx Store, partID PartID, line LineRef, quantity int, notes string) (*ShipmentRecord, error) {
	part, err := tx.GetPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, fmt.Errorf("part %d: %w", partID, ErrPartNotFound)
	}

	var kitLine *Line
	if lineID, ok := line.LineID(); ok {
		kitLine, err = tx.GetLine(ctx, lineID)
		if err != nil {
			return nil, err
		}
		if kitLine == nil {
			return nil, fmt.Errorf("line %d: %w", lineID, ErrLineNotFound)
		}
	}

	if quantity <= 0 {
		return nil, fmt.Errorf("ship %d: %w", quantity, ErrInvalidQuantity)
	}

	var tracker *LineShipment
	if kitLine != nil {
		tracker, err = tx.GetLineShipment(ctx, kitLine.ID)
		if err != nil {
			return nil, err
		}
		alreadyShipped := 0
		if tracker != nil {
			alreadyShipped = tracker.ShippedQuantity
		}
		if alreadyShipped+quantity > kitLine.RequiredQuantity {
			e.logger.Printf("warning: over-shipment on line %d: required %d, already shipped %d, shipping %d; operation allowed",
				kitLine.ID, kitLine.RequiredQuantity, alreadyShipped, quantity)
		}
	}

	// The stock check is the only hard gate. Nothing below may run if it fails.
	stock, err := tx.GetStock(ctx, partID)
	if err != nil {
		return nil, err
	}
	available := 0
	if stock != nil {
		available = stock.AvailableQuantity
	}
	if available < quantity {
		return nil, &InsufficientStockError{
			PartID:    partID,
			PartName:  part.Name,
			Requested: quantity,
			Available: available,
		}
	}

	now := e.now()

	stock.AvailableQuantity -= quantity
	stock.LastModified = now
	if err := tx.SaveStock(ctx, stock); err != nil {
		return nil, err
	}

	if kitLine != nil {
		if tracker == nil {
			tracker = &LineShipment{
				LineID:          kitLine.ID,
				ShippedQuantity: quantity,
				FirstShippedAt:  now,
				LastShippedAt:   now,
			}
		} else {
			tracker.ShippedQuantity += quantity
			tracker.LastShippedAt = now
		}
		if err := tx.SaveLineShipment(ctx, tracker); err != nil {
			return nil, err
		}
	}

	rec := &ShipmentRecord{
		PartID:    partID,
		Line:      line,
		Quantity:  quantity,
		ShippedAt: now,
		Notes:     notes,
	}
	if err := tx.AppendShipment(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// =============================================================================
// STOCK QUERIES
// =============================================================================

// Stock returns the stock level for a part, or (nil, nil) when the part
// has never been received.
func (e *Engine) Stock(ctx context.Context, partID PartID) (*StockLevel, error) {
	return e.store.GetStock(ctx, partID)
}

// ListStock returns all stock rows.
func (e *Engine) ListStock(ctx context.Context) ([]StockLevel, error) {
	return e.store.ListStock(ctx)
}

// ListAvailableStock returns stock rows with a positive total quantity.
func (e *Engine) ListAvailableStock(ctx context.Context) ([]StockLevel, error) {
	all, err := e.store.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StockLevel, 0, len(all))
	for _, s := range all {
		if s.TotalQuantity() > 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

// LineShipmentStatus summarizes shipped-vs-required for one kit line.
// Returns (nil, nil) when the line does not exist.
func (e *Engine) LineShipmentStatus(ctx context.Context, lineID LineID) (*LineShipmentStatus, error) {
	line, err := e.store.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, nil
	}

	tracker, err := e.store.GetLineShipment(ctx, lineID)
	if err != nil {
		return nil, err
	}

	shipped := 0
	if tracker != nil {
		shipped = tracker.ShippedQuantity
	}
	remaining := line.RequiredQuantity - shipped
	if remaining < 0 {
		remaining = 0
	}

	status := ShipmentNotShipped
	switch {
	case shipped >= line.RequiredQuantity && shipped > 0:
		status = ShipmentFullyShipped
	case shipped > 0:
		status = ShipmentPartiallyShipped
	}

	return &LineShipmentStatus{
		LineID:    lineID,
		Shipped:   shipped,
		Required:  line.RequiredQuantity,
		Remaining: remaining,
		Status:    status,
	}, nil
}

// =============================================================================
// HISTORY QUERIES - Newest-first, straight from the ledgers
// =============================================================================

func (e *Engine) Receipts(ctx context.Context) ([]ReceiptRecord, error) {
	return e.store.ListReceipts(ctx)
}

func (e *Engine) ReceiptsByPart(ctx context.Context, partID PartID) ([]ReceiptRecord, error) {
	return e.store.ListReceiptsByPart(ctx, partID)
}

func (e *Engine) Shipments(ctx context.Context) ([]ShipmentRecord, error) {
	return e.store.ListShipments(ctx)
}

func (e *Engine) ShipmentsByPart(ctx context.Context, partID PartID) ([]ShipmentRecord, error) {
	return e.store.ListShipmentsByPart(ctx, partID)
}

func (e *Engine) ShipmentsByLine(ctx context.Context, lineID LineID) ([]ShipmentRecord, error) {
	return e.store.ListShipmentsByLine(ctx, lineID)
}

func (e *Engine) Corrections(ctx context.Context) ([]CorrectionRecord, error) {
	return e.store.ListCorrections(ctx)
}

func (e *Engine) CorrectionsByPart(ctx context.Context, partID PartID) ([]CorrectionRecord, error) {
	return e.store.ListCorrectionsByPart(ctx, partID)
}

// =============================================================================
// STRIPED MUTEX - Per-key serialization without unbounded lock maps
// =============================================================================

const lockStripes = 64

// stripedMutex serializes operations per integer key. Two distinct keys may
// share a stripe; that only costs contention, never correctness.
type stripedMutex struct {
	stripes [lockStripes]sync.Mutex
}

// lock acquires the stripe for key and returns its unlock func.
func (s *stripedMutex) lock(key int) func() {
	m := &s.stripes[uint(key)%lockStripes]
	m.Lock()
	return m.Unlock
}

// lockPair acquires stripes for two keys in index order, avoiding both
// deadlock and double-locking when the keys collide on one stripe.
func (s *stripedMutex) lockPair(a, b int) func() {
	i := uint(a) % lockStripes
	j := uint(b) % lockStripes
	if i == j {
		return s.lock(a)
	}
	if i > j {
		i, j = j, i
	}
	s.stripes[i].Lock()
	s.stripes[j].Lock()
	first, second := &s.stripes[i], &s.stripes[j]
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

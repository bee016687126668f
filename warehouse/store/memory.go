// Package store provides an in-memory TxStore implementation (tests/dev).
package store

import (
	"context"
	"sync"
	"time"

	"github.com/complectgroup/warehouse-engine/warehouse"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory implements warehouse.TxStore entirely in memory.
//
// WithTx takes a snapshot of the whole state and swaps it back in only on
// success, giving the same all-or-nothing semantics as a database
// transaction.
type Memory struct {
	mu    sync.RWMutex
	state *state
}

var _ warehouse.TxStore = (*Memory)(nil)

type state struct {
	chapters      map[warehouse.ChapterID]warehouse.Chapter
	parts         map[warehouse.PartID]warehouse.Part
	kits          map[warehouse.KitID]warehouse.Kit
	stock         map[warehouse.PartID]warehouse.StockLevel
	lineShipments map[warehouse.LineID]warehouse.LineShipment
	receipts      []warehouse.ReceiptRecord
	shipments     []warehouse.ShipmentRecord
	corrections   []warehouse.CorrectionRecord

	nextChapter    int
	nextPart       int
	nextKit        int
	nextLine       int
	nextStock      int
	nextTracker    int
	nextReceipt    int
	nextShipment   int
	nextCorrection int
}

func NewMemory() *Memory {
	return &Memory{state: newState()}
}

func newState() *state {
	return &state{
		chapters:      make(map[warehouse.ChapterID]warehouse.Chapter),
		parts:         make(map[warehouse.PartID]warehouse.Part),
		kits:          make(map[warehouse.KitID]warehouse.Kit),
		stock:         make(map[warehouse.PartID]warehouse.StockLevel),
		lineShipments: make(map[warehouse.LineID]warehouse.LineShipment),
	}
}

func (s *state) clone() *state {
	c := &state{
		chapters:       make(map[warehouse.ChapterID]warehouse.Chapter, len(s.chapters)),
		parts:          make(map[warehouse.PartID]warehouse.Part, len(s.parts)),
		kits:           make(map[warehouse.KitID]warehouse.Kit, len(s.kits)),
		stock:          make(map[warehouse.PartID]warehouse.StockLevel, len(s.stock)),
		lineShipments:  make(map[warehouse.LineID]warehouse.LineShipment, len(s.lineShipments)),
		receipts:       append([]warehouse.ReceiptRecord(nil), s.receipts...),
		shipments:      append([]warehouse.ShipmentRecord(nil), s.shipments...),
		corrections:    append([]warehouse.CorrectionRecord(nil), s.corrections...),
		nextChapter:    s.nextChapter,
		nextPart:       s.nextPart,
		nextKit:        s.nextKit,
		nextLine:       s.nextLine,
		nextStock:      s.nextStock,
		nextTracker:    s.nextTracker,
		nextReceipt:    s.nextReceipt,
		nextShipment:   s.nextShipment,
		nextCorrection: s.nextCorrection,
	}
	for id, ch := range s.chapters {
		c.chapters[id] = ch
	}
	for id, p := range s.parts {
		c.parts[id] = p
	}
	for id, k := range s.kits {
		c.kits[id] = copyKit(k)
	}
	for id, st := range s.stock {
		c.stock[id] = st
	}
	for id, ls := range s.lineShipments {
		c.lineShipments[id] = ls
	}
	return c
}

func copyKit(k warehouse.Kit) warehouse.Kit {
	out := k
	out.Lines = append([]warehouse.Line(nil), k.Lines...)
	if k.FullyShippedAt != nil {
		t := *k.FullyShippedAt
		out.FullyShippedAt = &t
	}
	return out
}

// WithTx runs fn against a snapshot; the snapshot replaces the live state
// only when fn returns nil.
func (m *Memory) WithTx(ctx context.Context, fn func(warehouse.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.state.clone()
	if err := fn(&view{state: staged}); err != nil {
		return err
	}
	m.state = staged
	return nil
}

// view exposes a state as a warehouse.Store without locking; Memory's own
// methods wrap it with the mutex.
type view struct {
	state *state
}

// =============================================================================
// CATALOG: CHAPTERS
// =============================================================================

func (v *view) GetChapter(_ context.Context, id warehouse.ChapterID) (*warehouse.Chapter, error) {
	ch, ok := v.state.chapters[id]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func (v *view) ListChapters(_ context.Context) ([]warehouse.Chapter, error) {
	out := make([]warehouse.Chapter, 0, len(v.state.chapters))
	for i := 1; i <= v.state.nextChapter; i++ {
		if ch, ok := v.state.chapters[warehouse.ChapterID(i)]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (v *view) SaveChapter(_ context.Context, c *warehouse.Chapter) error {
	if c.ID == 0 {
		v.state.nextChapter++
		c.ID = warehouse.ChapterID(v.state.nextChapter)
	}
	v.state.chapters[c.ID] = *c
	return nil
}

func (v *view) DeleteChapter(_ context.Context, id warehouse.ChapterID) error {
	delete(v.state.chapters, id)
	return nil
}

// =============================================================================
// CATALOG: PARTS
// =============================================================================

func (v *view) GetPart(_ context.Context, id warehouse.PartID) (*warehouse.Part, error) {
	p, ok := v.state.parts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (v *view) ListParts(_ context.Context) ([]warehouse.Part, error) {
	out := make([]warehouse.Part, 0, len(v.state.parts))
	for i := 1; i <= v.state.nextPart; i++ {
		if p, ok := v.state.parts[warehouse.PartID(i)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (v *view) SavePart(_ context.Context, p *warehouse.Part) error {
	if p.ID == 0 {
		v.state.nextPart++
		p.ID = warehouse.PartID(v.state.nextPart)
	}
	v.state.parts[p.ID] = *p
	return nil
}

// =============================================================================
// CATALOG: KITS AND LINES
// =============================================================================

func (v *view) GetKit(_ context.Context, id warehouse.KitID) (*warehouse.Kit, error) {
	k, ok := v.state.kits[id]
	if !ok {
		return nil, nil
	}
	out := copyKit(k)
	return &out, nil
}

func (v *view) ListKits(_ context.Context) ([]warehouse.Kit, error) {
	out := make([]warehouse.Kit, 0, len(v.state.kits))
	for i := 1; i <= v.state.nextKit; i++ {
		if k, ok := v.state.kits[warehouse.KitID(i)]; ok {
			out = append(out, copyKit(k))
		}
	}
	return out, nil
}

func (v *view) SaveKit(_ context.Context, k *warehouse.Kit) error {
	if k.ID == 0 {
		v.state.nextKit++
		k.ID = warehouse.KitID(v.state.nextKit)
	}
	for i := range k.Lines {
		k.Lines[i].KitID = k.ID
		if k.Lines[i].ID == 0 {
			v.state.nextLine++
			k.Lines[i].ID = warehouse.LineID(v.state.nextLine)
		}
	}
	v.state.kits[k.ID] = copyKit(*k)
	return nil
}

func (v *view) DeleteKit(_ context.Context, id warehouse.KitID) error {
	delete(v.state.kits, id)
	return nil
}

func (v *view) UpdateKitStatus(_ context.Context, id warehouse.KitID, status warehouse.KitStatus, fullyShippedAt *time.Time) error {
	k, ok := v.state.kits[id]
	if !ok {
		return warehouse.ErrKitNotFound
	}
	k.Status = status
	if fullyShippedAt != nil {
		t := *fullyShippedAt
		k.FullyShippedAt = &t
	} else {
		k.FullyShippedAt = nil
	}
	v.state.kits[id] = k
	return nil
}

func (v *view) GetLine(_ context.Context, id warehouse.LineID) (*warehouse.Line, error) {
	for _, k := range v.state.kits {
		for _, line := range k.Lines {
			if line.ID == id {
				l := line
				return &l, nil
			}
		}
	}
	return nil, nil
}

// =============================================================================
// STOCK
// =============================================================================

func (v *view) GetStock(_ context.Context, partID warehouse.PartID) (*warehouse.StockLevel, error) {
	s, ok := v.state.stock[partID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (v *view) ListStock(_ context.Context) ([]warehouse.StockLevel, error) {
	out := make([]warehouse.StockLevel, 0, len(v.state.stock))
	for i := 1; i <= v.state.nextPart; i++ {
		if s, ok := v.state.stock[warehouse.PartID(i)]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (v *view) SaveStock(_ context.Context, s *warehouse.StockLevel) error {
	if s.ID == 0 {
		v.state.nextStock++
		s.ID = v.state.nextStock
	}
	v.state.stock[s.PartID] = *s
	return nil
}

// =============================================================================
// RECEIPT LEDGER
// =============================================================================

func (v *view) AppendReceipt(_ context.Context, r *warehouse.ReceiptRecord) error {
	v.state.nextReceipt++
	r.ID = v.state.nextReceipt
	v.state.receipts = append(v.state.receipts, *r)
	return nil
}

func (v *view) ListReceipts(_ context.Context) ([]warehouse.ReceiptRecord, error) {
	return reversed(v.state.receipts), nil
}

func (v *view) ListReceiptsByPart(_ context.Context, partID warehouse.PartID) ([]warehouse.ReceiptRecord, error) {
	var out []warehouse.ReceiptRecord
	for i := len(v.state.receipts) - 1; i >= 0; i-- {
		if v.state.receipts[i].PartID == partID {
			out = append(out, v.state.receipts[i])
		}
	}
	return out, nil
}

// =============================================================================
// SHIPMENT LEDGER
// =============================================================================

func (v *view) AppendShipment(_ context.Context, s *warehouse.ShipmentRecord) error {
	v.state.nextShipment++
	s.ID = v.state.nextShipment
	v.state.shipments = append(v.state.shipments, *s)
	return nil
}

func (v *view) ListShipments(_ context.Context) ([]warehouse.ShipmentRecord, error) {
	return reversed(v.state.shipments), nil
}

func (v *view) ListShipmentsByPart(_ context.Context, partID warehouse.PartID) ([]warehouse.ShipmentRecord, error) {
	var out []warehouse.ShipmentRecord
	for i := len(v.state.shipments) - 1; i >= 0; i-- {
		if v.state.shipments[i].PartID == partID {
			out = append(out, v.state.shipments[i])
		}
	}
	return out, nil
}

func (v *view) ListShipmentsByLine(_ context.Context, lineID warehouse.LineID) ([]warehouse.ShipmentRecord, error) {
	var out []warehouse.ShipmentRecord
	for i := len(v.state.shipments) - 1; i >= 0; i-- {
		id, ok := v.state.shipments[i].Line.LineID()
		if ok && id == lineID {
			out = append(out, v.state.shipments[i])
		}
	}
	return out, nil
}

// =============================================================================
// LINE SHIPMENT TRACKER
// =============================================================================

func (v *view) GetLineShipment(_ context.Context, lineID warehouse.LineID) (*warehouse.LineShipment, error) {
	ls, ok := v.state.lineShipments[lineID]
	if !ok {
		return nil, nil
	}
	return &ls, nil
}

func (v *view) SaveLineShipment(_ context.Context, ls *warehouse.LineShipment) error {
	if ls.ID == 0 {
		v.state.nextTracker++
		ls.ID = v.state.nextTracker
	}
	v.state.lineShipments[ls.LineID] = *ls
	return nil
}

// =============================================================================
// CORRECTION LEDGER
// =============================================================================

func (v *view) AppendCorrection(_ context.Context, c *warehouse.CorrectionRecord) error {
	v.state.nextCorrection++
	c.ID = v.state.nextCorrection
	v.state.corrections = append(v.state.corrections, *c)
	return nil
}

func (v *view) ListCorrections(_ context.Context) ([]warehouse.CorrectionRecord, error) {
	return reversed(v.state.corrections), nil
}

func (v *view) ListCorrectionsByPart(_ context.Context, partID warehouse.PartID) ([]warehouse.CorrectionRecord, error) {
	var out []warehouse.CorrectionRecord
	for i := len(v.state.corrections) - 1; i >= 0; i-- {
		c := v.state.corrections[i]
		if c.OldPartID == partID || c.NewPartID == partID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (v *view) LastCorrection(_ context.Context) (*warehouse.CorrectionRecord, error) {
	if len(v.state.corrections) == 0 {
		return nil, nil
	}
	c := v.state.corrections[len(v.state.corrections)-1]
	return &c, nil
}

func reversed[T any](in []T) []T {
	out := make([]T, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out = append(out, in[i])
	}
	return out
}

// =============================================================================
// LOCKED PASS-THROUGH - Memory's Store methods wrap view with the mutex
// =============================================================================

func (m *Memory) GetChapter(ctx context.Context, id warehouse.ChapterID) (*warehouse.Chapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).GetChapter(ctx, id)
}

func (m *Memory) ListChapters(ctx context.Context) ([]warehouse.Chapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListChapters(ctx)
}

func (m *Memory) SaveChapter(ctx context.Context, c *warehouse.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).SaveChapter(ctx, c)
}

func (m *Memory) DeleteChapter(ctx context.Context, id warehouse.ChapterID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).DeleteChapter(ctx, id)
}

func (m *Memory) GetPart(ctx context.Context, id warehouse.PartID) (*warehouse.Part, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).GetPart(ctx, id)
}

func (m *Memory) ListParts(ctx context.Context) ([]warehouse.Part, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListParts(ctx)
}

func (m *Memory) SavePart(ctx context.Context, p *warehouse.Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).SavePart(ctx, p)
}

func (m *Memory) GetKit(ctx context.Context, id warehouse.KitID) (*warehouse.Kit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).GetKit(ctx, id)
}

func (m *Memory) ListKits(ctx context.Context) ([]warehouse.Kit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListKits(ctx)
}

func (m *Memory) SaveKit(ctx context.Context, k *warehouse.Kit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).SaveKit(ctx, k)
}

func (m *Memory) DeleteKit(ctx context.Context, id warehouse.KitID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).DeleteKit(ctx, id)
}

func (m *Memory) UpdateKitStatus(ctx context.Context, id warehouse.KitID, status warehouse.KitStatus, fullyShippedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).UpdateKitStatus(ctx, id, status, fullyShippedAt)
}

func (m *Memory) GetLine(ctx context.Context, id warehouse.LineID) (*warehouse.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).GetLine(ctx, id)
}

func (m *Memory) GetStock(ctx context.Context, partID warehouse.PartID) (*warehouse.StockLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).GetStock(ctx, partID)
}

func (m *Memory) ListStock(ctx context.Context) ([]warehouse.StockLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListStock(ctx)
}

func (m *Memory) SaveStock(ctx context.Context, s *warehouse.StockLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).SaveStock(ctx, s)
}

func (m *Memory) AppendReceipt(ctx context.Context, r *warehouse.ReceiptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).AppendReceipt(ctx, r)
}

func (m *Memory) ListReceipts(ctx context.Context) ([]warehouse.ReceiptRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListReceipts(ctx)
}

func (m *Memory) ListReceiptsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.ReceiptRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListReceiptsByPart(ctx, partID)
}

func (m *Memory) AppendShipment(ctx context.Context, s *warehouse.ShipmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).AppendShipment(ctx, s)
}

func (m *Memory) ListShipments(ctx context.Context) ([]warehouse.ShipmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListShipments(ctx)
}

func (m *Memory) ListShipmentsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.ShipmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListShipmentsByPart(ctx, partID)
}

func (m *Memory) ListShipmentsByLine(ctx context.Context, lineID warehouse.LineID) ([]warehouse.ShipmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListShipmentsByLine(ctx, lineID)
}

func (m *Memory) GetLineShipment(ctx context.Context, lineID warehouse.LineID) (*warehouse.LineShipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).GetLineShipment(ctx, lineID)
}

func (m *Memory) SaveLineShipment(ctx context.Context, ls *warehouse.LineShipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).SaveLineShipment(ctx, ls)
}

func (m *Memory) AppendCorrection(ctx context.Context, c *warehouse.CorrectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&view{m.state}).AppendCorrection(ctx, c)
}

func (m *Memory) ListCorrections(ctx context.Context) ([]warehouse.CorrectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListCorrections(ctx)
}

func (m *Memory) ListCorrectionsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.CorrectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).ListCorrectionsByPart(ctx, partID)
}

func (m *Memory) LastCorrection(ctx context.Context) (*warehouse.CorrectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (&view{m.state}).LastCorrection(ctx)
}

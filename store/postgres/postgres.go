/*
Package postgres provides a PostgreSQL-backed implementation of
warehouse.TxStore using GORM.

PURPOSE:
  Production backend for multi-instance deployments. Models mirror the
  SQLite schema. Unlike the SQLite backend no process-level mutex is
  needed: inside WithTx the check-then-write reads (stock level, line
  tracker) take SELECT ... FOR UPDATE row locks, so instances racing on
  the same part serialize on the database row instead of both reading
  the same stale quantity.

APPEND-ONLY ENFORCEMENT:
  Ledger rows (receipts, shipments, corrections) are only ever created,
  never updated or deleted. Only warehouse_items and position_shipments
  rows are updated in place.

USAGE:
  st, err := postgres.New("host=localhost user=warehouse dbname=warehouse")
  if err != nil { ... }
  engine := warehouse.NewEngine(st)

SEE ALSO:
  - warehouse/store.go: Interface definitions
  - store/sqlite:       Embedded backend for single-node and tests
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/complectgroup/warehouse-engine/warehouse"
)

// =============================================================================
// MODELS
// =============================================================================

type chapterModel struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null"`
}

func (chapterModel) TableName() string { return "chapters" }

type partModel struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	ChapterID int    `gorm:"index;not null"`
}

func (partModel) TableName() string { return "parts" }

type kitModel struct {
	ID             int    `gorm:"primaryKey"`
	Number         string `gorm:"size:64;not null"`
	Manager        string `gorm:"size:255"`
	Address        string `gorm:"size:512"`
	Customer       string `gorm:"size:255"`
	ShippingTerms  string `gorm:"size:255"`
	ShippingDate   time.Time
	CreatedDate    time.Time
	TotalWeight    decimal.Decimal `gorm:"type:numeric(18,6);not null"`
	TotalVolume    decimal.Decimal `gorm:"type:numeric(18,6);not null"`
	Status         int             `gorm:"not null;default:0"`
	FullyShippedAt *time.Time
	Ignored        bool `gorm:"not null;default:false"`

	Lines []kitLineModel `gorm:"foreignKey:KitID;constraint:OnDelete:CASCADE"`
}

func (kitModel) TableName() string { return "kits" }

type kitLineModel struct {
	ID               int `gorm:"primaryKey"`
	KitID            int `gorm:"index;not null"`
	PartID           int `gorm:"index;not null"`
	RequiredQuantity int `gorm:"not null"`
}

func (kitLineModel) TableName() string { return "kit_lines" }

type warehouseItemModel struct {
	ID                int `gorm:"primaryKey"`
	PartID            int `gorm:"uniqueIndex;not null"`
	AvailableQuantity int `gorm:"not null;default:0;check:available_quantity >= 0"`
	ReservedQuantity  int `gorm:"not null;default:0;check:reserved_quantity >= 0"`
	LastModified      time.Time
}

func (warehouseItemModel) TableName() string { return "warehouse_items" }

type receiptModel struct {
	ID         int       `gorm:"primaryKey"`
	PartID     int       `gorm:"index;not null"`
	Quantity   int       `gorm:"not null;check:quantity > 0"`
	ReceivedAt time.Time `gorm:"index:,sort:desc"`
	Notes      string    `gorm:"size:512"`
}

func (receiptModel) TableName() string { return "receipt_transactions" }

type shipmentModel struct {
	ID        int       `gorm:"primaryKey"`
	PartID    int       `gorm:"index;not null"`
	LineID    *int      `gorm:"index"`
	Quantity  int       `gorm:"not null;check:quantity > 0"`
	ShippedAt time.Time `gorm:"index:,sort:desc"`
	Notes     string    `gorm:"size:512"`
}

func (shipmentModel) TableName() string { return "shipping_transactions" }

type lineShipmentModel struct {
	ID              int `gorm:"primaryKey"`
	LineID          int `gorm:"uniqueIndex;not null"`
	ShippedQuantity int `gorm:"not null;default:0"`
	FirstShippedAt  time.Time
	LastShippedAt   time.Time
}

func (lineShipmentModel) TableName() string { return "position_shipments" }

type correctionModel struct {
	ID               int    `gorm:"primaryKey"`
	CorrectionNumber string `gorm:"size:32;not null"`
	OldPartID        int    `gorm:"index;not null"`
	NewPartID        int    `gorm:"index;not null"`
	Quantity         int    `gorm:"not null;check:quantity > 0"`
	CorrectedAt      time.Time
	Notes            string `gorm:"size:512"`
	CreatedBy        string `gorm:"size:128;not null;default:'system'"`
}

func (correctionModel) TableName() string { return "correction_transactions" }

// =============================================================================
// CONVERSIONS
// =============================================================================

func toKit(m *kitModel) *warehouse.Kit {
	k := &warehouse.Kit{
		ID:             warehouse.KitID(m.ID),
		Number:         m.Number,
		Manager:        m.Manager,
		Address:        m.Address,
		Customer:       m.Customer,
		ShippingTerms:  m.ShippingTerms,
		ShippingDate:   m.ShippingDate,
		CreatedDate:    m.CreatedDate,
		TotalWeight:    m.TotalWeight,
		TotalVolume:    m.TotalVolume,
		Status:         warehouse.KitStatus(m.Status),
		FullyShippedAt: m.FullyShippedAt,
		Ignored:        m.Ignored,
	}
	for _, l := range m.Lines {
		k.Lines = append(k.Lines, toLine(&l))
	}
	return k
}

func toLine(m *kitLineModel) warehouse.Line {
	return warehouse.Line{
		ID:               warehouse.LineID(m.ID),
		KitID:            warehouse.KitID(m.KitID),
		PartID:           warehouse.PartID(m.PartID),
		RequiredQuantity: m.RequiredQuantity,
	}
}

func toStock(m *warehouseItemModel) *warehouse.StockLevel {
	return &warehouse.StockLevel{
		ID:                m.ID,
		PartID:            warehouse.PartID(m.PartID),
		AvailableQuantity: m.AvailableQuantity,
		ReservedQuantity:  m.ReservedQuantity,
		LastModified:      m.LastModified,
	}
}

func toShipment(m *shipmentModel) warehouse.ShipmentRecord {
	line := warehouse.Unassigned()
	if m.LineID != nil {
		line = warehouse.ForLine(warehouse.LineID(*m.LineID))
	}
	return warehouse.ShipmentRecord{
		ID:        m.ID,
		PartID:    warehouse.PartID(m.PartID),
		Line:      line,
		Quantity:  m.Quantity,
		ShippedAt: m.ShippedAt,
		Notes:     m.Notes,
	}
}

func toCorrection(m *correctionModel) warehouse.CorrectionRecord {
	return warehouse.CorrectionRecord{
		ID:               m.ID,
		CorrectionNumber: m.CorrectionNumber,
		OldPartID:        warehouse.PartID(m.OldPartID),
		NewPartID:        warehouse.PartID(m.NewPartID),
		Quantity:         m.Quantity,
		CorrectedAt:      m.CorrectedAt,
		Notes:            m.Notes,
		CreatedBy:        m.CreatedBy,
	}
}

// =============================================================================
// STORE
// =============================================================================

// Store implements warehouse.TxStore on PostgreSQL via GORM.
type Store struct {
	db   *gorm.DB
	inTx bool
}

var _ warehouse.TxStore = (*Store)(nil)

// New opens a PostgreSQL connection with the given DSN and migrates the
// schema.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.AutoMigrate(
		&chapterModel{},
		&partModel{},
		&kitModel{},
		&kitLineModel{},
		&warehouseItemModel{},
		&receiptModel{},
		&shipmentModel{},
		&lineShipmentModel{},
		&correctionModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// WithTx executes fn inside one database transaction. fn receives a Store
// bound to the transaction; any error rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(warehouse.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

// locking returns the query handle for reads that precede a write on the
// same row. Inside WithTx it adds SELECT ... FOR UPDATE so a second
// transaction reading the same stock row blocks until the first commits.
// Without the lock two concurrent shipments of the same part both read
// the old quantity and the later Save silently loses the earlier debit.
func (s *Store) locking(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if s.inTx {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// ----- Chapters -----

func (s *Store) GetChapter(ctx context.Context, id warehouse.ChapterID) (*warehouse.Chapter, error) {
	var m chapterModel
	err := s.db.WithContext(ctx).First(&m, int(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warehouse.Chapter{ID: warehouse.ChapterID(m.ID), Name: m.Name}, nil
}

func (s *Store) ListChapters(ctx context.Context) ([]warehouse.Chapter, error) {
	var ms []chapterModel
	if err := s.db.WithContext(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]warehouse.Chapter, 0, len(ms))
	for _, m := range ms {
		out = append(out, warehouse.Chapter{ID: warehouse.ChapterID(m.ID), Name: m.Name})
	}
	return out, nil
}

func (s *Store) SaveChapter(ctx context.Context, c *warehouse.Chapter) error {
	m := chapterModel{ID: int(c.ID), Name: c.Name}
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	c.ID = warehouse.ChapterID(m.ID)
	return nil
}

func (s *Store) DeleteChapter(ctx context.Context, id warehouse.ChapterID) error {
	return s.db.WithContext(ctx).Delete(&chapterModel{}, int(id)).Error
}

// ----- Parts -----

func (s *Store) GetPart(ctx context.Context, id warehouse.PartID) (*warehouse.Part, error) {
	var m partModel
	err := s.db.WithContext(ctx).First(&m, int(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warehouse.Part{ID: warehouse.PartID(m.ID), Name: m.Name, ChapterID: warehouse.ChapterID(m.ChapterID)}, nil
}

func (s *Store) ListParts(ctx context.Context) ([]warehouse.Part, error) {
	var ms []partModel
	if err := s.db.WithContext(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]warehouse.Part, 0, len(ms))
	for _, m := range ms {
		out = append(out, warehouse.Part{ID: warehouse.PartID(m.ID), Name: m.Name, ChapterID: warehouse.ChapterID(m.ChapterID)})
	}
	return out, nil
}

func (s *Store) SavePart(ctx context.Context, p *warehouse.Part) error {
	m := partModel{ID: int(p.ID), Name: p.Name, ChapterID: int(p.ChapterID)}
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	p.ID = warehouse.PartID(m.ID)
	return nil
}

// ----- Kits and lines -----

func (s *Store) GetKit(ctx context.Context, id warehouse.KitID) (*warehouse.Kit, error) {
	var m kitModel
	err := s.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("kit_lines.id")
	}).First(&m, int(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toKit(&m), nil
}

func (s *Store) ListKits(ctx context.Context) ([]warehouse.Kit, error) {
	var ms []kitModel
	err := s.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("kit_lines.id")
	}).Order("id").Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]warehouse.Kit, 0, len(ms))
	for i := range ms {
		out = append(out, *toKit(&ms[i]))
	}
	return out, nil
}

func (s *Store) SaveKit(ctx context.Context, k *warehouse.Kit) error {
	db := s.db.WithContext(ctx)

	m := kitModel{
		ID:             int(k.ID),
		Number:         k.Number,
		Manager:        k.Manager,
		Address:        k.Address,
		Customer:       k.Customer,
		ShippingTerms:  k.ShippingTerms,
		ShippingDate:   k.ShippingDate,
		CreatedDate:    k.CreatedDate,
		TotalWeight:    k.TotalWeight,
		TotalVolume:    k.TotalVolume,
		Status:         int(k.Status),
		FullyShippedAt: k.FullyShippedAt,
		Ignored:        k.Ignored,
	}
	if err := db.Omit("Lines").Save(&m).Error; err != nil {
		return err
	}
	k.ID = warehouse.KitID(m.ID)

	// Reconcile lines by hand so IDs of surviving lines stay stable; the
	// shipment ledger references them.
	var existing []kitLineModel
	if err := db.Where("kit_id = ?", m.ID).Find(&existing).Error; err != nil {
		return err
	}

	keep := make(map[int]bool, len(k.Lines))
	for i := range k.Lines {
		line := &k.Lines[i]
		line.KitID = k.ID
		lm := kitLineModel{
			ID:               int(line.ID),
			KitID:            m.ID,
			PartID:           int(line.PartID),
			RequiredQuantity: line.RequiredQuantity,
		}
		if err := db.Save(&lm).Error; err != nil {
			return err
		}
		line.ID = warehouse.LineID(lm.ID)
		keep[lm.ID] = true
	}

	for _, l := range existing {
		if !keep[l.ID] {
			if err := db.Delete(&kitLineModel{}, l.ID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) DeleteKit(ctx context.Context, id warehouse.KitID) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("kit_id = ?", int(id)).Delete(&kitLineModel{}).Error; err != nil {
		return err
	}
	return db.Delete(&kitModel{}, int(id)).Error
}

func (s *Store) UpdateKitStatus(ctx context.Context, id warehouse.KitID, status warehouse.KitStatus, fullyShippedAt *time.Time) error {
	res := s.db.WithContext(ctx).Model(&kitModel{}).Where("id = ?", int(id)).
		Updates(map[string]any{
			"status":           int(status),
			"fully_shipped_at": fullyShippedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return warehouse.ErrKitNotFound
	}
	return nil
}

func (s *Store) GetLine(ctx context.Context, id warehouse.LineID) (*warehouse.Line, error) {
	var m kitLineModel
	err := s.db.WithContext(ctx).First(&m, int(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l := toLine(&m)
	return &l, nil
}

// ----- Stock -----

func (s *Store) GetStock(ctx context.Context, partID warehouse.PartID) (*warehouse.StockLevel, error) {
	var m warehouseItemModel
	err := s.locking(ctx).Where("part_id = ?", int(partID)).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toStock(&m), nil
}

func (s *Store) ListStock(ctx context.Context) ([]warehouse.StockLevel, error) {
	var ms []warehouseItemModel
	if err := s.db.WithContext(ctx).Order("part_id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]warehouse.StockLevel, 0, len(ms))
	for i := range ms {
		out = append(out, *toStock(&ms[i]))
	}
	return out, nil
}

func (s *Store) SaveStock(ctx context.Context, st *warehouse.StockLevel) error {
	m := warehouseItemModel{
		ID:                st.ID,
		PartID:            int(st.PartID),
		AvailableQuantity: st.AvailableQuantity,
		ReservedQuantity:  st.ReservedQuantity,
		LastModified:      st.LastModified,
	}
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	st.ID = m.ID
	return nil
}

// ----- Receipt ledger -----

func (s *Store) AppendReceipt(ctx context.Context, r *warehouse.ReceiptRecord) error {
	m := receiptModel{
		PartID:     int(r.PartID),
		Quantity:   r.Quantity,
		ReceivedAt: r.ReceivedAt,
		Notes:      r.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	r.ID = m.ID
	return nil
}

func (s *Store) listReceipts(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]warehouse.ReceiptRecord, error) {
	var ms []receiptModel
	db := s.db.WithContext(ctx).Order("received_at DESC, id DESC")
	if scope != nil {
		db = scope(db)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]warehouse.ReceiptRecord, 0, len(ms))
	for _, m := range ms {
		out = append(out, warehouse.ReceiptRecord{
			ID:         m.ID,
			PartID:     warehouse.PartID(m.PartID),
			Quantity:   m.Quantity,
			ReceivedAt: m.ReceivedAt,
			Notes:      m.Notes,
		})
	}
	return out, nil
}

func (s *Store) ListReceipts(ctx context.Context) ([]warehouse.ReceiptRecord, error) {
	return s.listReceipts(ctx, nil)
}

func (s *Store) ListReceiptsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.ReceiptRecord, error) {
	return s.listReceipts(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("part_id = ?", int(partID))
	})
}

// ----- Shipment ledger -----

func (s *Store) AppendShipment(ctx context.Context, sh *warehouse.ShipmentRecord) error {
	m := shipmentModel{
		PartID:    int(sh.PartID),
		Quantity:  sh.Quantity,
		ShippedAt: sh.ShippedAt,
		Notes:     sh.Notes,
	}
	if id, ok := sh.Line.LineID(); ok {
		lid := int(id)
		m.LineID = &lid
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	sh.ID = m.ID
	return nil
}

func (s *Store) listShipments(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]warehouse.ShipmentRecord, error) {
	var ms []shipmentModel
	db := s.db.WithContext(ctx).Order("shipped_at DESC, id DESC")
	if scope != nil {
		db = scope(db)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]warehouse.ShipmentRecord, 0, len(ms))
	for i := range ms {
		out = append(out, toShipment(&ms[i]))
	}
	return out, nil
}

func (s *Store) ListShipments(ctx context.Context) ([]warehouse.ShipmentRecord, error) {
	return s.listShipments(ctx, nil)
}

func (s *Store) ListShipmentsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.ShipmentRecord, error) {
	return s.listShipments(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("part_id = ?", int(partID))
	})
}

func (s *Store) ListShipmentsByLine(ctx context.Context, lineID warehouse.LineID) ([]warehouse.ShipmentRecord, error) {
	return s.listShipments(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("line_id = ?", int(lineID))
	})
}

// ----- Line shipment tracker -----

func (s *Store) GetLineShipment(ctx context.Context, lineID warehouse.LineID) (*warehouse.LineShipment, error) {
	var m lineShipmentModel
	err := s.locking(ctx).Where("line_id = ?", int(lineID)).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warehouse.LineShipment{
		ID:              m.ID,
		LineID:          warehouse.LineID(m.LineID),
		ShippedQuantity: m.ShippedQuantity,
		FirstShippedAt:  m.FirstShippedAt,
		LastShippedAt:   m.LastShippedAt,
	}, nil
}

func (s *Store) SaveLineShipment(ctx context.Context, ls *warehouse.LineShipment) error {
	m := lineShipmentModel{
		ID:              ls.ID,
		LineID:          int(ls.LineID),
		ShippedQuantity: ls.ShippedQuantity,
		FirstShippedAt:  ls.FirstShippedAt,
		LastShippedAt:   ls.LastShippedAt,
	}
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	ls.ID = m.ID
	return nil
}

// ----- Correction ledger -----

func (s *Store) AppendCorrection(ctx context.Context, c *warehouse.CorrectionRecord) error {
	m := correctionModel{
		CorrectionNumber: c.CorrectionNumber,
		OldPartID:        int(c.OldPartID),
		NewPartID:        int(c.NewPartID),
		Quantity:         c.Quantity,
		CorrectedAt:      c.CorrectedAt,
		Notes:            c.Notes,
		CreatedBy:        c.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	c.ID = m.ID
	return nil
}

func (s *Store) listCorrections(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]warehouse.CorrectionRecord, error) {
	var ms []correctionModel
	db := s.db.WithContext(ctx).Order("corrected_at DESC, id DESC")
	if scope != nil {
		db = scope(db)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]warehouse.CorrectionRecord, 0, len(ms))
	for i := range ms {
		out = append(out, toCorrection(&ms[i]))
	}
	return out, nil
}

func (s *Store) ListCorrections(ctx context.Context) ([]warehouse.CorrectionRecord, error) {
	return s.listCorrections(ctx, nil)
}

func (s *Store) ListCorrectionsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.CorrectionRecord, error) {
	return s.listCorrections(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("old_part_id = ? OR new_part_id = ?", int(partID), int(partID))
	})
}

func (s *Store) LastCorrection(ctx context.Context) (*warehouse.CorrectionRecord, error) {
	var m correctionModel
	err := s.db.WithContext(ctx).Order("id DESC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := toCorrection(&m)
	return &c, nil
}

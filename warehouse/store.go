/*
store.go - Persistence contract for the warehouse engine

PURPOSE:
  Defines the interface between the engine and the database. Different
  implementations can use SQLite, PostgreSQL, or in-memory storage.

APPEND-ONLY CONTRACT:
  The ledger tables (receipts, shipments, corrections) are append-only:
  - Append*(): assigns the record ID and persists it
  - NO update or delete methods exist for ledger records
  StockLevel rows and LineShipment rows are the only mutable aggregates.

ABSENT vs ERROR:
  Single-record getters return (nil, nil) when the record does not exist.
  The engine decides whether absence is an error (e.g. ErrPartNotFound).

ORDERING:
  History listings return newest-first by their timestamp field.

ATOMIC UNITS:
  Every engine operation that touches both the stock table and a ledger
  runs inside WithTx. Either all its reads-then-writes commit together,
  or none do. This is the load-bearing invariant of the whole design:
  without it a crash between "debit stock" and "append shipment record"
  silently desynchronizes stock from the ledger's implied total.

IMPLEMENTATIONS:
  - warehouse/store:  In-memory, snapshot rollback (tests/dev)
  - store/sqlite:     SQLite via database/sql
  - store/postgres:   PostgreSQL via gorm

SEE ALSO:
  - engine.go: The only writer of stock and ledger state
*/
package warehouse

import (
	"context"
	"time"
)

// Store is the persistence contract consumed by the engine and the catalog.
type Store interface {
	// ----- Catalog: chapters -----

	// GetChapter returns (nil, nil) when absent.
	GetChapter(ctx context.Context, id ChapterID) (*Chapter, error)
	ListChapters(ctx context.Context) ([]Chapter, error)
	// SaveChapter creates (ID == 0, assigns the ID) or updates.
	SaveChapter(ctx context.Context, c *Chapter) error
	DeleteChapter(ctx context.Context, id ChapterID) error

	// ----- Catalog: parts -----

	// GetPart returns (nil, nil) when absent.
	GetPart(ctx context.Context, id PartID) (*Part, error)
	ListParts(ctx context.Context) ([]Part, error)
	// SavePart creates (ID == 0, assigns the ID) or updates.
	SavePart(ctx context.Context, p *Part) error

	// ----- Catalog: kits and lines -----

	// GetKit returns the kit with its lines, or (nil, nil) when absent.
	GetKit(ctx context.Context, id KitID) (*Kit, error)
	ListKits(ctx context.Context) ([]Kit, error)
	// SaveKit creates or updates the kit header and reconciles its lines:
	// lines with ID == 0 are inserted, existing lines are updated, and
	// stored lines missing from kit.Lines are removed.
	SaveKit(ctx context.Context, k *Kit) error
	DeleteKit(ctx context.Context, id KitID) error
	// UpdateKitStatus changes only the status and fully-shipped timestamp.
	UpdateKitStatus(ctx context.Context, id KitID, status KitStatus, fullyShippedAt *time.Time) error
	// GetLine returns (nil, nil) when absent.
	GetLine(ctx context.Context, id LineID) (*Line, error)

	// ----- Stock -----

	// GetStock returns (nil, nil) when the part has never been received.
	GetStock(ctx context.Context, partID PartID) (*StockLevel, error)
	ListStock(ctx context.Context) ([]StockLevel, error)
	// SaveStock creates (ID == 0) or updates the per-part row.
	SaveStock(ctx context.Context, s *StockLevel) error

	// ----- Receipt ledger (append-only) -----

	AppendReceipt(ctx context.Context, r *ReceiptRecord) error
	ListReceipts(ctx context.Context) ([]ReceiptRecord, error)
	ListReceiptsByPart(ctx context.Context, partID PartID) ([]ReceiptRecord, error)

	// ----- Shipment ledger (append-only) -----

	AppendShipment(ctx context.Context, s *ShipmentRecord) error
	ListShipments(ctx context.Context) ([]ShipmentRecord, error)
	ListShipmentsByPart(ctx context.Context, partID PartID) ([]ShipmentRecord, error)
	ListShipmentsByLine(ctx context.Context, lineID LineID) ([]ShipmentRecord, error)

	// ----- Line shipment tracker -----

	// GetLineShipment returns (nil, nil) before the first shipment.
	GetLineShipment(ctx context.Context, lineID LineID) (*LineShipment, error)
	// SaveLineShipment creates (ID == 0) or updates the per-line row.
	SaveLineShipment(ctx context.Context, ls *LineShipment) error

	// ----- Correction ledger (append-only) -----

	AppendCorrection(ctx context.Context, c *CorrectionRecord) error
	ListCorrections(ctx context.Context) ([]CorrectionRecord, error)
	ListCorrectionsByPart(ctx context.Context, partID PartID) ([]CorrectionRecord, error)
	// LastCorrection returns the most recently created correction by ID,
	// or (nil, nil) when the ledger is empty.
	LastCorrection(ctx context.Context) (*CorrectionRecord, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, every write made through its Store argument
	// is rolled back. If fn returns nil, all writes commit together.
	WithTx(ctx context.Context, fn func(Store) error) error
}

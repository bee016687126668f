/*
Package sqlite provides a SQLite-backed implementation of warehouse.TxStore.

PURPOSE:
  Implements the full persistence contract using SQLite. In production,
  the same patterns apply to PostgreSQL - see store/postgres for that
  backend.

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statements exist for the ledger tables
  (receipt_transactions, shipping_transactions, correction_transactions).
  Only warehouse_items and position_shipments are ever updated.

KEY TABLES:
  chapters, parts:          Catalog reference data
  kits, kit_lines:          Shippable kits and their required-part lines
  warehouse_items:          Current stock per part (CHECK available >= 0)
  receipt_transactions:     Immutable inflow ledger
  shipping_transactions:    Immutable outflow ledger (nullable line_id)
  position_shipments:       Cached running total per kit line
  correction_transactions:  Immutable misallocation audit trail

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode; WithTx holds the
  write lock for the duration of the SQL transaction, so a stock
  check-and-debit can never interleave with another writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, single writer at a time, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/warehouse.db")  // ":memory:" for tests
  if err != nil { ... }
  defer st.Close()
  engine := warehouse.NewEngine(st)

SEE ALSO:
  - warehouse/store.go: Interface definitions
  - store/postgres:     PostgreSQL backend (gorm)
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/complectgroup/warehouse-engine/warehouse"
)

// Store implements warehouse.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
	q  queries
}

var _ warehouse.TxStore = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases alive and sidesteps
	// SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	s.q = queries{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Catalog
	CREATE TABLE IF NOT EXISTS chapters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS parts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		chapter_id INTEGER NOT NULL REFERENCES chapters(id)
	);

	CREATE INDEX IF NOT EXISTS idx_parts_chapter ON parts(chapter_id);

	CREATE TABLE IF NOT EXISTS kits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		number TEXT NOT NULL,
		manager TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		customer TEXT NOT NULL DEFAULT '',
		shipping_terms TEXT NOT NULL DEFAULT '',
		shipping_date TEXT NOT NULL DEFAULT '',
		created_date TEXT NOT NULL DEFAULT '',
		total_weight TEXT NOT NULL DEFAULT '0',
		total_volume TEXT NOT NULL DEFAULT '0',
		status INTEGER NOT NULL DEFAULT 0,
		fully_shipped_at TEXT,
		ignored INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS kit_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kit_id INTEGER NOT NULL REFERENCES kits(id) ON DELETE CASCADE,
		part_id INTEGER NOT NULL REFERENCES parts(id),
		required_quantity INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_kit_lines_kit ON kit_lines(kit_id);

	-- Stock (mutable, one row per part)
	CREATE TABLE IF NOT EXISTS warehouse_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		part_id INTEGER NOT NULL UNIQUE REFERENCES parts(id),
		available_quantity INTEGER NOT NULL DEFAULT 0 CHECK (available_quantity >= 0),
		reserved_quantity INTEGER NOT NULL DEFAULT 0 CHECK (reserved_quantity >= 0),
		last_modified TEXT NOT NULL
	);

	-- Receipt ledger (append-only)
	CREATE TABLE IF NOT EXISTS receipt_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		part_id INTEGER NOT NULL REFERENCES parts(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		received_at TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_receipts_part ON receipt_transactions(part_id);
	CREATE INDEX IF NOT EXISTS idx_receipts_received_at ON receipt_transactions(received_at DESC);

	-- Shipment ledger (append-only); line_id NULL = unassigned shipment
	CREATE TABLE IF NOT EXISTS shipping_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		part_id INTEGER NOT NULL REFERENCES parts(id),
		line_id INTEGER REFERENCES kit_lines(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		shipped_at TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_shipments_part ON shipping_transactions(part_id);
	CREATE INDEX IF NOT EXISTS idx_shipments_line ON shipping_transactions(line_id) WHERE line_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_shipments_shipped_at ON shipping_transactions(shipped_at DESC);

	-- Cached running total per kit line
	CREATE TABLE IF NOT EXISTS position_shipments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		line_id INTEGER NOT NULL UNIQUE REFERENCES kit_lines(id),
		shipped_quantity INTEGER NOT NULL DEFAULT 0,
		first_shipped_at TEXT NOT NULL,
		last_shipped_at TEXT NOT NULL
	);

	-- Correction ledger (append-only)
	CREATE TABLE IF NOT EXISTS correction_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		correction_number TEXT NOT NULL,
		old_part_id INTEGER NOT NULL REFERENCES parts(id),
		new_part_id INTEGER NOT NULL REFERENCES parts(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		corrected_at TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT 'system'
	);

	CREATE INDEX IF NOT EXISTS idx_corrections_old_part ON correction_transactions(old_part_id);
	CREATE INDEX IF NOT EXISTS idx_corrections_new_part ON correction_transactions(new_part_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn inside one SQL transaction. The write lock is held
// throughout so check-and-debit sequences never interleave with another
// writer.
func (s *Store) WithTx(ctx context.Context, fn func(warehouse.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// LOCKED PASS-THROUGH - Store methods outside a transaction
// =============================================================================

func (s *Store) GetChapter(ctx context.Context, id warehouse.ChapterID) (*warehouse.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.GetChapter(ctx, id)
}

func (s *Store) ListChapters(ctx context.Context) ([]warehouse.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListChapters(ctx)
}

func (s *Store) SaveChapter(ctx context.Context, c *warehouse.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SaveChapter(ctx, c)
}

func (s *Store) DeleteChapter(ctx context.Context, id warehouse.ChapterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.DeleteChapter(ctx, id)
}

func (s *Store) GetPart(ctx context.Context, id warehouse.PartID) (*warehouse.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.GetPart(ctx, id)
}

func (s *Store) ListParts(ctx context.Context) ([]warehouse.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListParts(ctx)
}

func (s *Store) SavePart(ctx context.Context, p *warehouse.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SavePart(ctx, p)
}

func (s *Store) GetKit(ctx context.Context, id warehouse.KitID) (*warehouse.Kit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.GetKit(ctx, id)
}

func (s *Store) ListKits(ctx context.Context) ([]warehouse.Kit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListKits(ctx)
}

func (s *Store) SaveKit(ctx context.Context, k *warehouse.Kit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SaveKit(ctx, k)
}

func (s *Store) DeleteKit(ctx context.Context, id warehouse.KitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.DeleteKit(ctx, id)
}

func (s *Store) UpdateKitStatus(ctx context.Context, id warehouse.KitID, status warehouse.KitStatus, fullyShippedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.UpdateKitStatus(ctx, id, status, fullyShippedAt)
}

func (s *Store) GetLine(ctx context.Context, id warehouse.LineID) (*warehouse.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.GetLine(ctx, id)
}

func (s *Store) GetStock(ctx context.Context, partID warehouse.PartID) (*warehouse.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.GetStock(ctx, partID)
}

func (s *Store) ListStock(ctx context.Context) ([]warehouse.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListStock(ctx)
}

func (s *Store) SaveStock(ctx context.Context, st *warehouse.StockLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SaveStock(ctx, st)
}

func (s *Store) AppendReceipt(ctx context.Context, r *warehouse.ReceiptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.AppendReceipt(ctx, r)
}

func (s *Store) ListReceipts(ctx context.Context) ([]warehouse.ReceiptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListReceipts(ctx)
}

func (s *Store) ListReceiptsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.ReceiptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListReceiptsByPart(ctx, partID)
}

func (s *Store) AppendShipment(ctx context.Context, sh *warehouse.ShipmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.AppendShipment(ctx, sh)
}

func (s *Store) ListShipments(ctx context.Context) ([]warehouse.ShipmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListShipments(ctx)
}

func (s *Store) ListShipmentsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.ShipmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListShipmentsByPart(ctx, partID)
}

func (s *Store) ListShipmentsByLine(ctx context.Context, lineID warehouse.LineID) ([]warehouse.ShipmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListShipmentsByLine(ctx, lineID)
}

func (s *Store) GetLineShipment(ctx context.Context, lineID warehouse.LineID) (*warehouse.LineShipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.GetLineShipment(ctx, lineID)
}

func (s *Store) SaveLineShipment(ctx context.Context, ls *warehouse.LineShipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SaveLineShipment(ctx, ls)
}

func (s *Store) AppendCorrection(ctx context.Context, c *warehouse.CorrectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.AppendCorrection(ctx, c)
}

func (s *Store) ListCorrections(ctx context.Context) ([]warehouse.CorrectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListCorrections(ctx)
}

func (s *Store) ListCorrectionsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.CorrectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListCorrectionsByPart(ctx, partID)
}

func (s *Store) LastCorrection(ctx context.Context) (*warehouse.CorrectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.LastCorrection(ctx)
}

// =============================================================================
// QUERIES - warehouse.Store over either *sql.DB or *sql.Tx
// =============================================================================

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

func nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// ----- Chapters -----

func (q *queries) GetChapter(ctx context.Context, id warehouse.ChapterID) (*warehouse.Chapter, error) {
	var c warehouse.Chapter
	err := q.db.QueryRowContext(ctx, `SELECT id, name FROM chapters WHERE id = ?`, id).
		Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chapter: %w", err)
	}
	return &c, nil
}

func (q *queries) ListChapters(ctx context.Context) ([]warehouse.Chapter, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM chapters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var out []warehouse.Chapter
	for rows.Next() {
		var c warehouse.Chapter
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *queries) SaveChapter(ctx context.Context, c *warehouse.Chapter) error {
	if c.ID == 0 {
		res, err := q.db.ExecContext(ctx, `INSERT INTO chapters (name) VALUES (?)`, c.Name)
		if err != nil {
			return fmt.Errorf("failed to insert chapter: %w", err)
		}
		id, _ := res.LastInsertId()
		c.ID = warehouse.ChapterID(id)
		return nil
	}
	_, err := q.db.ExecContext(ctx, `UPDATE chapters SET name = ? WHERE id = ?`, c.Name, c.ID)
	return err
}

func (q *queries) DeleteChapter(ctx context.Context, id warehouse.ChapterID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM chapters WHERE id = ?`, id)
	return err
}

// ----- Parts -----

func (q *queries) GetPart(ctx context.Context, id warehouse.PartID) (*warehouse.Part, error) {
	var p warehouse.Part
	err := q.db.QueryRowContext(ctx, `SELECT id, name, chapter_id FROM parts WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.ChapterID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load part: %w", err)
	}
	return &p, nil
}

func (q *queries) ListParts(ctx context.Context) ([]warehouse.Part, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, chapter_id FROM parts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	var out []warehouse.Part
	for rows.Next() {
		var p warehouse.Part
		if err := rows.Scan(&p.ID, &p.Name, &p.ChapterID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *queries) SavePart(ctx context.Context, p *warehouse.Part) error {
	if p.ID == 0 {
		res, err := q.db.ExecContext(ctx,
			`INSERT INTO parts (name, chapter_id) VALUES (?, ?)`, p.Name, p.ChapterID)
		if err != nil {
			return fmt.Errorf("failed to insert part: %w", err)
		}
		id, _ := res.LastInsertId()
		p.ID = warehouse.PartID(id)
		return nil
	}
	_, err := q.db.ExecContext(ctx,
		`UPDATE parts SET name = ?, chapter_id = ? WHERE id = ?`, p.Name, p.ChapterID, p.ID)
	return err
}

// ----- Kits and lines -----

const kitColumns = `id, number, manager, address, customer, shipping_terms,
	shipping_date, created_date, total_weight, total_volume, status,
	fully_shipped_at, ignored`

func scanKit(row interface{ Scan(...any) error }) (*warehouse.Kit, error) {
	var (
		k              warehouse.Kit
		shippingDate   string
		createdDate    string
		weight, volume string
		fullyShipped   sql.NullString
	)
	err := row.Scan(&k.ID, &k.Number, &k.Manager, &k.Address, &k.Customer,
		&k.ShippingTerms, &shippingDate, &createdDate, &weight, &volume,
		&k.Status, &fullyShipped, &k.Ignored)
	if err != nil {
		return nil, err
	}
	k.ShippingDate = parseTime(shippingDate)
	k.CreatedDate = parseTime(createdDate)
	k.TotalWeight, _ = decimal.NewFromString(weight)
	k.TotalVolume, _ = decimal.NewFromString(volume)
	if fullyShipped.Valid {
		t := parseTime(fullyShipped.String)
		k.FullyShippedAt = &t
	}
	return &k, nil
}

func (q *queries) loadLines(ctx context.Context, kitID warehouse.KitID) ([]warehouse.Line, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, kit_id, part_id, required_quantity FROM kit_lines WHERE kit_id = ? ORDER BY id`, kitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load kit lines: %w", err)
	}
	defer rows.Close()

	var out []warehouse.Line
	for rows.Next() {
		var l warehouse.Line
		if err := rows.Scan(&l.ID, &l.KitID, &l.PartID, &l.RequiredQuantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (q *queries) GetKit(ctx context.Context, id warehouse.KitID) (*warehouse.Kit, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+kitColumns+` FROM kits WHERE id = ?`, id)
	k, err := scanKit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load kit: %w", err)
	}
	if k.Lines, err = q.loadLines(ctx, k.ID); err != nil {
		return nil, err
	}
	return k, nil
}

func (q *queries) ListKits(ctx context.Context) ([]warehouse.Kit, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+kitColumns+` FROM kits ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list kits: %w", err)
	}
	defer rows.Close()

	var out []warehouse.Kit
	for rows.Next() {
		k, err := scanKit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	for i := range out {
		if out[i].Lines, err = q.loadLines(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (q *queries) SaveKit(ctx context.Context, k *warehouse.Kit) error {
	if k.ID == 0 {
		res, err := q.db.ExecContext(ctx, `
			INSERT INTO kits (number, manager, address, customer, shipping_terms,
				shipping_date, created_date, total_weight, total_volume, status,
				fully_shipped_at, ignored)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			k.Number, k.Manager, k.Address, k.Customer, k.ShippingTerms,
			formatTime(k.ShippingDate), formatTime(k.CreatedDate),
			k.TotalWeight.String(), k.TotalVolume.String(), k.Status,
			nullTimeArg(k.FullyShippedAt), k.Ignored)
		if err != nil {
			return fmt.Errorf("failed to insert kit: %w", err)
		}
		id, _ := res.LastInsertId()
		k.ID = warehouse.KitID(id)
	} else {
		_, err := q.db.ExecContext(ctx, `
			UPDATE kits SET number = ?, manager = ?, address = ?, customer = ?,
				shipping_terms = ?, shipping_date = ?, created_date = ?,
				total_weight = ?, total_volume = ?, status = ?,
				fully_shipped_at = ?, ignored = ?
			WHERE id = ?`,
			k.Number, k.Manager, k.Address, k.Customer, k.ShippingTerms,
			formatTime(k.ShippingDate), formatTime(k.CreatedDate),
			k.TotalWeight.String(), k.TotalVolume.String(), k.Status,
			nullTimeArg(k.FullyShippedAt), k.Ignored, k.ID)
		if err != nil {
			return fmt.Errorf("failed to update kit: %w", err)
		}
	}

	return q.reconcileLines(ctx, k)
}

// reconcileLines inserts new lines, updates existing ones, and removes
// stored lines missing from kit.Lines. Kept line IDs are stable: the
// shipment ledger references them.
func (q *queries) reconcileLines(ctx context.Context, k *warehouse.Kit) error {
	existing, err := q.loadLines(ctx, k.ID)
	if err != nil {
		return err
	}

	keep := make(map[warehouse.LineID]bool, len(k.Lines))
	for i := range k.Lines {
		line := &k.Lines[i]
		line.KitID = k.ID
		if line.ID == 0 {
			res, err := q.db.ExecContext(ctx,
				`INSERT INTO kit_lines (kit_id, part_id, required_quantity) VALUES (?, ?, ?)`,
				line.KitID, line.PartID, line.RequiredQuantity)
			if err != nil {
				return fmt.Errorf("failed to insert kit line: %w", err)
			}
			id, _ := res.LastInsertId()
			line.ID = warehouse.LineID(id)
		} else {
			_, err := q.db.ExecContext(ctx,
				`UPDATE kit_lines SET part_id = ?, required_quantity = ? WHERE id = ? AND kit_id = ?`,
				line.PartID, line.RequiredQuantity, line.ID, line.KitID)
			if err != nil {
				return fmt.Errorf("failed to update kit line: %w", err)
			}
		}
		keep[line.ID] = true
	}

	for _, l := range existing {
		if !keep[l.ID] {
			if _, err := q.db.ExecContext(ctx, `DELETE FROM kit_lines WHERE id = ?`, l.ID); err != nil {
				return fmt.Errorf("failed to delete kit line: %w", err)
			}
		}
	}
	return nil
}

func (q *queries) DeleteKit(ctx context.Context, id warehouse.KitID) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM kit_lines WHERE kit_id = ?`, id); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, `DELETE FROM kits WHERE id = ?`, id)
	return err
}

func (q *queries) UpdateKitStatus(ctx context.Context, id warehouse.KitID, status warehouse.KitStatus, fullyShippedAt *time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE kits SET status = ?, fully_shipped_at = ? WHERE id = ?`,
		status, nullTimeArg(fullyShippedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update kit status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return warehouse.ErrKitNotFound
	}
	return nil
}

func (q *queries) GetLine(ctx context.Context, id warehouse.LineID) (*warehouse.Line, error) {
	var l warehouse.Line
	err := q.db.QueryRowContext(ctx,
		`SELECT id, kit_id, part_id, required_quantity FROM kit_lines WHERE id = ?`, id).
		Scan(&l.ID, &l.KitID, &l.PartID, &l.RequiredQuantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load kit line: %w", err)
	}
	return &l, nil
}

// ----- Stock -----

func (q *queries) GetStock(ctx context.Context, partID warehouse.PartID) (*warehouse.StockLevel, error) {
	var (
		s            warehouse.StockLevel
		lastModified string
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT id, part_id, available_quantity, reserved_quantity, last_modified
		FROM warehouse_items WHERE part_id = ?`, partID).
		Scan(&s.ID, &s.PartID, &s.AvailableQuantity, &s.ReservedQuantity, &lastModified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stock: %w", err)
	}
	s.LastModified = parseTime(lastModified)
	return &s, nil
}

func (q *queries) ListStock(ctx context.Context) ([]warehouse.StockLevel, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, part_id, available_quantity, reserved_quantity, last_modified
		FROM warehouse_items ORDER BY part_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	defer rows.Close()

	var out []warehouse.StockLevel
	for rows.Next() {
		var (
			s            warehouse.StockLevel
			lastModified string
		)
		if err := rows.Scan(&s.ID, &s.PartID, &s.AvailableQuantity, &s.ReservedQuantity, &lastModified); err != nil {
			return nil, err
		}
		s.LastModified = parseTime(lastModified)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *queries) SaveStock(ctx context.Context, s *warehouse.StockLevel) error {
	if s.ID == 0 {
		res, err := q.db.ExecContext(ctx, `
			INSERT INTO warehouse_items (part_id, available_quantity, reserved_quantity, last_modified)
			VALUES (?, ?, ?, ?)`,
			s.PartID, s.AvailableQuantity, s.ReservedQuantity, formatTime(s.LastModified))
		if err != nil {
			return fmt.Errorf("failed to insert stock: %w", err)
		}
		id, _ := res.LastInsertId()
		s.ID = int(id)
		return nil
	}
	_, err := q.db.ExecContext(ctx, `
		UPDATE warehouse_items
		SET available_quantity = ?, reserved_quantity = ?, last_modified = ?
		WHERE id = ?`,
		s.AvailableQuantity, s.ReservedQuantity, formatTime(s.LastModified), s.ID)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

// ----- Receipt ledger -----

func (q *queries) AppendReceipt(ctx context.Context, r *warehouse.ReceiptRecord) error {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO receipt_transactions (part_id, quantity, received_at, notes)
		VALUES (?, ?, ?, ?)`,
		r.PartID, r.Quantity, formatTime(r.ReceivedAt), r.Notes)
	if err != nil {
		return fmt.Errorf("failed to append receipt: %w", err)
	}
	id, _ := res.LastInsertId()
	r.ID = int(id)
	return nil
}

func (q *queries) queryReceipts(ctx context.Context, query string, args ...any) ([]warehouse.ReceiptRecord, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var out []warehouse.ReceiptRecord
	for rows.Next() {
		var (
			r          warehouse.ReceiptRecord
			receivedAt string
		)
		if err := rows.Scan(&r.ID, &r.PartID, &r.Quantity, &receivedAt, &r.Notes); err != nil {
			return nil, err
		}
		r.ReceivedAt = parseTime(receivedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *queries) ListReceipts(ctx context.Context) ([]warehouse.ReceiptRecord, error) {
	return q.queryReceipts(ctx, `
		SELECT id, part_id, quantity, received_at, notes
		FROM receipt_transactions ORDER BY received_at DESC, id DESC`)
}

func (q *queries) ListReceiptsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.ReceiptRecord, error) {
	return q.queryReceipts(ctx, `
		SELECT id, part_id, quantity, received_at, notes
		FROM receipt_transactions WHERE part_id = ?
		ORDER BY received_at DESC, id DESC`, partID)
}

// ----- Shipment ledger -----

func (q *queries) AppendShipment(ctx context.Context, s *warehouse.ShipmentRecord) error {
	var lineID any
	if id, ok := s.Line.LineID(); ok {
		lineID = int(id)
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO shipping_transactions (part_id, line_id, quantity, shipped_at, notes)
		VALUES (?, ?, ?, ?, ?)`,
		s.PartID, lineID, s.Quantity, formatTime(s.ShippedAt), s.Notes)
	if err != nil {
		return fmt.Errorf("failed to append shipment: %w", err)
	}
	id, _ := res.LastInsertId()
	s.ID = int(id)
	return nil
}

func (q *queries) queryShipments(ctx context.Context, query string, args ...any) ([]warehouse.ShipmentRecord, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipments: %w", err)
	}
	defer rows.Close()

	var out []warehouse.ShipmentRecord
	for rows.Next() {
		var (
			s         warehouse.ShipmentRecord
			lineID    sql.NullInt64
			shippedAt string
		)
		if err := rows.Scan(&s.ID, &s.PartID, &lineID, &s.Quantity, &shippedAt, &s.Notes); err != nil {
			return nil, err
		}
		if lineID.Valid {
			s.Line = warehouse.ForLine(warehouse.LineID(lineID.Int64))
		} else {
			s.Line = warehouse.Unassigned()
		}
		s.ShippedAt = parseTime(shippedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *queries) ListShipments(ctx context.Context) ([]warehouse.ShipmentRecord, error) {
	return q.queryShipments(ctx, `
		SELECT id, part_id, line_id, quantity, shipped_at, notes
		FROM shipping_transactions ORDER BY shipped_at DESC, id DESC`)
}

func (q *queries) ListShipmentsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.ShipmentRecord, error) {
	return q.queryShipments(ctx, `
		SELECT id, part_id, line_id, quantity, shipped_at, notes
		FROM shipping_transactions WHERE part_id = ?
		ORDER BY shipped_at DESC, id DESC`, partID)
}

func (q *queries) ListShipmentsByLine(ctx context.Context, lineID warehouse.LineID) ([]warehouse.ShipmentRecord, error) {
	return q.queryShipments(ctx, `
		SELECT id, part_id, line_id, quantity, shipped_at, notes
		FROM shipping_transactions WHERE line_id = ?
		ORDER BY shipped_at DESC, id DESC`, lineID)
}

// ----- Line shipment tracker -----

func (q *queries) GetLineShipment(ctx context.Context, lineID warehouse.LineID) (*warehouse.LineShipment, error) {
	var (
		ls          warehouse.LineShipment
		first, last string
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT id, line_id, shipped_quantity, first_shipped_at, last_shipped_at
		FROM position_shipments WHERE line_id = ?`, lineID).
		Scan(&ls.ID, &ls.LineID, &ls.ShippedQuantity, &first, &last)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load line shipment: %w", err)
	}
	ls.FirstShippedAt = parseTime(first)
	ls.LastShippedAt = parseTime(last)
	return &ls, nil
}

func (q *queries) SaveLineShipment(ctx context.Context, ls *warehouse.LineShipment) error {
	if ls.ID == 0 {
		res, err := q.db.ExecContext(ctx, `
			INSERT INTO position_shipments (line_id, shipped_quantity, first_shipped_at, last_shipped_at)
			VALUES (?, ?, ?, ?)`,
			ls.LineID, ls.ShippedQuantity, formatTime(ls.FirstShippedAt), formatTime(ls.LastShippedAt))
		if err != nil {
			return fmt.Errorf("failed to insert line shipment: %w", err)
		}
		id, _ := res.LastInsertId()
		ls.ID = int(id)
		return nil
	}
	_, err := q.db.ExecContext(ctx, `
		UPDATE position_shipments
		SET shipped_quantity = ?, last_shipped_at = ?
		WHERE id = ?`,
		ls.ShippedQuantity, formatTime(ls.LastShippedAt), ls.ID)
	if err != nil {
		return fmt.Errorf("failed to update line shipment: %w", err)
	}
	return nil
}

// ----- Correction ledger -----

func (q *queries) AppendCorrection(ctx context.Context, c *warehouse.CorrectionRecord) error {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO correction_transactions
			(correction_number, old_part_id, new_part_id, quantity, corrected_at, notes, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.CorrectionNumber, c.OldPartID, c.NewPartID, c.Quantity,
		formatTime(c.CorrectedAt), c.Notes, c.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to append correction: %w", err)
	}
	id, _ := res.LastInsertId()
	c.ID = int(id)
	return nil
}

func (q *queries) queryCorrections(ctx context.Context, query string, args ...any) ([]warehouse.CorrectionRecord, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var out []warehouse.CorrectionRecord
	for rows.Next() {
		var (
			c           warehouse.CorrectionRecord
			correctedAt string
		)
		if err := rows.Scan(&c.ID, &c.CorrectionNumber, &c.OldPartID, &c.NewPartID,
			&c.Quantity, &correctedAt, &c.Notes, &c.CreatedBy); err != nil {
			return nil, err
		}
		c.CorrectedAt = parseTime(correctedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *queries) ListCorrections(ctx context.Context) ([]warehouse.CorrectionRecord, error) {
	return q.queryCorrections(ctx, `
		SELECT id, correction_number, old_part_id, new_part_id, quantity, corrected_at, notes, created_by
		FROM correction_transactions ORDER BY corrected_at DESC, id DESC`)
}

func (q *queries) ListCorrectionsByPart(ctx context.Context, partID warehouse.PartID) ([]warehouse.CorrectionRecord, error) {
	return q.queryCorrections(ctx, `
		SELECT id, correction_number, old_part_id, new_part_id, quantity, corrected_at, notes, created_by
		FROM correction_transactions WHERE old_part_id = ? OR new_part_id = ?
		ORDER BY corrected_at DESC, id DESC`, partID, partID)
}

func (q *queries) LastCorrection(ctx context.Context) (*warehouse.CorrectionRecord, error) {
	out, err := q.queryCorrections(ctx, `
		SELECT id, correction_number, old_part_id, new_part_id, quantity, corrected_at, notes, created_by
		FROM correction_transactions ORDER BY id DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

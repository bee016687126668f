/*
postgres_test.go - Query generation tests for the PostgreSQL store

PURPOSE:
  Exercises the store's query construction by rendering the SQL GORM
  would issue, without a live server. The row-lock tests pin down the
  cross-instance serialization of check-then-write reads: two server
  processes shipping the same part must block on the warehouse_items
  row, not both read the same quantity.

SEE ALSO:
  - postgres.go:           The store under test
  - warehouse/engine.go:   The check-then-write callers
*/
package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newDryRunDB opens a GORM handle that only renders SQL. The underlying
// sql.DB is lazy and the automatic ping is disabled, so no PostgreSQL
// server is needed.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=warehouse dbname=warehouse"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestGetStock_InsideTransaction_LocksRow(t *testing.T) {
	// GIVEN a store bound to a transaction, as WithTx produces
	db := newDryRunDB(t)

	// WHEN rendering the stock read that precedes a debit
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		st := &Store{db: tx, inTx: true}
		var m warehouseItemModel
		return st.locking(context.Background()).Where("part_id = ?", 7).Find(&m)
	})

	// THEN the read takes a row lock so a concurrent debit of the same
	// part waits for this transaction instead of reading stale stock
	assert.Contains(t, sql, "FOR UPDATE")
	assert.Contains(t, sql, "warehouse_items")
}

func TestGetLineShipment_InsideTransaction_LocksRow(t *testing.T) {
	// GIVEN a store bound to a transaction
	db := newDryRunDB(t)

	// WHEN rendering the tracker read that precedes its upsert
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		st := &Store{db: tx, inTx: true}
		var m lineShipmentModel
		return st.locking(context.Background()).Where("line_id = ?", 3).Find(&m)
	})

	// THEN the tracker row is locked for the rest of the transaction
	assert.Contains(t, sql, "FOR UPDATE")
	assert.Contains(t, sql, "position_shipments")
}

func TestLocking_OutsideTransaction_PlainRead(t *testing.T) {
	// GIVEN a store outside any transaction
	db := newDryRunDB(t)

	// WHEN rendering a read-only stock query
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		st := &Store{db: tx}
		var m warehouseItemModel
		return st.locking(context.Background()).Where("part_id = ?", 7).Find(&m)
	})

	// THEN no lock is taken; plain queries must not block writers
	assert.NotContains(t, sql, "FOR UPDATE")
}

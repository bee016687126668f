/*
Package warehouse provides the inventory ledger and shipment-reconciliation engine.

PURPOSE:
  This package tracks parts moving through a warehouse against shippable
  kits (complectations): how much of each part is on hand, how much has
  been received, how much has been shipped against a specific kit line,
  and whether a kit is fully satisfied.

KEY CONCEPTS IN THIS FILE (types.go):
  - StockLevel:       Current on-hand/reserved quantity per part
  - ReceiptRecord:    Immutable record of a stock inflow
  - ShipmentRecord:   Immutable record of a stock outflow, optionally tied
                      to a kit line
  - LineShipment:     Cached running total of quantity shipped per kit line
  - CorrectionRecord: Immutable audit record of a misallocation fix
  - Kit/Line:         Shippable kit and its required-part lines
  - LineRef:          Tagged reference to a kit line, with an explicit
                      "unassigned" variant for shipments not tied to a kit

DESIGN PRINCIPLES:
  1. Immutability: Ledger records are never modified once written
  2. Type Safety:  Strong typing for IDs prevents mixing part/line/kit IDs
  3. Precision:    Kit weight/volume use decimal.Decimal, not float64

SEE ALSO:
  - store.go:       Persistence contract (Store, TxStore)
  - engine.go:      Warehouse facade (Receive, Ship, Correct)
  - fulfillment.go: Kit fulfillment state machine
*/
package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// All identifiers are opaque integers assigned by the store on creation.

type ChapterID int
type PartID int
type KitID int
type LineID int

// =============================================================================
// CATALOG ENTITIES - Reference data owned by the catalog collaborator
// =============================================================================

// Chapter groups parts in the catalog.
type Chapter struct {
	ID   ChapterID
	Name string
}

// Part is immutable reference data for this core.
type Part struct {
	ID        PartID
	Name      string
	ChapterID ChapterID
}

// KitStatus is the fulfillment state of a kit.
//
// The core only drives Draft -> FullyShipped. InProgress and Archived are
// reserved for calling collaborators and reachable only via SetKitStatus.
type KitStatus int

const (
	StatusDraft KitStatus = iota
	StatusInProgress
	StatusFullyShipped
	StatusArchived
)

func (s KitStatus) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusInProgress:
		return "in_progress"
	case StatusFullyShipped:
		return "fully_shipped"
	case StatusArchived:
		return "archived"
	default:
		return "unknown"
	}
}

// ParseKitStatus converts the string form back to a KitStatus.
func ParseKitStatus(s string) (KitStatus, bool) {
	switch s {
	case "draft":
		return StatusDraft, true
	case "in_progress":
		return StatusInProgress, true
	case "fully_shipped":
		return StatusFullyShipped, true
	case "archived":
		return StatusArchived, true
	default:
		return StatusDraft, false
	}
}

// Kit is a shippable kit (complectation) composed of one or more lines.
// The kit owns its lines: they share its lifetime.
type Kit struct {
	ID            KitID
	Number        string
	Manager       string
	Address       string
	Customer      string
	ShippingTerms string
	ShippingDate  time.Time
	CreatedDate   time.Time
	TotalWeight   decimal.Decimal
	TotalVolume   decimal.Decimal
	Status        KitStatus
	FullyShippedAt *time.Time
	Ignored       bool
	Lines         []Line
}

// Line is one required-part/quantity entry within a kit.
// RequiredQuantity never decreases implicitly; it is advisory for shipping.
type Line struct {
	ID               LineID
	KitID            KitID
	PartID           PartID
	RequiredQuantity int
}

// =============================================================================
// LINE REFERENCE - Tagged "line or unassigned" variant
// =============================================================================

// LineRef identifies the kit line a shipment is recorded against.
//
// The zero value is the unassigned variant: a shipment not tied to any kit
// line (used by stock corrections). Unassigned shipments skip the line
// shipment tracker entirely; there is no placeholder line row anywhere.
type LineRef struct {
	id       LineID
	assigned bool
}

// ForLine returns a reference to an existing kit line.
func ForLine(id LineID) LineRef {
	return LineRef{id: id, assigned: true}
}

// Unassigned returns the no-line variant.
func Unassigned() LineRef {
	return LineRef{}
}

// Assigned reports whether the reference points at a kit line.
func (r LineRef) Assigned() bool { return r.assigned }

// LineID returns the referenced line and whether one is assigned.
func (r LineRef) LineID() (LineID, bool) { return r.id, r.assigned }

// =============================================================================
// STOCK - Mutable on-hand quantity per part
// =============================================================================

// StockLevel is the current warehouse quantity for one part.
// One row per part, created lazily on first receipt.
//
// INVARIANT: AvailableQuantity never goes negative. A shipment that would
// violate this is rejected atomically before any mutation.
type StockLevel struct {
	ID                int
	PartID            PartID
	AvailableQuantity int
	ReservedQuantity  int
	LastModified      time.Time
}

// TotalQuantity is available plus reserved.
func (s StockLevel) TotalQuantity() int {
	return s.AvailableQuantity + s.ReservedQuantity
}

// =============================================================================
// LEDGER RECORDS - Append-only once created
// =============================================================================

// ReceiptRecord is an immutable record of a stock inflow.
type ReceiptRecord struct {
	ID         int
	PartID     PartID
	Quantity   int
	ReceivedAt time.Time
	Notes      string
}

// ShipmentRecord is an immutable record of a stock outflow.
// Line is unassigned for shipments not tied to a kit (corrections).
type ShipmentRecord struct {
	ID        int
	PartID    PartID
	Line      LineRef
	Quantity  int
	ShippedAt time.Time
	Notes     string
}

// LineShipment is the cached running total of quantity shipped against one
// kit line. Created on first shipment, incremented on each subsequent one.
//
// CONSISTENCY: ShippedQuantity is maintained incrementally, not recomputed
// from the ledger, so it is only ever written in the same store transaction
// as the shipment record it reflects.
type LineShipment struct {
	ID              int
	LineID          LineID
	ShippedQuantity int
	FirstShippedAt  time.Time
	LastShippedAt   time.Time
}

// CorrectionRecord is the immutable audit record of a misallocation fix.
// It does not itself mutate stock; it is the byproduct of one shipment of
// the old part plus one receipt of the new part.
type CorrectionRecord struct {
	ID               int
	CorrectionNumber string
	OldPartID        PartID
	NewPartID        PartID
	Quantity         int
	CorrectedAt      time.Time
	Notes            string
	CreatedBy        string
}

// =============================================================================
// LINE SHIPMENT STATUS - Derived view for callers
// =============================================================================

// ShipmentStatus classifies how much of a line's requirement has shipped.
type ShipmentStatus string

const (
	ShipmentNotShipped       ShipmentStatus = "not_shipped"
	ShipmentPartiallyShipped ShipmentStatus = "partially_shipped"
	ShipmentFullyShipped     ShipmentStatus = "fully_shipped"
)

// LineShipmentStatus summarizes shipped-vs-required for one kit line.
// Over-shipped lines report as fully shipped with Remaining == 0.
type LineShipmentStatus struct {
	LineID    LineID
	Shipped   int
	Required  int
	Remaining int
	Status    ShipmentStatus
}

/*
Package catalog manages the warehouse reference data: chapters, parts,
and shippable kits with their lines.

PURPOSE:
  The warehouse engine treats parts and kit lines as read-only reference
  data. This package owns their lifecycle: creating chapters and parts,
  building kits out of lines, editing kit headers and lines, and
  archiving kits out of the working set.

BOUNDARY:
  The catalog never touches stock or the ledgers. Deleting a part that
  has ledger history is intentionally unsupported; the ledger references
  it forever.

SEE ALSO:
  - warehouse/store.go: Persistence contract shared with the engine
  - api/handlers.go:    HTTP surface for the catalog
*/
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/complectgroup/warehouse-engine/warehouse"
)

// Service manages chapters, parts, and kits on top of the shared store.
type Service struct {
	store warehouse.TxStore
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a catalog service on top of a transactional store.
func NewService(store warehouse.TxStore, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// CHAPTERS
// =============================================================================

// CreateChapter creates a named chapter.
func (s *Service) CreateChapter(ctx context.Context, name string) (*warehouse.Chapter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("chapter name required: %w", warehouse.ErrInvalidArguments)
	}
	c := &warehouse.Chapter{Name: name}
	if err := s.store.SaveChapter(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListChapters returns all chapters.
func (s *Service) ListChapters(ctx context.Context) ([]warehouse.Chapter, error) {
	return s.store.ListChapters(ctx)
}

// DeleteChapter removes a chapter. Parts referencing it keep their
// ChapterID; resolving dangling references is the caller's concern.
func (s *Service) DeleteChapter(ctx context.Context, id warehouse.ChapterID) error {
	c, err := s.store.GetChapter(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("chapter %d: %w", id, warehouse.ErrChapterNotFound)
	}
	return s.store.DeleteChapter(ctx, id)
}

// =============================================================================
// PARTS
// =============================================================================

// CreatePart creates a part under an existing chapter.
func (s *Service) CreatePart(ctx context.Context, name string, chapterID warehouse.ChapterID) (*warehouse.Part, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("part name required: %w", warehouse.ErrInvalidArguments)
	}
	ch, err := s.store.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, fmt.Errorf("chapter %d: %w", chapterID, warehouse.ErrChapterNotFound)
	}

	p := &warehouse.Part{Name: name, ChapterID: chapterID}
	if err := s.store.SavePart(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPart returns one part or ErrPartNotFound.
func (s *Service) GetPart(ctx context.Context, id warehouse.PartID) (*warehouse.Part, error) {
	p, err := s.store.GetPart(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("part %d: %w", id, warehouse.ErrPartNotFound)
	}
	return p, nil
}

// ListParts returns all parts.
func (s *Service) ListParts(ctx context.Context) ([]warehouse.Part, error) {
	return s.store.ListParts(ctx)
}

// RenamePart updates a part's name.
func (s *Service) RenamePart(ctx context.Context, id warehouse.PartID, name string) (*warehouse.Part, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("part name required: %w", warehouse.ErrInvalidArguments)
	}
	p, err := s.GetPart(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	if err := s.store.SavePart(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// =============================================================================
// KITS
// =============================================================================

// NewKit describes a kit to create.
type NewKit struct {
	Number        string
	Manager       string
	Address       string
	Customer      string
	ShippingTerms string
	ShippingDate  time.Time
	TotalWeight   decimal.Decimal
	TotalVolume   decimal.Decimal
	Lines         []NewLine
}

// NewLine describes one required-part line of a new kit.
type NewLine struct {
	PartID           warehouse.PartID
	RequiredQuantity int
}

// CreateKit creates a kit with its lines. Every referenced part must
// exist and every line quantity must be positive.
func (s *Service) CreateKit(ctx context.Context, in NewKit) (*warehouse.Kit, error) {
	in.Number = strings.TrimSpace(in.Number)
	if in.Number == "" {
		return nil, fmt.Errorf("kit number required: %w", warehouse.ErrInvalidArguments)
	}

	kit := &warehouse.Kit{
		Number:        in.Number,
		Manager:       in.Manager,
		Address:       in.Address,
		Customer:      in.Customer,
		ShippingTerms: in.ShippingTerms,
		ShippingDate:  in.ShippingDate,
		CreatedDate:   s.now(),
		TotalWeight:   in.TotalWeight,
		TotalVolume:   in.TotalVolume,
		Status:        warehouse.StatusDraft,
	}

	err := s.store.WithTx(ctx, func(tx warehouse.Store) error {
		for _, l := range in.Lines {
			if l.RequiredQuantity <= 0 {
				return fmt.Errorf("line for part %d: required quantity %d: %w",
					l.PartID, l.RequiredQuantity, warehouse.ErrInvalidQuantity)
			}
			p, err := tx.GetPart(ctx, l.PartID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("part %d: %w", l.PartID, warehouse.ErrPartNotFound)
			}
			kit.Lines = append(kit.Lines, warehouse.Line{
				PartID:           l.PartID,
				RequiredQuantity: l.RequiredQuantity,
			})
		}
		return tx.SaveKit(ctx, kit)
	})
	if err != nil {
		return nil, err
	}
	return kit, nil
}

// GetKit returns one kit with its lines or ErrKitNotFound.
func (s *Service) GetKit(ctx context.Context, id warehouse.KitID) (*warehouse.Kit, error) {
	k, err := s.store.GetKit(ctx, id)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("kit %d: %w", id, warehouse.ErrKitNotFound)
	}
	return k, nil
}

// ListKits returns all kits with their lines.
func (s *Service) ListKits(ctx context.Context) ([]warehouse.Kit, error) {
	return s.store.ListKits(ctx)
}

// KitUpdate is a partial update of a kit header and its lines. Nil
// fields are left unchanged.
type KitUpdate struct {
	Number        *string
	Manager       *string
	Address       *string
	Customer      *string
	ShippingTerms *string
	ShippingDate  *time.Time
	TotalWeight   *decimal.Decimal
	TotalVolume   *decimal.Decimal
	Lines         []LineUpdate
}

// LineUpdate adds, edits, or removes one kit line. ID == 0 adds a new
// line; Delete removes an existing one.
type LineUpdate struct {
	ID               warehouse.LineID
	PartID           warehouse.PartID
	RequiredQuantity int
	Delete           bool
}

// UpdateKit applies a partial update to a kit header and reconciles its
// lines. Removing a line that has shipments leaves the ledger intact;
// only the requirement disappears.
func (s *Service) UpdateKit(ctx context.Context, id warehouse.KitID, upd KitUpdate) (*warehouse.Kit, error) {
	var kit *warehouse.Kit
	err := s.store.WithTx(ctx, func(tx warehouse.Store) error {
		var err error
		kit, err = tx.GetKit(ctx, id)
		if err != nil {
			return err
		}
		if kit == nil {
			return fmt.Errorf("kit %d: %w", id, warehouse.ErrKitNotFound)
		}

		if upd.Number != nil {
			n := strings.TrimSpace(*upd.Number)
			if n == "" {
				return fmt.Errorf("kit number required: %w", warehouse.ErrInvalidArguments)
			}
			kit.Number = n
		}
		if upd.Manager != nil {
			kit.Manager = *upd.Manager
		}
		if upd.Address != nil {
			kit.Address = *upd.Address
		}
		if upd.Customer != nil {
			kit.Customer = *upd.Customer
		}
		if upd.ShippingTerms != nil {
			kit.ShippingTerms = *upd.ShippingTerms
		}
		if upd.ShippingDate != nil {
			kit.ShippingDate = *upd.ShippingDate
		}
		if upd.TotalWeight != nil {
			kit.TotalWeight = *upd.TotalWeight
		}
		if upd.TotalVolume != nil {
			kit.TotalVolume = *upd.TotalVolume
		}

		for _, lu := range upd.Lines {
			if err := applyLineUpdate(ctx, tx, kit, lu); err != nil {
				return err
			}
		}

		return tx.SaveKit(ctx, kit)
	})
	if err != nil {
		return nil, err
	}
	return kit, nil
}

func applyLineUpdate(ctx context.Context, tx warehouse.Store, kit *warehouse.Kit, lu LineUpdate) error {
	if lu.Delete {
		for i, l := range kit.Lines {
			if l.ID == lu.ID {
				kit.Lines = append(kit.Lines[:i], kit.Lines[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("line %d: %w", lu.ID, warehouse.ErrLineNotFound)
	}

	if lu.RequiredQuantity <= 0 {
		return fmt.Errorf("line for part %d: required quantity %d: %w",
			lu.PartID, lu.RequiredQuantity, warehouse.ErrInvalidQuantity)
	}
	p, err := tx.GetPart(ctx, lu.PartID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("part %d: %w", lu.PartID, warehouse.ErrPartNotFound)
	}

	if lu.ID == 0 {
		kit.Lines = append(kit.Lines, warehouse.Line{
			KitID:            kit.ID,
			PartID:           lu.PartID,
			RequiredQuantity: lu.RequiredQuantity,
		})
		return nil
	}
	for i := range kit.Lines {
		if kit.Lines[i].ID == lu.ID {
			kit.Lines[i].PartID = lu.PartID
			kit.Lines[i].RequiredQuantity = lu.RequiredQuantity
			return nil
		}
	}
	return fmt.Errorf("line %d: %w", lu.ID, warehouse.ErrLineNotFound)
}

// DeleteKit removes a kit and its lines. The shipment ledger keeps any
// records that referenced the removed lines.
func (s *Service) DeleteKit(ctx context.Context, id warehouse.KitID) error {
	k, err := s.store.GetKit(ctx, id)
	if err != nil {
		return err
	}
	if k == nil {
		return fmt.Errorf("kit %d: %w", id, warehouse.ErrKitNotFound)
	}
	return s.store.DeleteKit(ctx, id)
}

// SetIgnored flags a kit in or out of reporting views such as the
// not-fully-shipped listing.
func (s *Service) SetIgnored(ctx context.Context, id warehouse.KitID, ignored bool) (*warehouse.Kit, error) {
	var kit *warehouse.Kit
	err := s.store.WithTx(ctx, func(tx warehouse.Store) error {
		var err error
		kit, err = tx.GetKit(ctx, id)
		if err != nil {
			return err
		}
		if kit == nil {
			return fmt.Errorf("kit %d: %w", id, warehouse.ErrKitNotFound)
		}
		kit.Ignored = ignored
		return tx.SaveKit(ctx, kit)
	})
	if err != nil {
		return nil, err
	}
	return kit, nil
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and domain logic, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// CATALOG TYPES
// =============================================================================

// ChapterDTO represents a part chapter in API responses.
type ChapterDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreateChapterRequest is the request to create a chapter.
type CreateChapterRequest struct {
	Name string `json:"name"`
}

// PartDTO represents a catalog part in API responses.
type PartDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ChapterID int    `json:"chapter_id"`
}

// CreatePartRequest is the request to create a part.
type CreatePartRequest struct {
	Name      string `json:"name"`
	ChapterID int    `json:"chapter_id"`
}

// =============================================================================
// KIT TYPES
// =============================================================================

// KitDTO represents a kit with its lines in API responses.
type KitDTO struct {
	ID             int       `json:"id"`
	Number         string    `json:"number"`
	Manager        string    `json:"manager,omitempty"`
	Address        string    `json:"address,omitempty"`
	Customer       string    `json:"customer,omitempty"`
	ShippingTerms  string    `json:"shipping_terms,omitempty"`
	ShippingDate   string    `json:"shipping_date,omitempty"`
	CreatedDate    string    `json:"created_date,omitempty"`
	TotalWeight    string    `json:"total_weight"`
	TotalVolume    string    `json:"total_volume"`
	Status         string    `json:"status"`
	FullyShippedAt string    `json:"fully_shipped_at,omitempty"`
	Ignored        bool      `json:"ignored"`
	Lines          []LineDTO `json:"lines"`
}

// LineDTO represents one kit line in API responses.
type LineDTO struct {
	ID               int `json:"id"`
	KitID            int `json:"kit_id"`
	PartID           int `json:"part_id"`
	RequiredQuantity int `json:"required_quantity"`
}

// CreateKitRequest is the request to create a kit with its lines.
type CreateKitRequest struct {
	Number        string           `json:"number"`
	Manager       string           `json:"manager"`
	Address       string           `json:"address"`
	Customer      string           `json:"customer"`
	ShippingTerms string           `json:"shipping_terms"`
	ShippingDate  string           `json:"shipping_date"`
	TotalWeight   string           `json:"total_weight"`
	TotalVolume   string           `json:"total_volume"`
	Lines         []KitLineRequest `json:"lines"`
}

// KitLineRequest is one line of a kit create or update request.
// For updates, ID 0 adds a new line and Delete removes an existing one.
type KitLineRequest struct {
	ID               int  `json:"id,omitempty"`
	PartID           int  `json:"part_id"`
	RequiredQuantity int  `json:"required_quantity"`
	Delete           bool `json:"delete,omitempty"`
}

// UpdateKitRequest is a partial kit update. Omitted fields stay unchanged.
type UpdateKitRequest struct {
	Number        *string          `json:"number,omitempty"`
	Manager       *string          `json:"manager,omitempty"`
	Address       *string          `json:"address,omitempty"`
	Customer      *string          `json:"customer,omitempty"`
	ShippingTerms *string          `json:"shipping_terms,omitempty"`
	ShippingDate  *string          `json:"shipping_date,omitempty"`
	TotalWeight   *string          `json:"total_weight,omitempty"`
	TotalVolume   *string          `json:"total_volume,omitempty"`
	Lines         []KitLineRequest `json:"lines,omitempty"`
}

// SetKitStatusRequest sets a kit's status by name.
type SetKitStatusRequest struct {
	Status  string `json:"status"`
	Ignored *bool  `json:"ignored,omitempty"`
}

// =============================================================================
// STOCK AND LEDGER TYPES
// =============================================================================

// StockDTO represents the stock level of one part.
type StockDTO struct {
	PartID            int    `json:"part_id"`
	AvailableQuantity int    `json:"available_quantity"`
	ReservedQuantity  int    `json:"reserved_quantity"`
	TotalQuantity     int    `json:"total_quantity"`
	LastModified      string `json:"last_modified"`
}

// ReceiptDTO represents one receipt ledger record.
type ReceiptDTO struct {
	ID         int    `json:"id"`
	PartID     int    `json:"part_id"`
	Quantity   int    `json:"quantity"`
	ReceivedAt string `json:"received_at"`
	Notes      string `json:"notes,omitempty"`
}

// CreateReceiptRequest records a stock inflow.
type CreateReceiptRequest struct {
	PartID   int    `json:"part_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// ShipmentDTO represents one shipment ledger record. LineID is null for
// shipments not tied to a kit line.
type ShipmentDTO struct {
	ID        int    `json:"id"`
	PartID    int    `json:"part_id"`
	LineID    *int   `json:"line_id"`
	Quantity  int    `json:"quantity"`
	ShippedAt string `json:"shipped_at"`
	Notes     string `json:"notes,omitempty"`
}

// CreateShipmentRequest records a stock outflow against a kit line.
// Omit line_id for a shipment not tied to any kit.
type CreateShipmentRequest struct {
	PartID   int    `json:"part_id"`
	LineID   *int   `json:"line_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// LineStatusDTO summarizes shipped-vs-required for one kit line.
type LineStatusDTO struct {
	LineID    int    `json:"line_id"`
	Shipped   int    `json:"shipped"`
	Required  int    `json:"required"`
	Remaining int    `json:"remaining"`
	Status    string `json:"status"`
}

// CorrectionDTO represents one correction audit record.
type CorrectionDTO struct {
	ID               int    `json:"id"`
	CorrectionNumber string `json:"correction_number"`
	OldPartID        int    `json:"old_part_id"`
	NewPartID        int    `json:"new_part_id"`
	Quantity         int    `json:"quantity"`
	CorrectedAt      string `json:"corrected_at"`
	Notes            string `json:"notes,omitempty"`
	CreatedBy        string `json:"created_by"`
}

// CreateCorrectionRequest reallocates misbooked stock between two parts.
type CreateCorrectionRequest struct {
	OldPartID int    `json:"old_part_id"`
	NewPartID int    `json:"new_part_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
	CreatedBy string `json:"created_by"`
}

// FulfillmentDTO reports a kit's fulfillment check result.
type FulfillmentDTO struct {
	KitID        int  `json:"kit_id"`
	FullyShipped bool `json:"fully_shipped"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

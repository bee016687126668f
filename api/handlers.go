/*
handlers.go - HTTP API handlers for the warehouse engine

PURPOSE:
  Exposes the warehouse engine and catalog via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Stock:
    GET    /api/stock                   List stock levels (?available=true)
    GET    /api/stock/{partID}          Stock for one part

  Ledgers:
    GET    /api/receipts                Receipt history (?part_id)
    POST   /api/receipts                Record a stock inflow
    GET    /api/shipments               Shipment history (?part_id, ?line_id)
    POST   /api/shipments               Record a stock outflow
    GET    /api/corrections             Correction history (?part_id)
    POST   /api/corrections             Reallocate misbooked stock

  Kits:
    GET    /api/kits                    List kits (?not_fully_shipped=true)
    POST   /api/kits                    Create a kit with lines
    GET    /api/kits/{id}               Get a kit
    PUT    /api/kits/{id}               Partial update of header and lines
    DELETE /api/kits/{id}               Delete a kit
    GET    /api/kits/{id}/fulfillment   Check fulfillment
    POST   /api/kits/{id}/mark-fully-shipped
    PUT    /api/kits/{id}/status        Set status / ignored flag
    GET    /api/lines/{id}/status       Shipped-vs-required per line

  Catalog:
    GET/POST /api/chapters, DELETE /api/chapters/{id}
    GET/POST /api/parts, GET /api/parts/{id}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Part/line/kit/chapter not found
  - 409: Insufficient stock, kit not fully shipped
  - 500: Internal errors

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/complectgroup/warehouse-engine/catalog"
	"github.com/complectgroup/warehouse-engine/warehouse"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine  *warehouse.Engine
	Catalog *catalog.Service
}

// NewHandler creates a new handler.
func NewHandler(engine *warehouse.Engine, cat *catalog.Service) *Handler {
	return &Handler{Engine: engine, Catalog: cat}
}

// =============================================================================
// STOCK HANDLERS
// =============================================================================

// ListStock returns all stock levels; ?available=true filters to rows
// with a positive total quantity.
func (h *Handler) ListStock(w http.ResponseWriter, r *http.Request) {
	var (
		levels []warehouse.StockLevel
		err    error
	)
	if r.URL.Query().Get("available") == "true" {
		levels, err = h.Engine.ListAvailableStock(r.Context())
	} else {
		levels, err = h.Engine.ListStock(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list stock", err)
		return
	}

	dtos := make([]StockDTO, len(levels))
	for i, s := range levels {
		dtos[i] = toStockDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStock returns the stock level for one part.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	partID, ok := urlParamInt(w, r, "partID")
	if !ok {
		return
	}

	stock, err := h.Engine.Stock(r.Context(), warehouse.PartID(partID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get stock", err)
		return
	}
	if stock == nil {
		writeError(w, http.StatusNotFound, "No stock recorded for part", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStockDTO(*stock))
}

// =============================================================================
// RECEIPT HANDLERS
// =============================================================================

// ListReceipts returns receipt history, newest first; ?part_id filters.
func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	var (
		records []warehouse.ReceiptRecord
		err     error
	)
	if p := r.URL.Query().Get("part_id"); p != "" {
		id, convErr := strconv.Atoi(p)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid part_id", convErr)
			return
		}
		records, err = h.Engine.ReceiptsByPart(r.Context(), warehouse.PartID(id))
	} else {
		records, err = h.Engine.Receipts(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list receipts", err)
		return
	}

	dtos := make([]ReceiptDTO, len(records))
	for i, rec := range records {
		dtos[i] = toReceiptDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateReceipt records a stock inflow.
func (h *Handler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req CreateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Engine.Receive(r.Context(), warehouse.PartID(req.PartID), req.Quantity, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceiptDTO(*rec))
}

// =============================================================================
// SHIPMENT HANDLERS
// =============================================================================

// ListShipments returns shipment history, newest first; ?part_id and
// ?line_id filter (line_id wins when both are set).
func (h *Handler) ListShipments(w http.ResponseWriter, r *http.Request) {
	var (
		records []warehouse.ShipmentRecord
		err     error
	)
	switch {
	case r.URL.Query().Get("line_id") != "":
		id, convErr := strconv.Atoi(r.URL.Query().Get("line_id"))
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid line_id", convErr)
			return
		}
		records, err = h.Engine.ShipmentsByLine(r.Context(), warehouse.LineID(id))
	case r.URL.Query().Get("part_id") != "":
		id, convErr := strconv.Atoi(r.URL.Query().Get("part_id"))
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid part_id", convErr)
			return
		}
		records, err = h.Engine.ShipmentsByPart(r.Context(), warehouse.PartID(id))
	default:
		records, err = h.Engine.Shipments(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shipments", err)
		return
	}

	dtos := make([]ShipmentDTO, len(records))
	for i, rec := range records {
		dtos[i] = toShipmentDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateShipment records a stock outflow, optionally against a kit line.
func (h *Handler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var req CreateShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	line := warehouse.Unassigned()
	if req.LineID != nil {
		line = warehouse.ForLine(warehouse.LineID(*req.LineID))
	}

	rec, err := h.Engine.Ship(r.Context(), warehouse.PartID(req.PartID), line, req.Quantity, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShipmentDTO(*rec))
}

// GetLineStatus returns shipped-vs-required for one kit line.
func (h *Handler) GetLineStatus(w http.ResponseWriter, r *http.Request) {
	lineID, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}

	status, err := h.Engine.LineShipmentStatus(r.Context(), warehouse.LineID(lineID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get line status", err)
		return
	}
	if status == nil {
		writeError(w, http.StatusNotFound, "Kit line not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, LineStatusDTO{
		LineID:    int(status.LineID),
		Shipped:   status.Shipped,
		Required:  status.Required,
		Remaining: status.Remaining,
		Status:    string(status.Status),
	})
}

// =============================================================================
// CORRECTION HANDLERS
// =============================================================================

// ListCorrections returns correction history, newest first; ?part_id
// matches either side of the correction.
func (h *Handler) ListCorrections(w http.ResponseWriter, r *http.Request) {
	var (
		records []warehouse.CorrectionRecord
		err     error
	)
	if p := r.URL.Query().Get("part_id"); p != "" {
		id, convErr := strconv.Atoi(p)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid part_id", convErr)
			return
		}
		records, err = h.Engine.CorrectionsByPart(r.Context(), warehouse.PartID(id))
	} else {
		records, err = h.Engine.Corrections(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list corrections", err)
		return
	}

	dtos := make([]CorrectionDTO, len(records))
	for i, rec := range records {
		dtos[i] = toCorrectionDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCorrection reallocates misbooked stock between two parts.
func (h *Handler) CreateCorrection(w http.ResponseWriter, r *http.Request) {
	var req CreateCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Engine.Correct(r.Context(),
		warehouse.PartID(req.OldPartID), warehouse.PartID(req.NewPartID),
		req.Quantity, req.Notes, req.CreatedBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCorrectionDTO(*rec))
}

// =============================================================================
// KIT HANDLERS
// =============================================================================

// ListKits returns all kits; ?not_fully_shipped=true filters to kits
// still open for shipping.
func (h *Handler) ListKits(w http.ResponseWriter, r *http.Request) {
	var (
		kits []warehouse.Kit
		err  error
	)
	if r.URL.Query().Get("not_fully_shipped") == "true" {
		kits, err = h.Engine.ListNotFullyShippedKits(r.Context())
	} else {
		kits, err = h.Catalog.ListKits(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list kits", err)
		return
	}

	dtos := make([]KitDTO, len(kits))
	for i := range kits {
		dtos[i] = toKitDTO(&kits[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetKit returns one kit with its lines.
func (h *Handler) GetKit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}

	kit, err := h.Catalog.GetKit(r.Context(), warehouse.KitID(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toKitDTO(kit))
}

// CreateKit creates a kit with its lines.
func (h *Handler) CreateKit(w http.ResponseWriter, r *http.Request) {
	var req CreateKitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := catalog.NewKit{
		Number:        req.Number,
		Manager:       req.Manager,
		Address:       req.Address,
		Customer:      req.Customer,
		ShippingTerms: req.ShippingTerms,
	}
	if req.ShippingDate != "" {
		d, err := time.Parse("2006-01-02", req.ShippingDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid shipping_date format (use YYYY-MM-DD)", err)
			return
		}
		in.ShippingDate = d
	}
	var err error
	if in.TotalWeight, err = parseDecimal(req.TotalWeight); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total_weight", err)
		return
	}
	if in.TotalVolume, err = parseDecimal(req.TotalVolume); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total_volume", err)
		return
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, catalog.NewLine{
			PartID:           warehouse.PartID(l.PartID),
			RequiredQuantity: l.RequiredQuantity,
		})
	}

	kit, err := h.Catalog.CreateKit(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toKitDTO(kit))
}

// UpdateKit applies a partial update to a kit header and its lines.
func (h *Handler) UpdateKit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}

	var req UpdateKitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	upd := catalog.KitUpdate{
		Number:        req.Number,
		Manager:       req.Manager,
		Address:       req.Address,
		Customer:      req.Customer,
		ShippingTerms: req.ShippingTerms,
	}
	if req.ShippingDate != nil {
		d, err := time.Parse("2006-01-02", *req.ShippingDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid shipping_date format (use YYYY-MM-DD)", err)
			return
		}
		upd.ShippingDate = &d
	}
	if req.TotalWeight != nil {
		wgt, err := parseDecimal(*req.TotalWeight)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid total_weight", err)
			return
		}
		upd.TotalWeight = &wgt
	}
	if req.TotalVolume != nil {
		vol, err := parseDecimal(*req.TotalVolume)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid total_volume", err)
			return
		}
		upd.TotalVolume = &vol
	}
	for _, l := range req.Lines {
		upd.Lines = append(upd.Lines, catalog.LineUpdate{
			ID:               warehouse.LineID(l.ID),
			PartID:           warehouse.PartID(l.PartID),
			RequiredQuantity: l.RequiredQuantity,
			Delete:           l.Delete,
		})
	}

	kit, err := h.Catalog.UpdateKit(r.Context(), warehouse.KitID(id), upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toKitDTO(kit))
}

// DeleteKit removes a kit and its lines.
func (h *Handler) DeleteKit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteKit(r.Context(), warehouse.KitID(id)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetKitFulfillment checks whether every line of a kit is satisfied.
func (h *Handler) GetKitFulfillment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}

	fullyShipped, err := h.Engine.IsKitFullyShipped(r.Context(), warehouse.KitID(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FulfillmentDTO{KitID: id, FullyShipped: fullyShipped})
}

// MarkKitFullyShipped verifies fulfillment and stamps the kit.
func (h *Handler) MarkKitFullyShipped(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}

	if err := h.Engine.MarkKitFullyShipped(r.Context(), warehouse.KitID(id)); err != nil {
		writeDomainError(w, err)
		return
	}

	kit, err := h.Catalog.GetKit(r.Context(), warehouse.KitID(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toKitDTO(kit))
}

// SetKitStatus sets a kit's status by name and optionally its ignored
// flag, without any fulfillment check.
func (h *Handler) SetKitStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}

	var req SetKitStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Status != "" {
		status, valid := warehouse.ParseKitStatus(req.Status)
		if !valid {
			writeError(w, http.StatusBadRequest, "Unknown status", nil)
			return
		}
		if err := h.Engine.SetKitStatus(r.Context(), warehouse.KitID(id), status); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if req.Ignored != nil {
		if _, err := h.Catalog.SetIgnored(r.Context(), warehouse.KitID(id), *req.Ignored); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	kit, err := h.Catalog.GetKit(r.Context(), warehouse.KitID(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toKitDTO(kit))
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListChapters returns all chapters.
func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.Catalog.ListChapters(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list chapters", err)
		return
	}
	dtos := make([]ChapterDTO, len(chapters))
	for i, c := range chapters {
		dtos[i] = ChapterDTO{ID: int(c.ID), Name: c.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateChapter creates a chapter.
func (h *Handler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	var req CreateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	c, err := h.Catalog.CreateChapter(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ChapterDTO{ID: int(c.ID), Name: c.Name})
}

// DeleteChapter removes a chapter.
func (h *Handler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteChapter(r.Context(), warehouse.ChapterID(id)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListParts returns all parts.
func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Catalog.ListParts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parts", err)
		return
	}
	dtos := make([]PartDTO, len(parts))
	for i, p := range parts {
		dtos[i] = PartDTO{ID: int(p.ID), Name: p.Name, ChapterID: int(p.ChapterID)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPart returns one part.
func (h *Handler) GetPart(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Catalog.GetPart(r.Context(), warehouse.PartID(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PartDTO{ID: int(p.ID), Name: p.Name, ChapterID: int(p.ChapterID)})
}

// CreatePart creates a part under an existing chapter.
func (h *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var req CreatePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := h.Catalog.CreatePart(r.Context(), req.Name, warehouse.ChapterID(req.ChapterID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PartDTO{ID: int(p.ID), Name: p.Name, ChapterID: int(p.ChapterID)})
}

// =============================================================================
// CONVERSIONS AND HELPERS
// =============================================================================

func toStockDTO(s warehouse.StockLevel) StockDTO {
	return StockDTO{
		PartID:            int(s.PartID),
		AvailableQuantity: s.AvailableQuantity,
		ReservedQuantity:  s.ReservedQuantity,
		TotalQuantity:     s.TotalQuantity(),
		LastModified:      s.LastModified.Format(time.RFC3339),
	}
}

func toReceiptDTO(r warehouse.ReceiptRecord) ReceiptDTO {
	return ReceiptDTO{
		ID:         r.ID,
		PartID:     int(r.PartID),
		Quantity:   r.Quantity,
		ReceivedAt: r.ReceivedAt.Format(time.RFC3339),
		Notes:      r.Notes,
	}
}

func toShipmentDTO(s warehouse.ShipmentRecord) ShipmentDTO {
	dto := ShipmentDTO{
		ID:        s.ID,
		PartID:    int(s.PartID),
		Quantity:  s.Quantity,
		ShippedAt: s.ShippedAt.Format(time.RFC3339),
		Notes:     s.Notes,
	}
	if id, ok := s.Line.LineID(); ok {
		v := int(id)
		dto.LineID = &v
	}
	return dto
}

func toCorrectionDTO(c warehouse.CorrectionRecord) CorrectionDTO {
	return CorrectionDTO{
		ID:               c.ID,
		CorrectionNumber: c.CorrectionNumber,
		OldPartID:        int(c.OldPartID),
		NewPartID:        int(c.NewPartID),
		Quantity:         c.Quantity,
		CorrectedAt:      c.CorrectedAt.Format(time.RFC3339),
		Notes:            c.Notes,
		CreatedBy:        c.CreatedBy,
	}
}

func toKitDTO(k *warehouse.Kit) KitDTO {
	dto := KitDTO{
		ID:            int(k.ID),
		Number:        k.Number,
		Manager:       k.Manager,
		Address:       k.Address,
		Customer:      k.Customer,
		ShippingTerms: k.ShippingTerms,
		TotalWeight:   k.TotalWeight.String(),
		TotalVolume:   k.TotalVolume.String(),
		Status:        k.Status.String(),
		Ignored:       k.Ignored,
		Lines:         make([]LineDTO, len(k.Lines)),
	}
	if !k.ShippingDate.IsZero() {
		dto.ShippingDate = k.ShippingDate.Format("2006-01-02")
	}
	if !k.CreatedDate.IsZero() {
		dto.CreatedDate = k.CreatedDate.Format(time.RFC3339)
	}
	if k.FullyShippedAt != nil {
		dto.FullyShippedAt = k.FullyShippedAt.Format(time.RFC3339)
	}
	for i, l := range k.Lines {
		dto.Lines[i] = LineDTO{
			ID:               int(l.ID),
			KitID:            int(l.KitID),
			PartID:           int(l.PartID),
			RequiredQuantity: l.RequiredQuantity,
		}
	}
	return dto
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func urlParamInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return v, true
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, warehouse.ErrPartNotFound),
		errors.Is(err, warehouse.ErrLineNotFound),
		errors.Is(err, warehouse.ErrKitNotFound),
		errors.Is(err, warehouse.ErrChapterNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, warehouse.ErrInvalidQuantity),
		errors.Is(err, warehouse.ErrInvalidArguments):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, warehouse.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "Insufficient stock", err)
	case errors.Is(err, warehouse.ErrNotFullyShipped):
		writeError(w, http.StatusConflict, "Kit is not fully shipped", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

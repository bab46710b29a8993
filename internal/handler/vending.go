package handler

import (
	"encoding/json"
	"net/http"

	"vendmatic-rest-api/internal/model"
	"vendmatic-rest-api/internal/service"
	"vendmatic-rest-api/pkg/apierror"
	"vendmatic-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// VendingHandler handles purchase and slot HTTP requests.
type VendingHandler struct {
	inventory *service.InventoryService
	purchase  *service.PurchaseService
	stocking  *service.StockingService
}

// NewVendingHandler creates a new vending handler.
func NewVendingHandler(
	inventory *service.InventoryService,
	purchase *service.PurchaseService,
	stocking *service.StockingService,
) *VendingHandler {
	return &VendingHandler{
		inventory: inventory,
		purchase:  purchase,
		stocking:  stocking,
	}
}

// PurchaseRequest is the body of POST /api/v1/purchase.
type PurchaseRequest struct {
	SlotID       string `json:"slot_id"`
	CashInserted int    `json:"cash_inserted"`
}

// Purchase handles POST /api/v1/purchase
func (h *VendingHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.SlotID == "" {
		response.Error(w, apierror.BadRequest("slot_id is required"))
		return
	}
	if req.CashInserted <= 0 {
		response.Error(w, apierror.BadRequest("cash_inserted must be positive"))
		return
	}

	receipt, err := h.purchase.Purchase(r.Context(), req.SlotID, req.CashInserted)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, receipt)
}

// CreateSlotRequest is the body of POST /api/v1/slots.
type CreateSlotRequest struct {
	Capacity int `json:"capacity"`
}

// CreateSlot handles POST /api/v1/slots
func (h *VendingHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var req CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	slot, err := h.inventory.CreateSlot(r.Context(), req.Capacity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, slot)
}

// ListSlots handles GET /api/v1/slots
func (h *VendingHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.inventory.ListSlots(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"slots": slots,
		"count": len(slots),
	})
}

// GetSlot handles GET /api/v1/slots/{slot_id}
func (h *VendingHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "slot_id")
	if slotID == "" {
		response.Error(w, apierror.BadRequest("slot_id is required"))
		return
	}

	status, err := h.inventory.GetSlot(r.Context(), slotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, status)
}

// StockRequest is the body of POST /api/v1/slots/{slot_id}/stock.
type StockRequest struct {
	Entries []model.StockEntry `json:"entries"`
}

// StockSlot handles POST /api/v1/slots/{slot_id}/stock
func (h *VendingHandler) StockSlot(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "slot_id")
	if slotID == "" {
		response.Error(w, apierror.BadRequest("slot_id is required"))
		return
	}

	var req StockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	for _, entry := range req.Entries {
		if entry.Name == "" {
			response.Error(w, apierror.BadRequest("every entry needs a name"))
			return
		}
	}

	added, err := h.stocking.BulkAdd(r.Context(), slotID, req.Entries)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"slot_id":     slotID,
		"items_added": added,
	})
}

// SetPriceRequest is the body of PATCH /api/v1/slots/{slot_id}/price.
type SetPriceRequest struct {
	Price int `json:"price"`
}

// SetPrice handles PATCH /api/v1/slots/{slot_id}/price
func (h *VendingHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "slot_id")
	if slotID == "" {
		response.Error(w, apierror.BadRequest("slot_id is required"))
		return
	}

	var req SetPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	if err := h.inventory.SetPrice(r.Context(), slotID, req.Price); err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"slot_id": slotID,
		"price":   req.Price,
	})
}

// DeleteSlot handles DELETE /api/v1/slots/{slot_id}
func (h *VendingHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "slot_id")
	if slotID == "" {
		response.Error(w, apierror.BadRequest("slot_id is required"))
		return
	}

	if err := h.inventory.DeleteSlot(r.Context(), slotID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

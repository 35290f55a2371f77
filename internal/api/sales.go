package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"

	"pharmachain/m/domain"
	"pharmachain/m/internal/catalog"
	"pharmachain/m/internal/engine"
	"pharmachain/m/internal/ledger"
)

type saleRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacyAdmin, domain.RoleClerk) {
		return
	}
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.catalog.Get(r.Context(), req.ItemID)
	if errors.Is(err, catalog.ErrNotFound) {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load item")
		return
	}
	if !canTouchItem(r, item) {
		respondError(w, http.StatusForbidden, "item belongs to another pharmacy")
		return
	}

	staffID := r.Context().Value(ctxAccountID).(int64)
	sale, err := h.sales.Sell(r.Context(), req.ItemID, req.Quantity, staffID)
	switch {
	case errors.Is(err, engine.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "quantity must be positive")
	case errors.Is(err, engine.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, engine.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient stock")
	case errors.Is(err, engine.ErrTransactionConflict):
		respondError(w, http.StatusConflict, "transaction conflict, try again")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "unable to record sale")
	default:
		respondJSON(w, http.StatusCreated, sale)
	}
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	sale, err := h.ledger.Get(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		respondError(w, http.StatusNotFound, "sale not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}

	role := r.Context().Value(ctxRole).(domain.Role)
	if role != domain.RoleSystemAdmin {
		item, err := h.catalog.Get(r.Context(), sale.ItemID)
		if err != nil || !canTouchItem(r, item) {
			respondError(w, http.StatusNotFound, "sale not found")
			return
		}
	}
	respondJSON(w, http.StatusOK, sale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin, domain.RolePharmacyAdmin) {
		return
	}
	sales, ok := h.salesReport(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) exportSales(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin, domain.RolePharmacyAdmin) {
		return
	}
	sales, ok := h.salesReport(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "item_id", "quantity", "created_at", "staff_id"})
	for _, sale := range sales {
		_ = writer.Write([]string{
			strconv.FormatInt(sale.ID, 10),
			strconv.FormatInt(sale.ItemID, 10),
			strconv.FormatInt(sale.Quantity, 10),
			sale.CreatedAt,
			strconv.FormatInt(sale.StaffID, 10),
		})
	}
	writer.Flush()
}

// salesReport resolves scope and date bounds for the report endpoints. On
// failure it writes the error response and returns ok=false.
func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) ([]domain.Sale, bool) {
	scope, err := h.pharmacyScope(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	sales, err := h.ledger.ListByPharmacy(r.Context(), scope, from, to)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales, true
}

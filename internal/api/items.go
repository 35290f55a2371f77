package api

import (
	"errors"
	"net/http"
	"strings"

	"pharmachain/m/domain"
	"pharmachain/m/internal/catalog"
	"pharmachain/m/internal/engine"
)

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin, domain.RolePharmacyAdmin) {
		return
	}
	scope, err := h.pharmacyScope(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in catalog.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.catalog.Create(r.Context(), scope, in)
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrCodeTaken):
		respondError(w, http.StatusConflict, "item code already in use")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "unable to create item")
	default:
		respondJSON(w, http.StatusCreated, item)
	}
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin, domain.RolePharmacyAdmin) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	existing, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load item")
		return
	}
	if !canTouchItem(r, existing) {
		respondError(w, http.StatusForbidden, "item belongs to another pharmacy")
		return
	}

	var in catalog.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.catalog.Update(r.Context(), id, in)
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrCodeTaken):
		respondError(w, http.StatusConflict, "item code already in use")
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, "item not found")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "unable to update item")
	default:
		respondJSON(w, http.StatusOK, item)
	}
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	scope, err := h.pharmacyScope(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.catalog.List(r.Context(), scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list items")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) searchItems(w http.ResponseWriter, r *http.Request) {
	scope, err := h.pharmacyScope(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	keyword := strings.TrimSpace(r.URL.Query().Get("query"))
	if keyword == "" {
		items, err := h.catalog.List(r.Context(), scope)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to list items")
			return
		}
		respondJSON(w, http.StatusOK, items)
		return
	}
	items, err := h.catalog.Search(r.Context(), scope, keyword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to search items")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin, domain.RolePharmacyAdmin) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	existing, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load item")
		return
	}
	if !canTouchItem(r, existing) {
		respondError(w, http.StatusForbidden, "item belongs to another pharmacy")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	outcome, err := h.guard.DeleteItem(r.Context(), id, force)

	var blocked *engine.ReferentialBlockError
	switch {
	case errors.As(err, &blocked):
		// Blocked is recoverable: the operator may confirm and re-invoke
		// with force=true. Failed conflicts carry no references field.
		respondJSON(w, http.StatusConflict, map[string]any{
			"blocked":    true,
			"references": blocked.References,
		})
	case errors.Is(err, engine.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, engine.ErrTransactionConflict):
		respondError(w, http.StatusConflict, "transaction conflict, try again")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "unable to delete item")
	default:
		respondJSON(w, http.StatusOK, map[string]any{
			"deleted":  true,
			"cascaded": outcome.Cascaded,
		})
	}
}

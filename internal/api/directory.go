package api

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pharmachain/m/domain"
)

// Account management (system admin only)

type accountRequest struct {
	Username   string       `json:"username"`
	Secret     string       `json:"secret"`
	Role       *domain.Role `json:"role"`
	PharmacyID *int64       `json:"pharmacy_id"`
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin) {
		return
	}
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Secret == "" || req.Role == nil {
		respondError(w, http.StatusBadRequest, "username, secret and role are required")
		return
	}
	if *req.Role != domain.RoleSystemAdmin && req.PharmacyID == nil {
		respondError(w, http.StatusBadRequest, "pharmacy_id is required for branch staff")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure secret")
		return
	}

	var id int64
	err = h.db.QueryRowxContext(r.Context(),
		`INSERT INTO accounts (username, secret, role, pharmacy_id) VALUES (?, ?, ?, ?) RETURNING id`,
		req.Username, hashed, int(*req.Role), req.PharmacyID).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "username already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create account")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Account{
		ID:         id,
		Username:   req.Username,
		Role:       *req.Role,
		PharmacyID: req.PharmacyID,
	})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin) {
		return
	}
	var accounts []domain.Account
	err := h.db.SelectContext(r.Context(), &accounts,
		`SELECT id, username, role, pharmacy_id, created_at FROM accounts ORDER BY id`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list accounts")
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Role == nil {
		respondError(w, http.StatusBadRequest, "username and role are required")
		return
	}
	if *req.Role != domain.RoleSystemAdmin && req.PharmacyID == nil {
		respondError(w, http.StatusBadRequest, "pharmacy_id is required for branch staff")
		return
	}

	res, err := h.db.ExecContext(r.Context(),
		`UPDATE accounts SET username = ?, role = ?, pharmacy_id = ? WHERE id = ?`,
		req.Username, int(*req.Role), req.PharmacyID, id)
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "username already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to update account")
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}

	if req.Secret != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to secure secret")
			return
		}
		if _, err := h.db.ExecContext(r.Context(), `UPDATE accounts SET secret = ? WHERE id = ?`, hashed, id); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update secret")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	res, err := h.db.ExecContext(r.Context(), `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			respondError(w, http.StatusConflict, "account has recorded sales")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to delete account")
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Pharmacy management (system admin only)

type pharmacyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (h *Handler) createPharmacy(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin) {
		return
	}
	var req pharmacyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	var id int64
	err := h.db.QueryRowxContext(r.Context(),
		`INSERT INTO pharmacies (name, address) VALUES (?, ?) RETURNING id`,
		req.Name, req.Address).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create pharmacy")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Pharmacy{ID: id, Name: req.Name, Address: req.Address})
}

func (h *Handler) listPharmacies(w http.ResponseWriter, r *http.Request) {
	var pharmacies []domain.Pharmacy
	err := h.db.SelectContext(r.Context(), &pharmacies,
		`SELECT id, name, address, created_at FROM pharmacies ORDER BY id`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list pharmacies")
		return
	}
	respondJSON(w, http.StatusOK, pharmacies)
}

func (h *Handler) updatePharmacy(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid pharmacy id")
		return
	}
	var req pharmacyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	res, err := h.db.ExecContext(r.Context(),
		`UPDATE pharmacies SET name = ?, address = ? WHERE id = ?`, req.Name, req.Address, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update pharmacy")
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		respondError(w, http.StatusNotFound, "pharmacy not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deletePharmacy(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleSystemAdmin) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid pharmacy id")
		return
	}
	res, err := h.db.ExecContext(r.Context(), `DELETE FROM pharmacies WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			respondError(w, http.StatusConflict, "pharmacy still has items or staff")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to delete pharmacy")
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		respondError(w, http.StatusNotFound, "pharmacy not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

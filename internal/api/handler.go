package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"pharmachain/m/domain"
	"pharmachain/m/internal/catalog"
	"pharmachain/m/internal/engine"
	"pharmachain/m/internal/ledger"
)

type ctxKey string

const (
	ctxAccountID  ctxKey = "accountID"
	ctxRole       ctxKey = "role"
	ctxPharmacyID ctxKey = "pharmacyID"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	catalog  *catalog.Store
	ledger   *ledger.Store
	sales    *engine.Coordinator
	guard    *engine.Guard
	secret   string
	tokenTTL time.Duration
	log      zerolog.Logger
}

// New constructs a Handler and the core services it fronts.
func New(db *sqlx.DB, secret string, tokenTTL time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		db:       db,
		catalog:  catalog.NewStore(db),
		ledger:   ledger.NewStore(db),
		sales:    engine.NewCoordinator(db, log),
		guard:    engine.NewGuard(db, log),
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Post("/auth/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.createAccount)
			r.Get("/", h.listAccounts)
			r.Put("/{id}", h.updateAccount)
			r.Delete("/{id}", h.deleteAccount)
		})

		pr.Route("/pharmacies", func(r chi.Router) {
			r.Post("/", h.createPharmacy)
			r.Get("/", h.listPharmacies)
			r.Put("/{id}", h.updatePharmacy)
			r.Delete("/{id}", h.deletePharmacy)
		})

		pr.Route("/items", func(r chi.Router) {
			r.Post("/", h.createItem)
			r.Get("/", h.listItems)
			r.Get("/search", h.searchItems)
			r.Put("/{id}", h.updateItem)
			r.Delete("/{id}", h.deleteItem)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Post("/", h.createSale)
			r.Get("/", h.listSales)
			r.Get("/export", h.exportSales)
			r.Get("/{id}", h.getSale)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication

type authClaims struct {
	AccountID  int64  `json:"account_id"`
	Role       int    `json:"role"`
	PharmacyID *int64 `json:"pharmacy_id,omitempty"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(account domain.Account) (string, error) {
	claims := authClaims{
		AccountID:  account.ID,
		Role:       int(account.Role),
		PharmacyID: account.PharmacyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		role, err := domain.ParseRole(claims.Role)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid role claim")
			return
		}
		ctx := context.WithValue(r.Context(), ctxAccountID, claims.AccountID)
		ctx = context.WithValue(ctx, ctxRole, role)
		ctx = context.WithValue(ctx, ctxPharmacyID, claims.PharmacyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...domain.Role) bool {
	role, ok := r.Context().Value(ctxRole).(domain.Role)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	for _, allowedRole := range allowed {
		if role == allowedRole {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

// pharmacyScope resolves which pharmacy the caller may touch. System admins
// name one explicitly via the pharmacy_id query param; branch staff are fixed
// to their own pharmacy.
func (h *Handler) pharmacyScope(r *http.Request) (int64, error) {
	role := r.Context().Value(ctxRole).(domain.Role)
	switch role {
	case domain.RoleSystemAdmin:
		id, err := strconv.ParseInt(r.URL.Query().Get("pharmacy_id"), 10, 64)
		if err != nil || id <= 0 {
			return 0, errors.New("valid pharmacy_id is required")
		}
		return id, nil
	case domain.RolePharmacyAdmin, domain.RoleClerk:
		pharmacyID, _ := r.Context().Value(ctxPharmacyID).(*int64)
		if pharmacyID == nil {
			return 0, errors.New("account is not attached to a pharmacy")
		}
		return *pharmacyID, nil
	default:
		return 0, fmt.Errorf("unhandled role %s", role)
	}
}

// canTouchItem reports whether the caller's scope covers the item's pharmacy.
func canTouchItem(r *http.Request, item domain.Item) bool {
	role := r.Context().Value(ctxRole).(domain.Role)
	switch role {
	case domain.RoleSystemAdmin:
		return true
	case domain.RolePharmacyAdmin, domain.RoleClerk:
		pharmacyID, _ := r.Context().Value(ctxPharmacyID).(*int64)
		return pharmacyID != nil && *pharmacyID == item.PharmacyID
	default:
		return false
	}
}

// Auth handlers

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string         `json:"token"`
	Account domain.Account `json:"account"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var account domain.Account
	err := h.db.Get(&account, `SELECT id, username, secret, role, pharmacy_id FROM accounts WHERE username = ?`, req.Username)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Secret), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(account)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	account.Secret = ""
	respondJSON(w, http.StatusOK, authResponse{Token: token, Account: account})
}

// Helpers

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

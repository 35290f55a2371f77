package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pharmachain/m/domain"
)

var (
	// ErrNotFound is returned when an item id does not resolve.
	ErrNotFound = errors.New("item not found")
	// ErrCodeTaken is returned when an item code is already in use anywhere
	// in the chain. Codes are unique system-wide.
	ErrCodeTaken = errors.New("item code already in use")
	// ErrInvalidInput wraps field validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// ItemInput carries the caller-editable fields of an item. The owning
// pharmacy is fixed at creation and never part of an update.
type ItemInput struct {
	Name           string          `json:"name"`
	Manufacturer   string          `json:"manufacturer"`
	Code           string          `json:"code"`
	Price          decimal.Decimal `json:"price"`
	QuantityOnHand int64           `json:"quantity_on_hand"`
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if in.QuantityOnHand < 0 {
		return fmt.Errorf("%w: quantity on hand must not be negative", ErrInvalidInput)
	}
	return nil
}

// Store owns item rows. It never caches rows beyond a single call; safe
// decrements are the sale transaction coordinator's job, not this layer's.
type Store struct {
	db *sqlx.DB
}

// NewStore constructs a Store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new item under the given pharmacy.
func (s *Store) Create(ctx context.Context, pharmacyID int64, in ItemInput) (domain.Item, error) {
	if err := in.validate(); err != nil {
		return domain.Item{}, err
	}
	var id int64
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO items (name, manufacturer, code, price, quantity_on_hand, pharmacy_id) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		in.Name, in.Manufacturer, in.Code, in.Price, in.QuantityOnHand, pharmacyID).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Item{}, ErrCodeTaken
		}
		return domain.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return s.Get(ctx, id)
}

// Update overwrites every field except the id and the owning pharmacy.
func (s *Store) Update(ctx context.Context, id int64, in ItemInput) (domain.Item, error) {
	if err := in.validate(); err != nil {
		return domain.Item{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET name = ?, manufacturer = ?, code = ?, price = ?, quantity_on_hand = ? WHERE id = ?`,
		in.Name, in.Manufacturer, in.Code, in.Price, in.QuantityOnHand, id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Item{}, ErrCodeTaken
		}
		return domain.Item{}, fmt.Errorf("update item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Item{}, fmt.Errorf("update item: %w", err)
	}
	if rows == 0 {
		return domain.Item{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Get fetches one item by id.
func (s *Store) Get(ctx context.Context, id int64) (domain.Item, error) {
	var item domain.Item
	err := s.db.GetContext(ctx, &item,
		`SELECT id, name, manufacturer, code, price, quantity_on_hand, pharmacy_id FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// List returns every item stocked by one pharmacy.
func (s *Store) List(ctx context.Context, pharmacyID int64) ([]domain.Item, error) {
	var items []domain.Item
	err := s.db.SelectContext(ctx, &items,
		`SELECT id, name, manufacturer, code, price, quantity_on_hand, pharmacy_id FROM items WHERE pharmacy_id = ? ORDER BY name`,
		pharmacyID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Search matches the keyword against name, manufacturer and code within one
// pharmacy. SQLite LIKE is case-insensitive for ASCII.
func (s *Store) Search(ctx context.Context, pharmacyID int64, keyword string) ([]domain.Item, error) {
	like := "%" + strings.TrimSpace(keyword) + "%"
	var items []domain.Item
	err := s.db.SelectContext(ctx, &items,
		`SELECT id, name, manufacturer, code, price, quantity_on_hand, pharmacy_id FROM items
         WHERE pharmacy_id = ? AND (name LIKE ? OR manufacturer LIKE ? OR code LIKE ?)
         ORDER BY name`,
		pharmacyID, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

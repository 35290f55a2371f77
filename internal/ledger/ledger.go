package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmachain/m/domain"
)

// ErrNotFound is returned when a sale id does not resolve.
var ErrNotFound = errors.New("sale not found")

// Store reads the append-only sales record. New rows are written only by the
// sale transaction coordinator, inside its transaction; forced item deletion
// is the one path that removes them.
type Store struct {
	db *sqlx.DB
}

// NewStore constructs a Store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Get fetches one sale by id.
func (s *Store) Get(ctx context.Context, id int64) (domain.Sale, error) {
	var sale domain.Sale
	err := s.db.GetContext(ctx, &sale,
		`SELECT id, item_id, quantity, created_at, staff_id FROM sales WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, ErrNotFound
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

// ListByItem returns the sales referencing one item, oldest first.
func (s *Store) ListByItem(ctx context.Context, itemID int64) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := s.db.SelectContext(ctx, &sales,
		`SELECT id, item_id, quantity, created_at, staff_id FROM sales WHERE item_id = ? ORDER BY id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list sales by item: %w", err)
	}
	return sales, nil
}

// CountByItem returns the number of sales referencing one item.
func (s *Store) CountByItem(ctx context.Context, itemID int64) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sales WHERE item_id = ?`, itemID)
	if err != nil {
		return 0, fmt.Errorf("count sales by item: %w", err)
	}
	return count, nil
}

// ListByPharmacy returns the sales recorded against one pharmacy's items,
// newest first, optionally bounded by YYYY-MM-DD dates (inclusive).
func (s *Store) ListByPharmacy(ctx context.Context, pharmacyID int64, from, to string) ([]domain.Sale, error) {
	query := `SELECT s.id, s.item_id, s.quantity, s.created_at, s.staff_id FROM sales s
              JOIN items i ON i.id = s.item_id
              WHERE i.pharmacy_id = ?`
	args := []any{pharmacyID}
	if from != "" {
		if _, err := time.Parse("2006-01-02", from); err != nil {
			return nil, fmt.Errorf("from must be in YYYY-MM-DD format")
		}
		query += " AND DATE(s.created_at) >= ?"
		args = append(args, from)
	}
	if to != "" {
		if _, err := time.Parse("2006-01-02", to); err != nil {
			return nil, fmt.Errorf("to must be in YYYY-MM-DD format")
		}
		query += " AND DATE(s.created_at) <= ?"
		args = append(args, to)
	}
	query += " ORDER BY s.id DESC"

	var sales []domain.Sale
	if err := s.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, fmt.Errorf("list sales by pharmacy: %w", err)
	}
	return sales, nil
}

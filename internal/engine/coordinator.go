package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"pharmachain/m/domain"
)

// maxAttempts bounds the retry loop for store-level write contention.
const maxAttempts = 3

// Coordinator executes the stock check, the decrement and the ledger append
// as one atomic unit. Two concurrent sales against the same item can never
// both pass the check against a stale count: the check and the decrement are
// a single conditional UPDATE inside the transaction.
type Coordinator struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(db *sqlx.DB, log zerolog.Logger) *Coordinator {
	return &Coordinator{db: db, log: log}
}

// Sell records a sale of quantity units of the item by the staff account.
// A failure before commit leaves no observable state change.
func (c *Coordinator) Sell(ctx context.Context, itemID, quantity, staffID int64) (domain.Sale, error) {
	if quantity <= 0 {
		return domain.Sale{}, ErrInvalidQuantity
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sale, err := c.sellOnce(ctx, itemID, quantity, staffID)
		if err == nil {
			return sale, nil
		}
		if !isBusy(err) {
			return domain.Sale{}, err
		}
		c.log.Warn().
			Int64("item_id", itemID).
			Int("attempt", attempt).
			Msg("sale transaction contention, retrying")
	}
	return domain.Sale{}, ErrTransactionConflict
}

func (c *Coordinator) sellOnce(ctx context.Context, itemID, quantity, staffID int64) (domain.Sale, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity_on_hand = quantity_on_hand - ? WHERE id = ? AND quantity_on_hand >= ?`,
		quantity, itemID, quantity)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("decrement stock: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Sale{}, fmt.Errorf("decrement stock: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing item from a stock shortage.
		var onHand int64
		err := tx.GetContext(ctx, &onHand, `SELECT quantity_on_hand FROM items WHERE id = ?`, itemID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sale{}, ErrItemNotFound
		}
		if err != nil {
			return domain.Sale{}, fmt.Errorf("check stock: %w", err)
		}
		return domain.Sale{}, ErrInsufficientStock
	}

	var saleID int64
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO sales (item_id, quantity, staff_id) VALUES (?, ?, ?) RETURNING id`,
		itemID, quantity, staffID).Scan(&saleID)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("append sale: %w", err)
	}

	var sale domain.Sale
	err = tx.GetContext(ctx, &sale,
		`SELECT id, item_id, quantity, created_at, staff_id FROM sales WHERE id = ?`, saleID)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("read sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Sale{}, fmt.Errorf("commit sale: %w", err)
	}
	return sale, nil
}

// isBusy reports whether the error is SQLite lock contention, the one failure
// worth retrying.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "SQLITE_LOCKED") ||
		strings.Contains(msg, "database is locked")
}

package engine

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Guard decides whether an item can be removed outright or requires a forced
// cascade over its sales history. Sales are normally immutable; the
// confirm-then-force protocol makes the administrative override explicit
// instead of cascading silently.
type Guard struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(db *sqlx.DB, log zerolog.Logger) *Guard {
	return &Guard{db: db, log: log}
}

// DeletionOutcome reports how many sales were cascaded along with the item.
type DeletionOutcome struct {
	Cascaded int64 `json:"cascaded"`
}

// DeleteItem removes the item if nothing references it. When sales reference
// it, the call returns a ReferentialBlockError unless force is set, in which
// case the sales and the item are deleted in one atomic unit. A partial
// cascade is never observable.
func (g *Guard) DeleteItem(ctx context.Context, itemID int64, force bool) (DeletionOutcome, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := g.deleteOnce(ctx, itemID, force)
		if err == nil {
			return out, nil
		}
		if !isBusy(err) {
			return DeletionOutcome{}, err
		}
		g.log.Warn().
			Int64("item_id", itemID).
			Int("attempt", attempt).
			Msg("item deletion contention, retrying")
	}
	return DeletionOutcome{}, ErrTransactionConflict
}

func (g *Guard) deleteOnce(ctx context.Context, itemID int64, force bool) (DeletionOutcome, error) {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return DeletionOutcome{}, fmt.Errorf("begin deletion: %w", err)
	}
	defer tx.Rollback()

	var refs int64
	if err := tx.GetContext(ctx, &refs, `SELECT COUNT(*) FROM sales WHERE item_id = ?`, itemID); err != nil {
		return DeletionOutcome{}, fmt.Errorf("count references: %w", err)
	}
	if refs > 0 && !force {
		return DeletionOutcome{}, &ReferentialBlockError{References: refs}
	}
	if refs > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE item_id = ?`, itemID); err != nil {
			return DeletionOutcome{}, fmt.Errorf("cascade sales: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return DeletionOutcome{}, fmt.Errorf("delete item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return DeletionOutcome{}, fmt.Errorf("delete item: %w", err)
	}
	if rows == 0 {
		return DeletionOutcome{}, ErrItemNotFound
	}

	if err := tx.Commit(); err != nil {
		return DeletionOutcome{}, fmt.Errorf("commit deletion: %w", err)
	}
	if refs > 0 {
		g.log.Info().Int64("item_id", itemID).Int64("cascaded", refs).Msg("forced item deletion cascaded sales")
	}
	return DeletionOutcome{Cascaded: refs}, nil
}

package engine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"pharmachain/m/internal/catalog"
	"pharmachain/m/internal/ledger"
)

func TestDeleteItemWithoutSales(t *testing.T) {
	db := newTestDB(t)
	pharmacyID := mustCreatePharmacy(t, db)
	itemID := mustCreateItem(t, db, pharmacyID, "HXZQ004", "12.50", 180)
	guard := NewGuard(db, zerolog.Nop())

	outcome, err := guard.DeleteItem(context.Background(), itemID, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), outcome.Cascaded)

	_, err = catalog.NewStore(db).Get(context.Background(), itemID)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteItemBlockedWithoutForce(t *testing.T) {
	db := newTestDB(t)
	pharmacyID := mustCreatePharmacy(t, db)
	staffID := mustCreateAccount(t, db, "sales", 2, pharmacyID)
	itemID := mustCreateItem(t, db, pharmacyID, "ASPL005", "22.00", 100)
	coord := NewCoordinator(db, zerolog.Nop())
	guard := NewGuard(db, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := coord.Sell(context.Background(), itemID, 1, staffID)
		require.NoError(t, err)
	}

	_, err := guard.DeleteItem(context.Background(), itemID, false)
	var blocked *ReferentialBlockError
	require.ErrorAs(t, err, &blocked)
	require.Equal(t, int64(3), blocked.References)

	// Blocked means untouched: the item and every sale survive.
	require.Equal(t, int64(97), itemStock(t, db, itemID))
	require.Equal(t, int64(3), saleCount(t, db, itemID))
}

func TestDeleteItemForceCascades(t *testing.T) {
	db := newTestDB(t)
	pharmacyID := mustCreatePharmacy(t, db)
	staffID := mustCreateAccount(t, db, "sales", 2, pharmacyID)
	itemID := mustCreateItem(t, db, pharmacyID, "TBKW006", "45.00", 80)
	coord := NewCoordinator(db, zerolog.Nop())
	guard := NewGuard(db, zerolog.Nop())
	sales := ledger.NewStore(db)

	saleIDs := make([]int64, 0, 3)
	for i := 0; i < 3; i++ {
		sale, err := coord.Sell(context.Background(), itemID, 2, staffID)
		require.NoError(t, err)
		saleIDs = append(saleIDs, sale.ID)
	}

	outcome, err := guard.DeleteItem(context.Background(), itemID, true)
	require.NoError(t, err)
	require.Equal(t, int64(3), outcome.Cascaded)

	_, err = catalog.NewStore(db).Get(context.Background(), itemID)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	for _, saleID := range saleIDs {
		_, err := sales.Get(context.Background(), saleID)
		require.ErrorIs(t, err, ledger.ErrNotFound)
	}
	require.Equal(t, int64(0), saleCount(t, db, itemID))
}

func TestDeleteItemUnknown(t *testing.T) {
	db := newTestDB(t)
	mustCreatePharmacy(t, db)
	guard := NewGuard(db, zerolog.Nop())

	_, err := guard.DeleteItem(context.Background(), 4242, false)
	require.ErrorIs(t, err, ErrItemNotFound)

	_, err = guard.DeleteItem(context.Background(), 4242, true)
	require.ErrorIs(t, err, ErrItemNotFound)
}

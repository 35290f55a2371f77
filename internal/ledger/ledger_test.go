package ledger

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"pharmachain/m/internal/database"
	"pharmachain/m/internal/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

func mustCreateFixtures(t *testing.T, db *sqlx.DB, pharmacyName, code string) (pharmacyID, itemID, staffID int64) {
	t.Helper()
	require.NoError(t, db.QueryRowx(`INSERT INTO pharmacies (name, address) VALUES (?, ?) RETURNING id`, pharmacyName, "").Scan(&pharmacyID))
	require.NoError(t, db.QueryRowx(`INSERT INTO accounts (username, secret, role, pharmacy_id) VALUES (?, ?, 2, ?) RETURNING id`, "clerk-"+code, "hash", pharmacyID).Scan(&staffID))
	require.NoError(t, db.QueryRowx(`INSERT INTO items (name, manufacturer, code, price, quantity_on_hand, pharmacy_id) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		"Item "+code, "Acme Pharma", code, "10.00", 100, pharmacyID).Scan(&itemID))
	return pharmacyID, itemID, staffID
}

func mustRecordSale(t *testing.T, db *sqlx.DB, itemID, staffID, quantity int64) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.QueryRowx(`INSERT INTO sales (item_id, quantity, staff_id) VALUES (?, ?, ?) RETURNING id`, itemID, quantity, staffID).Scan(&id))
	return id
}

func TestGetUnknownSale(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	_, err := store.Get(context.Background(), 12345)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetSale(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	_, itemID, staffID := mustCreateFixtures(t, db, "Head Branch", "AMXL123")

	saleID := mustRecordSale(t, db, itemID, staffID, 4)
	sale, err := store.Get(context.Background(), saleID)
	require.NoError(t, err)
	require.Equal(t, itemID, sale.ItemID)
	require.Equal(t, int64(4), sale.Quantity)
	require.Equal(t, staffID, sale.StaffID)
	require.NotEmpty(t, sale.CreatedAt)
}

func TestCountAndListByItem(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	_, itemID, staffID := mustCreateFixtures(t, db, "Head Branch", "BLG456")
	_, otherItem, _ := mustCreateFixtures(t, db, "East Branch", "BLF789")

	first := mustRecordSale(t, db, itemID, staffID, 1)
	second := mustRecordSale(t, db, itemID, staffID, 2)
	mustRecordSale(t, db, otherItem, staffID, 9)

	count, err := store.CountByItem(context.Background(), itemID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	sales, err := store.ListByItem(context.Background(), itemID)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	require.Equal(t, first, sales[0].ID)
	require.Equal(t, second, sales[1].ID)
}

func TestListByPharmacy(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	pharmacyID, itemID, staffID := mustCreateFixtures(t, db, "Head Branch", "WEISC002")
	_, otherItem, otherStaff := mustCreateFixtures(t, db, "East Branch", "HXZQ004")

	older := mustRecordSale(t, db, itemID, staffID, 3)
	newer := mustRecordSale(t, db, itemID, staffID, 5)
	mustRecordSale(t, db, otherItem, otherStaff, 7)

	sales, err := store.ListByPharmacy(context.Background(), pharmacyID, "", "")
	require.NoError(t, err)
	require.Len(t, sales, 2)
	require.Equal(t, newer, sales[0].ID)
	require.Equal(t, older, sales[1].ID)
}

func TestListByPharmacyRejectsBadDates(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	pharmacyID, _, _ := mustCreateFixtures(t, db, "Head Branch", "ASPL005")

	_, err := store.ListByPharmacy(context.Background(), pharmacyID, "01-02-2026", "")
	require.Error(t, err)
	_, err = store.ListByPharmacy(context.Background(), pharmacyID, "", "not-a-date")
	require.Error(t, err)
}

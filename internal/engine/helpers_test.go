package engine

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"pharmachain/m/domain"
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

func mustCreatePharmacy(t *testing.T, db *sqlx.DB) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(`INSERT INTO pharmacies (name, address) VALUES (?, ?) RETURNING id`,
		"Head Branch", "Chaoyang District, Beijing").Scan(&id)
	require.NoError(t, err)
	return id
}

func mustCreateAccount(t *testing.T, db *sqlx.DB, username string, role domain.Role, pharmacyID int64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(`INSERT INTO accounts (username, secret, role, pharmacy_id) VALUES (?, ?, ?, ?) RETURNING id`,
		username, "hash", int(role), pharmacyID).Scan(&id)
	require.NoError(t, err)
	return id
}

func mustCreateItem(t *testing.T, db *sqlx.DB, pharmacyID int64, code, price string, stock int64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(`INSERT INTO items (name, manufacturer, code, price, quantity_on_hand, pharmacy_id) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		"Item "+code, "Acme Pharma", code, price, stock, pharmacyID).Scan(&id)
	require.NoError(t, err)
	return id
}

func itemStock(t *testing.T, db *sqlx.DB, itemID int64) int64 {
	t.Helper()
	var stock int64
	require.NoError(t, db.Get(&stock, `SELECT quantity_on_hand FROM items WHERE id = ?`, itemID))
	return stock
}

func saleCount(t *testing.T, db *sqlx.DB, itemID int64) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM sales WHERE item_id = ?`, itemID))
	return count
}

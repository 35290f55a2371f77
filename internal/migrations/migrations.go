package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema for the chain backend. Statements are
// ordered so foreign key targets exist before their referrers.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS pharmacies (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            address TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS accounts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            secret TEXT NOT NULL,
            role INTEGER NOT NULL,
            pharmacy_id INTEGER,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(pharmacy_id) REFERENCES pharmacies(id)
        );`,
		`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            manufacturer TEXT,
            code TEXT NOT NULL UNIQUE,
            price DECIMAL(10,2) NOT NULL,
            quantity_on_hand INTEGER NOT NULL CHECK (quantity_on_hand >= 0),
            pharmacy_id INTEGER NOT NULL,
            FOREIGN KEY(pharmacy_id) REFERENCES pharmacies(id)
        );`,
		`CREATE TABLE IF NOT EXISTS sales (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            item_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            staff_id INTEGER,
            FOREIGN KEY(item_id) REFERENCES items(id),
            FOREIGN KEY(staff_id) REFERENCES accounts(id)
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

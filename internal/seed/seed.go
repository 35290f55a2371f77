package seed

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"pharmachain/m/domain"
)

type seedItem struct {
	name         string
	manufacturer string
	code         string
	price        string
	stock        int64
}

// The starting stock of the head branch.
var seedItems = []seedItem{
	{"Amoxicillin Capsules", "Yunnan Baiyao", "AMXL123", "25.50", 100},
	{"Banlangen Granules", "Tongrentang", "BLG456", "18.00", 80},
	{"Ibuprofen Sustained-Release Capsules", "Tianjin SmithKline", "BLF789", "30.00", 150},
	{"Compound Danshen Tablets", "Guangzhou Baiyunshan", "FFDS001", "20.50", 200},
	{"Vitamin C Tablets", "Yangshengtang", "WEISC002", "15.80", 300},
	{"Lianhua Qingwen Capsules", "Yiling Pharmaceutical", "LHWQ003", "28.00", 120},
	{"Huoxiang Zhengqi Liquid", "Taiji Group", "HXZQ004", "12.50", 180},
	{"Aspirin Enteric-Coated Tablets", "Bayer", "ASPL005", "22.00", 100},
	{"Cefixime Dispersible Tablets", "Baiyunshan Pharmaceutical", "TBKW006", "45.00", 80},
	{"Levofloxacin Hydrochloride Capsules", "Daiichi Sankyo", "YSLY007", "35.00", 90},
}

// Bootstrap installs the head branch, its staff accounts and starting stock
// when the database is empty. Safe to run on every boot.
func Bootstrap(db *sqlx.DB, log zerolog.Logger) error {
	var pharmacies int64
	if err := db.Get(&pharmacies, `SELECT COUNT(*) FROM pharmacies`); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if pharmacies > 0 {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	var pharmacyID int64
	err = tx.QueryRowx(`INSERT INTO pharmacies (name, address) VALUES (?, ?) RETURNING id`,
		"Head Branch", "Chaoyang District, Beijing").Scan(&pharmacyID)
	if err != nil {
		return fmt.Errorf("seed pharmacy: %w", err)
	}

	staff := []struct {
		username string
		secret   string
		role     domain.Role
		pharmacy *int64
	}{
		{"admin", "admin@pw", domain.RoleSystemAdmin, nil},
		{"manager", "manager@pw", domain.RolePharmacyAdmin, &pharmacyID},
		{"sales", "sales@pw", domain.RoleClerk, &pharmacyID},
	}
	for _, s := range staff {
		hashed, err := bcrypt.GenerateFromPassword([]byte(s.secret), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed secret: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO accounts (username, secret, role, pharmacy_id) VALUES (?, ?, ?, ?)`,
			s.username, hashed, int(s.role), s.pharmacy); err != nil {
			return fmt.Errorf("seed account %s: %w", s.username, err)
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO items (name, manufacturer, code, price, quantity_on_hand, pharmacy_id) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare item seed: %w", err)
	}
	defer stmt.Close()
	for _, it := range seedItems {
		if _, err := stmt.Exec(it.name, it.manufacturer, it.code, it.price, it.stock, pharmacyID); err != nil {
			return fmt.Errorf("seed item %s: %w", it.code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	log.Info().Int64("pharmacy_id", pharmacyID).Int("items", len(seedItems)).Msg("seeded head branch")
	return nil
}

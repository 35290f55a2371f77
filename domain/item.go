package domain

import "github.com/shopspring/decimal"

// Item is a stocked product owned by exactly one pharmacy. Codes are unique
// across the whole chain, not per pharmacy.
type Item struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Manufacturer   string          `db:"manufacturer" json:"manufacturer"`
	Code           string          `db:"code" json:"code"`
	Price          decimal.Decimal `db:"price" json:"price"`
	QuantityOnHand int64           `db:"quantity_on_hand" json:"quantity_on_hand"`
	PharmacyID     int64           `db:"pharmacy_id" json:"pharmacy_id"`
}

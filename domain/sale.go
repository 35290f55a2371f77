package domain

// Sale is one immutable ledger row: units of one item sold by one staff
// account at a point in time. Rows disappear only under a forced item cascade.
type Sale struct {
	ID        int64  `db:"id" json:"id"`
	ItemID    int64  `db:"item_id" json:"item_id"`
	Quantity  int64  `db:"quantity" json:"quantity"`
	CreatedAt string `db:"created_at" json:"created_at"`
	StaffID   int64  `db:"staff_id" json:"staff_id"`
}

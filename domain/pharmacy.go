package domain

type Pharmacy struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Address   string `db:"address" json:"address"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}

package domain

// Account is a staff login. PharmacyID is nil for system admins, who are not
// tied to a branch.
type Account struct {
	ID         int64  `db:"id" json:"id"`
	Username   string `db:"username" json:"username"`
	Secret     string `db:"secret" json:"secret,omitempty"`
	Role       Role   `db:"role" json:"role"`
	PharmacyID *int64 `db:"pharmacy_id" json:"pharmacy_id,omitempty"`
	CreatedAt  string `db:"created_at" json:"created_at,omitempty"`
}

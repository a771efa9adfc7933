package postgres

import "time"

type playerTableModel struct {
	ID            string    `db:"id"`
	Sport         string    `db:"sport"`
	CanonicalName string    `db:"canonical_name"`
	DisplayName   string    `db:"display_name"`
	Team          string    `db:"team"`
	Position      string    `db:"position"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type sourceIDRowModel struct {
	OwnerID    string `db:"owner_id"`
	Source     string `db:"source"`
	ExternalID string `db:"external_id"`
}

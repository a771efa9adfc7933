package postgres

import "time"

type gameTableModel struct {
	ID        string    `db:"id"`
	Sport     string    `db:"sport"`
	GameDate  time.Time `db:"game_date"`
	AwayTeam  string    `db:"away_team"`
	HomeTeam  string    `db:"home_team"`
	Season    int       `db:"season"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

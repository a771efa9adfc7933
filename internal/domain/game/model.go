package game

import (
	"fmt"
	"time"
)

// Status is the game lifecycle state.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinal      Status = "final"
)

// Game is the single authoritative row for one real-world game.
type Game struct {
	ID        string
	Sport     string
	GameDate  time.Time
	AwayTeam  string
	HomeTeam  string
	Season    int
	Status    Status
	SourceIDs map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if g.Sport == "" {
		return fmt.Errorf("game sport is required")
	}
	if g.GameDate.IsZero() {
		return fmt.Errorf("game date is required")
	}
	if g.AwayTeam == "" || g.HomeTeam == "" {
		return fmt.Errorf("game away and home teams are required")
	}
	if g.AwayTeam == g.HomeTeam {
		return fmt.Errorf("away_team and home_team must be different")
	}
	return nil
}

// DeriveSeason labels a game with the year its season started. A game
// played on or after the sport's rollover month belongs to that calendar
// year's season; earlier games belong to the previous year's.
func DeriveSeason(date time.Time, rollover time.Month) int {
	utc := date.UTC()
	if utc.Month() >= rollover {
		return utc.Year()
	}
	return utc.Year() - 1
}

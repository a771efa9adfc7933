package player

import (
	"fmt"
	"time"
)

// TeamUnknown is the sentinel stored when a provider record carries no team.
const TeamUnknown = "UNK"

// Player is the single authoritative row for one real-world athlete,
// regardless of how many provider systems describe them.
type Player struct {
	ID            string
	Sport         string
	CanonicalName string
	DisplayName   string
	Team          string
	Position      string
	Active        bool
	SourceIDs     map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Sport == "" {
		return fmt.Errorf("player sport is required")
	}
	if p.CanonicalName == "" {
		return fmt.Errorf("player canonical name is required")
	}
	if p.Team == "" {
		return fmt.Errorf("player team is required (use %q when unknown)", TeamUnknown)
	}
	return nil
}

// SourceID returns the external id this player carries for one provider.
func (p Player) SourceID(source string) (string, bool) {
	id, ok := p.SourceIDs[source]
	return id, ok
}

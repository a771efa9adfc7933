// Package alias exposes the externally curated player alias table. Rows are
// maintained by a separate curation process; this service only reads them.
package alias

// Alias maps one normalized spelling of a name, optionally narrowed by team,
// to a canonical player id.
type Alias struct {
	Sport    string
	Alias    string
	Team     string
	PlayerID string
}

package usecase

// Match methods, ordered from most to least authoritative. Each resolver
// walks its tiers in this order and stops at the first hit.
const (
	MatchMethodExternalID    = "external_id"
	MatchMethodTeamNameExact = "team_name_exact"
	MatchMethodNameOnly      = "name_only"
	MatchMethodNameAmbiguous = "name_only_ambiguous"
	MatchMethodAlias         = "alias"
	MatchMethodTimeWindow    = "teams_time_window"
	MatchMethodCreated       = "created"
)

// Match confidences reported to the audit sink per method.
const (
	confidenceExternalID    = 1.0
	confidenceTeamNameExact = 0.95
	confidenceAlias         = 0.9
	confidenceTimeWindow    = 0.9
	confidenceNameOnly      = 0.85
	confidenceNameAmbiguous = 0.6
)

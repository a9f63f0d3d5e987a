package domain

// Occupation is a row of the ESCO-style occupations taxonomy
type Occupation struct {
	ID                  string  `json:"csv_id"`
	PreferredLabel      string  `json:"preferred_label"`
	Description         *string `json:"description,omitempty"`
	OccupationGroupCode *string `json:"occupation_group_code,omitempty"`
}

// OccupationMatch is one row of the match_occupations_for_user procedure
type OccupationMatch struct {
	OccupationID      string   `json:"csv_id"`
	PreferredLabel    string   `json:"preferred_label,omitempty"`
	MatchPercent      float64  `json:"match_percent"`
	MissingEssentials []string `json:"missing_essentials"`
}

// TrendingOccupation is one row of the get_trending_occupations procedure
type TrendingOccupation struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	TrendingScore float64 `json:"trending_score"`
}

// OccupationDetail is an occupation with its group label and skill demands
type OccupationDetail struct {
	Occupation
	GroupLabel string  `json:"group_label"`
	Essentials []Skill `json:"essentials"`
	Optionals  []Skill `json:"optionals"`
}

// Skill relation types on occupation_to_skill_relations
const (
	RelationEssential = "essential"
	RelationOptional  = "optional"
)

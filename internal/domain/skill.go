package domain

// Skill is a row of the skills taxonomy
type Skill struct {
	ID             string  `json:"csv_id"`
	PreferredLabel string  `json:"preferred_label"`
	Description    *string `json:"description,omitempty"`
}

// GeneralSkillGroup collects skills that belong to no named group
const GeneralSkillGroup = "General"

// SkillGroup is one step of the assessment wizard: the skills of a single
// skill group that are relevant to the chosen occupation
type SkillGroup struct {
	Name   string  `json:"name"`
	Skills []Skill `json:"skills"`
}

// AssessmentSubmission is the wizard's final selection
type AssessmentSubmission struct {
	SkillIDs []string `json:"skill_ids"`
}

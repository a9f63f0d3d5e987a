package domain

import "time"

// Career goal statuses
const (
	GoalStatusActive   = "active"
	GoalStatusArchived = "archived"
)

// CareerGoal is a user_career_goals row
type CareerGoal struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"user_id"`
	TargetOccupationID string    `json:"target_occupation_id"`
	IsPrimaryGoal      bool      `json:"is_primary_goal"`
	TargetTimeline     string    `json:"target_timeline"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// GoalProgress summarizes how far the user is from the active goal
type GoalProgress struct {
	Goal              *CareerGoal `json:"goal"`
	Occupation        *Occupation `json:"occupation,omitempty"`
	MatchPercent      float64     `json:"match_percent"`
	MissingEssentials []Skill     `json:"missing_essentials"`
	OpenJobPostings   int         `json:"open_job_postings"`
}

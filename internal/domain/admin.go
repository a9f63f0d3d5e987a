package domain

import "time"

// AdminStats is the overview block of the admin dashboard
type AdminStats struct {
	TotalUsers           int     `json:"total_users"`
	CompletedAssessments int     `json:"completed_assessments"`
	CompletedOnboarding  int     `json:"completed_onboarding"`
	TodayUsers           int     `json:"today_users"`
	AdminUsers           int     `json:"admin_users"`
	AssessmentRate       float64 `json:"assessment_rate"`
	OnboardingRate       float64 `json:"onboarding_rate"`
}

// UserSummary is one row of the admin user list
type UserSummary struct {
	ID                       string    `json:"id"`
	Email                    string    `json:"email"`
	FullName                 string    `json:"full_name"`
	Role                     string    `json:"role"`
	SkillAssessmentCompleted bool      `json:"skill_assessment_completed"`
	OnboardingCompleted      bool      `json:"onboarding_completed"`
	CreatedAt                time.Time `json:"created_at"`
}

// UserDetail is the drill-down view of a single user
type UserDetail struct {
	Profile    *Profile     `json:"profile"`
	Skills     []Skill      `json:"skills"`
	Goals      []CareerGoal `json:"goals"`
	Occupation *Occupation  `json:"occupation,omitempty"`
}

// PlatformStats is the public landing-page counters block
type PlatformStats struct {
	Skills      int `json:"skills"`
	Occupations int `json:"occupations"`
	Users       int `json:"users"`
}

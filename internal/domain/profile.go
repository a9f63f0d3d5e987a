package domain

import "time"

// Profile is the server-owned user_profiles row, one-to-one with the auth
// user by id. Pointer fields are nullable in the table.
type Profile struct {
	ID                       string     `json:"id"`
	Email                    string     `json:"email"`
	FullName                 string     `json:"full_name"`
	Gender                   *string    `json:"gender,omitempty"`
	DateOfBirth              *string    `json:"date_of_birth,omitempty"`
	AvatarURL                *string    `json:"avatar_url,omitempty"`
	Role                     string     `json:"role"`
	CurrentOccupationID      *string    `json:"current_occupation_id,omitempty"`
	SkillAssessmentCompleted bool       `json:"skill_assessment_completed"`
	OnboardingCompleted      bool       `json:"onboarding_completed"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
	LastLogin                *time.Time `json:"last_login,omitempty"`
}

// RoleAdmin is the profile role value the guards partition on
const RoleAdmin = "admin"

// ProfileCore is the minimal projection the reconciler works with
type ProfileCore struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Gender      *string `json:"gender,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

// PendingProfile is the client-staged profile data written at sign-up time,
// before the server-side row is guaranteed to exist. It is a write-once
// staging area: the reconciler deletes it after a successful merge.
type PendingProfile struct {
	FullName    string `json:"full_name,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// IsEmpty reports whether no field is set
func (p *PendingProfile) IsEmpty() bool {
	return p == nil || (p.FullName == "" && p.Gender == "" && p.DateOfBirth == "")
}

// ProfileSeed is the minimal record the reconciler inserts when the sign-up
// trigger did not create the row
type ProfileSeed struct {
	ID          string
	Email       string
	FullName    string
	Gender      *string
	DateOfBirth *string
}

// ProfilePatch carries only the fields an update should touch; nil fields
// are left alone
type ProfilePatch struct {
	FullName    *string
	Gender      *string
	DateOfBirth *string
}

// IsEmpty reports whether the patch would touch nothing
func (p ProfilePatch) IsEmpty() bool {
	return p.FullName == nil && p.Gender == nil && p.DateOfBirth == nil
}

// Fields lists the column names the patch touches
func (p ProfilePatch) Fields() []string {
	var fields []string
	if p.FullName != nil {
		fields = append(fields, "full_name")
	}
	if p.Gender != nil {
		fields = append(fields, "gender")
	}
	if p.DateOfBirth != nil {
		fields = append(fields, "date_of_birth")
	}
	return fields
}

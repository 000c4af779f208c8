package profile

import (
	"time"

	"github.com/darasabot/darasa/core"
)

// Organization-wide statuses
const (
	StatusOwner  = "Owner"
	StatusAdmin  = "Admin"
	StatusStaff  = "Staff"
	StatusMember = "Member"
)

var (
	AllStatuses = []string{StatusOwner, StatusAdmin, StatusStaff, StatusMember}

	statusRanks = map[string]int{
		StatusOwner:  4,
		StatusAdmin:  3,
		StatusStaff:  2,
		StatusMember: 1,
	}
)

// StatusRank returns the privilege rank of a status; 0 for unknown statuses.
func StatusRank(status string) int {
	return statusRanks[status]
}

func ValidStatus(status string) bool {
	_, ok := statusRanks[status]
	return ok
}

// Team roles; meaningful only while the profile belongs to a class.
const (
	RoleLead      = "lead"
	RoleAssistant = "assistant"
	RoleMember    = "member"
)

var AllTeamRoles = []string{RoleLead, RoleAssistant, RoleMember}

// Contact holds the optional free-text contact fields of a Profile.
type Contact struct {
	BirthDate      string `json:"birth_date"`
	Phone          string `json:"phone"`
	Email          string `json:"email" validate:"omitempty,email"`
	AdditionalInfo string `json:"additional_info"`
}

type Profile struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Contact   Contact `json:"contact"`
	OrgStatus string  `json:"org_status"`

	// ClassID is a weak reference to a Class; empty when not in a class.
	// TeamRole is set only while ClassID is set.
	ClassID  string `json:"class_id"`
	TeamRole string `json:"team_role"`

	PersonalHomework map[string]string `json:"personal_homework"`
	CreatedAt        time.Time         `json:"created_at"` // UTC
	UpdatedAt        time.Time         `json:"updated_at"` // UTC
}

// HasStatus reports whether the profile's status rank satisfies min's rank.
func (p *Profile) HasStatus(min string) bool {
	return StatusRank(p.OrgStatus) >= StatusRank(min)
}

func (p *Profile) InClass() bool { return p.ClassID != "" }

// IsClassOfficer reports whether the profile holds a managing role in its class.
func (p *Profile) IsClassOfficer() bool {
	return p.TeamRole == RoleLead || p.TeamRole == RoleAssistant
}

// NewProfile contains information needed to create a new Profile.
type NewProfile struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

func (np *NewProfile) Validate() error {
	np.Name = core.CleanString(np.Name)
	return core.Validate.Struct(np)
}

// Contact field keys accepted by Service.UpdateContactField.
const (
	FieldBirthDate      = "birth_date"
	FieldPhone          = "phone"
	FieldEmail          = "email"
	FieldAdditionalInfo = "additional_info"
)

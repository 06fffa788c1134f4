package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq" // Needed for pq.StringArray
	"gorm.io/gorm"
)

// Role is the closed set of account roles recognized by the command surface.
// Authorization decisions are made through the capability predicates below,
// never by comparing raw strings in handlers.
type Role string

const (
	RoleUser       Role = "user"
	RoleWorker     Role = "worker"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleWorker, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanAdminister reports whether the role may assign workers, review actions,
// update complaint status directly and delete complaints.
func (r Role) CanAdminister() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanWork reports whether the role may hold assignments and submit evidence.
func (r Role) CanWork() bool {
	return r == RoleWorker
}

// CanManageRoles reports whether the role may change other accounts' roles.
func (r Role) CanManageRoles() bool {
	return r == RoleSuperAdmin
}

// User represents an account known to the platform. Identity and sessions are
// resolved by the external identity provider; this record exists so the
// workflow can validate assignment targets and render reporter/worker names.
type User struct {
	ID    string `gorm:"primaryKey" json:"id"` // UUID
	Name  string `json:"name"`
	Email string `gorm:"uniqueIndex" json:"email"`
	Role  Role   `gorm:"type:text;not null;default:user" json:"role"`
	// Departments holds the complaint categories a worker covers.
	Departments pq.StringArray `gorm:"type:text[]" json:"departments"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the ID is unset.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintStatus is the closed set of complaint lifecycle states.
type ComplaintStatus string

const (
	ComplaintOpen        ComplaintStatus = "open"
	ComplaintInProgress  ComplaintStatus = "in_progress"
	ComplaintUnderReview ComplaintStatus = "under_review"
	ComplaintResolved    ComplaintStatus = "resolved"
	ComplaintClosed      ComplaintStatus = "closed"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintOpen, ComplaintInProgress, ComplaintUnderReview, ComplaintResolved, ComplaintClosed:
		return true
	}
	return false
}

// Complaint categories accepted on filing.
const (
	CategoryBiodegradable    = "biodegradable"
	CategoryNonBiodegradable = "non-biodegradable"
	CategoryOther            = "other"
)

// ValidCategory reports whether c is one of the accepted complaint categories.
func ValidCategory(c string) bool {
	return c == CategoryBiodegradable || c == CategoryNonBiodegradable || c == CategoryOther
}

// Complaint is a citizen-reported issue. ResolvedAt and ResolvedBy are set if
// and only if Status is resolved; every transition that touches them goes
// through the workflow service, which maintains that invariant.
type Complaint struct {
	ID          string          `gorm:"primaryKey" json:"id"` // UUID
	ReporterID  string          `gorm:"index;not null" json:"reporter_id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Category    string          `gorm:"type:varchar(30);not null" json:"category"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	// ImageKey is an opaque blob-store key; the core never inspects it.
	ImageKey   string          `json:"image_key,omitempty"`
	Status     ComplaintStatus `gorm:"type:text;not null;default:open" json:"status"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
	ResolvedBy *string         `json:"resolved_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Reporter *User    `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Actions  []Action `gorm:"foreignKey:ComplaintID" json:"actions,omitempty"`
}

// BeforeCreate assigns a fresh UUID when the ID is unset.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// ResolutionConsistent reports whether the resolved_at/resolved_by fields
// agree with the status: both set when resolved, both empty otherwise.
func (c *Complaint) ResolutionConsistent() bool {
	if c.Status == ComplaintResolved {
		return c.ResolvedAt != nil && c.ResolvedBy != nil
	}
	return c.ResolvedAt == nil && c.ResolvedBy == nil
}

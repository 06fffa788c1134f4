package models

import "time"

// ActionStatus is the closed set of action lifecycle states. An action never
// leaves closed or resolved; a rejected attempt is closed and a fresh action
// is appended, so the rows form an auditable retry chain per complaint.
type ActionStatus string

const (
	ActionInProgress  ActionStatus = "in_progress"
	ActionUnderReview ActionStatus = "under_review"
	ActionResolved    ActionStatus = "resolved"
	ActionClosed      ActionStatus = "closed"
)

func (s ActionStatus) Valid() bool {
	switch s {
	case ActionInProgress, ActionUnderReview, ActionResolved, ActionClosed:
		return true
	}
	return false
}

// Live reports whether the status counts as an open attempt. At most one live
// action may exist per complaint at any time.
func (s ActionStatus) Live() bool {
	return s == ActionInProgress || s == ActionUnderReview
}

// Action is one worker's assignment attempt against a complaint.
type Action struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	ComplaintID      string       `gorm:"index;not null" json:"complaint_id"`
	AssignedWorkerID string       `gorm:"index;not null" json:"assigned_worker_id"`
	Status           ActionStatus `gorm:"type:text;not null;default:in_progress" json:"status"`
	// EvidenceKey is the opaque blob-store key of the submitted evidence image.
	EvidenceKey string    `json:"evidence_key,omitempty"`
	AdminNotes  *string   `json:"admin_notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Complaint *Complaint `gorm:"foreignKey:ComplaintID" json:"complaint,omitempty"`
	Worker    *User      `gorm:"foreignKey:AssignedWorkerID" json:"worker,omitempty"`
}

package models

import "time"

// RewardAccount tracks a user's accrued reward points. Rows are created
// lazily on first credit and the balance only ever grows; the credit itself
// is a single SQL upsert/increment so concurrent resolutions cannot lose an
// update (see storage.CreditRewardPoints).
type RewardAccount struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package schema

import (
	"time"
)

// PushShare represents the push_shares table - one randomized sub-amount of a push.
// A row is written once at push creation and mutated exactly once when claimed.
type PushShare struct {
	// ID is the internal database primary key; claim order follows id order
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// PushID references the parent push
	PushID int64 `gorm:"column:push_id;not null;index:idx_push_shares_push_id"`
	// Amount is the sub-amount in the smallest currency unit
	Amount int `gorm:"column:amount;not null"`
	// UserID is the creator of the parent push, stamped on every share
	UserID string `gorm:"column:user_id;not null;type:text"`
	// Claimed marks whether the share has been taken; never reverts to false
	Claimed bool `gorm:"column:claimed;not null;default:false"`
	// ClaimUserID is the user that claimed the share, empty while unclaimed
	ClaimUserID string `gorm:"column:claim_user_id;type:text"`
	// CreatedAt is the timestamp when the share was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// ClaimedAt is the timestamp when the share was claimed
	ClaimedAt *time.Time `gorm:"column:claimed_at;type:timestamptz"`
}

// TableName specifies the table name for the PushShare model
func (PushShare) TableName() string {
	return "push_shares"
}

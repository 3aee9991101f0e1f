package schema

import (
	"time"
)

// Push represents the pushes table - one money-scatter event per row.
// A push is looked up by the (token, room_id) pair; the token column holds the
// hashed storage key, never the raw token.
type Push struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Token is the hashed storage key of the push
	Token string `gorm:"column:token;not null;type:text;uniqueIndex:idx_pushes_token_room,priority:1"`
	// RoomID is the chat room the push belongs to
	RoomID string `gorm:"column:room_id;not null;type:text;uniqueIndex:idx_pushes_token_room,priority:2"`
	// UserID is the creator of the push
	UserID string `gorm:"column:user_id;not null;type:text"`
	// TotalAmount is the scattered total in the smallest currency unit
	TotalAmount int `gorm:"column:total_amount;not null"`
	// ClaimedAmount is the running sum of claimed share amounts; only ever increases
	ClaimedAmount int `gorm:"column:claimed_amount;not null;default:0"`
	// CreatedAt is the timestamp when the push was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Shares []PushShare `gorm:"foreignKey:PushID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Push model
func (Push) TableName() string {
	return "pushes"
}

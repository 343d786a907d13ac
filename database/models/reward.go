package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Reward is a self-granted prize redeemable for points. Claiming is a
// one-way transition gated by the user's point balance.
type Reward struct {
	bun.BaseModel `bun:"table:rewards,alias:r"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID         string     `bun:"user_id,notnull" json:"user_id"`
	Name           string     `bun:"name,notnull" json:"name"`
	Description    string     `bun:"description" json:"description"`
	Icon           string     `bun:"icon" json:"icon"`
	PointsRequired int64      `bun:"points_required,notnull,default:1" json:"points_required"`
	IsClaimed      bool       `bun:"is_claimed,notnull,default:false" json:"is_claimed"`
	ClaimedAt      *time.Time `bun:"claimed_at" json:"claimed_at,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

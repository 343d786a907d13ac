package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PenaltyPoints      = "points"
	PenaltyStreakReset = "streak_reset"
	PenaltyCustom      = "custom"
)

// ValidPenaltyType reports whether t is one of the supported penalty types.
func ValidPenaltyType(t string) bool {
	return t == PenaltyPoints || t == PenaltyStreakReset || t == PenaltyCustom
}

const (
	DisciplineArmed     = "armed"
	DisciplineTriggered = "triggered"
)

// Discipline is a self-imposed penalty. State is an explicit enum rather
// than a created_at/triggered_at timestamp comparison; triggering is a
// one-way armed -> triggered transition with no automatic re-arming.
type Discipline struct {
	bun.BaseModel `bun:"table:disciplines,alias:d"`

	ID           int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID       string     `bun:"user_id,notnull" json:"user_id"`
	Name         string     `bun:"name,notnull" json:"name"`
	Description  string     `bun:"description" json:"description"`
	PenaltyType  string     `bun:"penalty_type,notnull,default:'points'" json:"penalty_type"`
	PenaltyValue int64      `bun:"penalty_value,notnull,default:0" json:"penalty_value"`
	Status       string     `bun:"status,notnull,default:'armed'" json:"status"`
	TriggeredAt  *time.Time `bun:"triggered_at" json:"triggered_at,omitempty"`
	GoalID       *int64     `bun:"goal_id" json:"goal_id,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserStats is the denormalized counter row, one per user. It is never the
// source of truth: every field is derived from habits and habit_completions
// through atomic in-SQL increments, with floors at zero.
type UserStats struct {
	bun.BaseModel `bun:"table:user_stats,alias:ust"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID           string    `bun:"user_id,notnull,unique" json:"user_id"`
	TotalPoints      int64     `bun:"total_points,notnull,default:0" json:"total_points"`
	CurrentStreak    int64     `bun:"current_streak,notnull,default:0" json:"current_streak"`
	LongestStreak    int64     `bun:"longest_streak,notnull,default:0" json:"longest_streak"`
	TotalCompletions int64     `bun:"total_completions,notnull,default:0" json:"total_completions"`
	TotalHabits      int64     `bun:"total_habits,notnull,default:0" json:"total_habits"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// PointsPerCompletion is the award for a single marked completion.
const PointsPerCompletion = 10

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// HabitCompletion is one ledger entry: habit H was done on the calendar day
// of CompletedAt. The timestamp is always fixed at 12:00:00 UTC so a later
// conversion to any local timezone cannot shift it across a day boundary.
// A unique index on (habit_id, user_id, completed_at::date) keeps the ledger
// at one row per habit per day.
type HabitCompletion struct {
	bun.BaseModel `bun:"table:habit_completions,alias:hc"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	HabitID     int64     `bun:"habit_id,notnull" json:"habit_id"`
	UserID      string    `bun:"user_id,notnull" json:"user_id"`
	CompletedAt time.Time `bun:"completed_at,notnull" json:"completed_at"`
	Notes       string    `bun:"notes" json:"notes"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// CompletionTimestamp builds the canonical midday-UTC timestamp for a
// calendar day.
func CompletionTimestamp(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// ValidFrequency reports whether f is one of the supported habit frequencies.
func ValidFrequency(f string) bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// Habit is a user-defined recurring task. Deleting a habit only flips
// IsActive; rows are removed for real only by the data reset endpoint.
type Habit struct {
	bun.BaseModel `bun:"table:habits,alias:h"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      string    `bun:"user_id,notnull" json:"user_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description"`
	Icon        string    `bun:"icon" json:"icon"`
	Color       string    `bun:"color" json:"color"`
	Frequency   string    `bun:"frequency,notnull,default:'daily'" json:"frequency"`
	TargetCount int       `bun:"target_count,notnull,default:1" json:"target_count"`
	IsActive    bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

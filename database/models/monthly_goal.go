package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MonthlyGoal is a per-month completion-percentage target. Month is
// zero-based (0 = January) to match the completion window addressing used
// everywhere else.
type MonthlyGoal struct {
	bun.BaseModel `bun:"table:monthly_goals,alias:mg"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID             string    `bun:"user_id,notnull" json:"user_id"`
	Month              int       `bun:"month,notnull" json:"month"`
	Year               int       `bun:"year,notnull" json:"year"`
	TargetPercentage   int       `bun:"target_percentage,notnull,default:80" json:"target_percentage"`
	AchievedPercentage int       `bun:"achieved_percentage,notnull,default:0" json:"achieved_percentage"`
	IsCompleted        bool      `bun:"is_completed,notnull,default:false" json:"is_completed"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

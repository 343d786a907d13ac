package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mytaskflow/backend/database/models"
	"github.com/uptrace/bun"
)

type GoalRepository interface {
	// GetForMonth returns nil without error when no goal is set for the
	// period. Month is zero-based.
	GetForMonth(ctx context.Context, userID string, year, month int) (*models.MonthlyGoal, error)
	Upsert(ctx context.Context, goal *models.MonthlyGoal) error
	UpdateProgress(ctx context.Context, id int64, achieved int, completed bool) error
}

type goalRepository struct {
	db *bun.DB
}

func NewGoalRepository(db *bun.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) GetForMonth(ctx context.Context, userID string, year, month int) (*models.MonthlyGoal, error) {
	goal := new(models.MonthlyGoal)
	err := r.db.NewSelect().
		Model(goal).
		Where("user_id = ?", userID).
		Where("year = ?", year).
		Where("month = ?", month).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func (r *goalRepository) Upsert(ctx context.Context, goal *models.MonthlyGoal) error {
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(goal).
		On("CONFLICT (user_id, year, month) DO UPDATE").
		Set("target_percentage = EXCLUDED.target_percentage").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *goalRepository) UpdateProgress(ctx context.Context, id int64, achieved int, completed bool) error {
	_, err := r.db.NewUpdate().
		Model((*models.MonthlyGoal)(nil)).
		Set("achieved_percentage = ?", achieved).
		Set("is_completed = ?", completed).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

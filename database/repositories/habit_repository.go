package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/mytaskflow/backend/database/models"
	"github.com/uptrace/bun"
)

var ErrHabitNotFound = errors.New("habit not found")

type HabitRepository interface {
	Create(ctx context.Context, habit *models.Habit) error
	GetByID(ctx context.Context, id int64) (*models.Habit, error)
	GetActiveByUserID(ctx context.Context, userID string) ([]*models.Habit, error)
	Update(ctx context.Context, habit *models.Habit) error
	// SoftDelete flips is_active off and reports whether the habit was still
	// active; callers only decrement the habit counter on a real transition.
	SoftDelete(ctx context.Context, id int64, userID string) (bool, error)
}

type habitRepository struct {
	db *bun.DB
}

func NewHabitRepository(db *bun.DB) HabitRepository {
	return &habitRepository{db: db}
}

func (r *habitRepository) Create(ctx context.Context, habit *models.Habit) error {
	habit.IsActive = true
	habit.CreatedAt = time.Now()
	habit.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(habit).Exec(ctx)
	return err
}

func (r *habitRepository) GetByID(ctx context.Context, id int64) (*models.Habit, error) {
	habit := new(models.Habit)
	err := r.db.NewSelect().
		Model(habit).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, err
	}
	return habit, nil
}

func (r *habitRepository) GetActiveByUserID(ctx context.Context, userID string) ([]*models.Habit, error) {
	slog.Debug("HabitRepository.GetActiveByUserID called",
		slog.String("type", "db"),
		slog.String("user_id", userID))

	var habits []*models.Habit
	err := r.db.NewSelect().
		Model(&habits).
		Where("user_id = ?", userID).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return habits, nil
}

func (r *habitRepository) Update(ctx context.Context, habit *models.Habit) error {
	habit.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(habit).
		Column("name", "description", "icon", "color", "frequency", "target_count", "updated_at").
		WherePK().
		Where("user_id = ?", habit.UserID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (r *habitRepository) SoftDelete(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Habit)(nil)).
		Set("is_active = ?", false).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

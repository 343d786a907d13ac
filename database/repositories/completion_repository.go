package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mytaskflow/backend/database/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// ErrDuplicateDay is returned when the (habit, user, calendar day) unique
// index rejects an insert. Callers treat it as "already complete".
var ErrDuplicateDay = errors.New("completion already recorded for this day")

type CompletionRepository interface {
	// GetForWindow returns the user's completions inside [start, end],
	// newest first.
	GetForWindow(ctx context.Context, userID string, start, end time.Time) ([]*models.HabitCompletion, error)
	Create(ctx context.Context, completion *models.HabitCompletion) error
	// DeleteForDay removes every completion of the habit on day's calendar
	// date and returns how many rows went away. Plural on purpose: it is the
	// sweep that corrects any duplicates predating the unique index.
	DeleteForDay(ctx context.Context, habitID int64, userID string, day time.Time) (int64, error)
}

type completionRepository struct {
	db *bun.DB
}

func NewCompletionRepository(db *bun.DB) CompletionRepository {
	return &completionRepository{db: db}
}

func (r *completionRepository) GetForWindow(ctx context.Context, userID string, start, end time.Time) ([]*models.HabitCompletion, error) {
	slog.Debug("CompletionRepository.GetForWindow called",
		slog.String("type", "db"),
		slog.String("user_id", userID),
		slog.Time("start", start),
		slog.Time("end", end))

	var completions []*models.HabitCompletion
	err := r.db.NewSelect().
		Model(&completions).
		Where("user_id = ?", userID).
		Where("completed_at >= ?", start).
		Where("completed_at <= ?", end).
		Order("completed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *completionRepository) Create(ctx context.Context, completion *models.HabitCompletion) error {
	completion.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(completion).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateDay
		}
		return err
	}
	return nil
}

func (r *completionRepository) DeleteForDay(ctx context.Context, habitID int64, userID string, day time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.HabitCompletion)(nil)).
		Where("habit_id = ?", habitID).
		Where("user_id = ?", userID).
		Where("completed_at::date = ?::date", day).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completions: %w", err)
	}
	return res.RowsAffected()
}

// isUniqueViolation reports whether err is a Postgres 23505 unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

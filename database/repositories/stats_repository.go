package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mytaskflow/backend/database/models"
	"github.com/uptrace/bun"
)

// ErrInsufficientPoints is returned by SpendPoints when the conditional
// debit matches no row, i.e. the balance is below the cost.
var ErrInsufficientPoints = errors.New("insufficient points")

// StatsRepository keeps the denormalized user_stats row consistent with the
// ledger. Every mutation is a single UPDATE computed in SQL; counters are
// never read, modified in Go, and written back, so concurrent toggles cannot
// lose updates. GREATEST(..., 0) keeps every counter non-negative.
type StatsRepository interface {
	// EnsureExists lazily creates a zeroed row for the user.
	EnsureExists(ctx context.Context, userID string) error
	GetByUserID(ctx context.Context, userID string) (*models.UserStats, error)
	IncrementHabits(ctx context.Context, userID string) error
	DecrementHabits(ctx context.Context, userID string) error
	// RecordCompletion awards points, bumps the completion total and the
	// streak, and folds the new streak into the running maximum.
	RecordCompletion(ctx context.Context, userID string) error
	// RemoveCompletions reverses n completions worth of points and count.
	// Streaks are left alone, matching the mark/unmark asymmetry.
	RemoveCompletions(ctx context.Context, userID string, n int64) error
	SpendPoints(ctx context.Context, userID string, cost int64) error
	SpendPointsTx(ctx context.Context, tx bun.Tx, userID string, cost int64) error
	ApplyPointsPenaltyTx(ctx context.Context, tx bun.Tx, userID string, value int64) error
	ResetStreakTx(ctx context.Context, tx bun.Tx, userID string) error
	Reset(ctx context.Context, userID string) error
}

type statsRepository struct {
	db *bun.DB
}

func NewStatsRepository(db *bun.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) EnsureExists(ctx context.Context, userID string) error {
	stats := &models.UserStats{
		UserID:    userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(stats).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *statsRepository) GetByUserID(ctx context.Context, userID string) (*models.UserStats, error) {
	stats := new(models.UserStats)
	err := r.db.NewSelect().
		Model(stats).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		if err := r.EnsureExists(ctx, userID); err != nil {
			return nil, err
		}
		err = r.db.NewSelect().
			Model(stats).
			Where("user_id = ?", userID).
			Scan(ctx)
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *statsRepository) IncrementHabits(ctx context.Context, userID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_habits = total_habits + 1").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *statsRepository) DecrementHabits(ctx context.Context, userID string) error {
	_, err := decrementHabitsQuery(r.db, userID).Exec(ctx)
	return err
}

func (r *statsRepository) RecordCompletion(ctx context.Context, userID string) error {
	_, err := recordCompletionQuery(r.db, userID).Exec(ctx)
	return err
}

func (r *statsRepository) RemoveCompletions(ctx context.Context, userID string, n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := removeCompletionsQuery(r.db, userID, n).Exec(ctx)
	return err
}

func (r *statsRepository) SpendPoints(ctx context.Context, userID string, cost int64) error {
	return spendPoints(ctx, r.db, userID, cost)
}

func (r *statsRepository) SpendPointsTx(ctx context.Context, tx bun.Tx, userID string, cost int64) error {
	return spendPoints(ctx, tx, userID, cost)
}

// spendPoints debits cost only when the balance covers it; the balance check
// and the debit are one conditional UPDATE.
func spendPoints(ctx context.Context, db bun.IDB, userID string, cost int64) error {
	res, err := spendPointsQuery(db, userID, cost).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to spend points: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

func (r *statsRepository) ApplyPointsPenaltyTx(ctx context.Context, tx bun.Tx, userID string, value int64) error {
	_, err := applyPointsPenaltyQuery(tx, userID, value).Exec(ctx)
	return err
}

func (r *statsRepository) ResetStreakTx(ctx context.Context, tx bun.Tx, userID string) error {
	_, err := resetStreakQuery(tx, userID).Exec(ctx)
	return err
}

func (r *statsRepository) Reset(ctx context.Context, userID string) error {
	_, err := resetQuery(r.db, userID).Exec(ctx)
	return err
}

// Query builders. Split out so the generated SQL, which carries the
// non-negative floors, the running-maximum streak fold, and the conditional
// debit predicate, can be asserted without a live database.

func decrementHabitsQuery(db bun.IDB, userID string) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_habits = GREATEST(total_habits - 1, 0)").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID)
}

func recordCompletionQuery(db bun.IDB, userID string) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_points = total_points + ?", models.PointsPerCompletion).
		Set("total_completions = total_completions + 1").
		Set("longest_streak = GREATEST(longest_streak, current_streak + 1)").
		Set("current_streak = current_streak + 1").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID)
}

func removeCompletionsQuery(db bun.IDB, userID string, n int64) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_points = GREATEST(total_points - ?, 0)", n*models.PointsPerCompletion).
		Set("total_completions = GREATEST(total_completions - ?, 0)", n).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID)
}

func spendPointsQuery(db bun.IDB, userID string, cost int64) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_points = total_points - ?", cost).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("total_points >= ?", cost)
}

func applyPointsPenaltyQuery(db bun.IDB, userID string, value int64) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_points = GREATEST(total_points - ?, 0)", value).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID)
}

func resetStreakQuery(db bun.IDB, userID string) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("current_streak = 0").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID)
}

func resetQuery(db bun.IDB, userID string) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_points = 0").
		Set("current_streak = 0").
		Set("longest_streak = 0").
		Set("total_completions = 0").
		Set("total_habits = 0").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID)
}

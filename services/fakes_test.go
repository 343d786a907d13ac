package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
)

// fakeTxRunner runs the callback against a zero transaction. Repository
// fakes ignore the tx argument, so the services' transactional flows can be
// exercised without a database.
type fakeTxRunner struct {
	beginErr error
	runs     int
}

func (f *fakeTxRunner) RunInTx(ctx context.Context, _ *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.runs++
	return fn(ctx, bun.Tx{})
}

type fakeCompletionRepo struct {
	rows        []*models.HabitCompletion
	nextID      int64
	createErr   error
	deleteErr   error
	windowErr   error
	getCalls    int
	createCalls int
}

func (f *fakeCompletionRepo) GetForWindow(_ context.Context, userID string, start, end time.Time) ([]*models.HabitCompletion, error) {
	f.getCalls++
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	var out []*models.HabitCompletion
	for _, r := range f.rows {
		if r.UserID == userID && !r.CompletedAt.Before(start) && !r.CompletedAt.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCompletionRepo) Create(_ context.Context, completion *models.HabitCompletion) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	day := completion.CompletedAt.UTC().Format("2006-01-02")
	for _, r := range f.rows {
		if r.HabitID == completion.HabitID && r.UserID == completion.UserID &&
			r.CompletedAt.UTC().Format("2006-01-02") == day {
			return repositories.ErrDuplicateDay
		}
	}
	f.nextID++
	completion.ID = f.nextID
	f.rows = append(f.rows, completion)
	return nil
}

func (f *fakeCompletionRepo) DeleteForDay(_ context.Context, habitID int64, userID string, day time.Time) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	date := day.UTC().Format("2006-01-02")
	var kept []*models.HabitCompletion
	var removed int64
	for _, r := range f.rows {
		if r.HabitID == habitID && r.UserID == userID && r.CompletedAt.UTC().Format("2006-01-02") == date {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return removed, nil
}

type fakeStatsRepo struct {
	stats *models.UserStats

	recordCalls  int
	recordErr    error
	removedTotal int64
	removeErr    error
	spendErr     error
	spentTotal   int64
	penaltyTotal int64
	streakResets int
}

func (f *fakeStatsRepo) EnsureExists(context.Context, string) error { return nil }

func (f *fakeStatsRepo) GetByUserID(_ context.Context, userID string) (*models.UserStats, error) {
	if f.stats == nil {
		f.stats = &models.UserStats{UserID: userID}
	}
	return f.stats, nil
}

func (f *fakeStatsRepo) IncrementHabits(context.Context, string) error { return nil }
func (f *fakeStatsRepo) DecrementHabits(context.Context, string) error { return nil }

func (f *fakeStatsRepo) RecordCompletion(context.Context, string) error {
	f.recordCalls++
	return f.recordErr
}

func (f *fakeStatsRepo) RemoveCompletions(_ context.Context, _ string, n int64) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedTotal += n
	return nil
}

func (f *fakeStatsRepo) SpendPoints(_ context.Context, _ string, cost int64) error {
	if f.spendErr != nil {
		return f.spendErr
	}
	f.spentTotal += cost
	return nil
}

func (f *fakeStatsRepo) SpendPointsTx(ctx context.Context, _ bun.Tx, userID string, cost int64) error {
	return f.SpendPoints(ctx, userID, cost)
}

func (f *fakeStatsRepo) ApplyPointsPenaltyTx(_ context.Context, _ bun.Tx, _ string, value int64) error {
	f.penaltyTotal += value
	return nil
}

func (f *fakeStatsRepo) ResetStreakTx(context.Context, bun.Tx, string) error {
	f.streakResets++
	return nil
}

func (f *fakeStatsRepo) Reset(context.Context, string) error { return nil }

type fakeRewardRepo struct {
	rewards   map[int64]*models.Reward
	markCalls int
	markErr   error
}

func (f *fakeRewardRepo) Create(_ context.Context, reward *models.Reward) error {
	f.rewards[reward.ID] = reward
	return nil
}

func (f *fakeRewardRepo) GetByID(_ context.Context, id int64) (*models.Reward, error) {
	reward, ok := f.rewards[id]
	if !ok {
		return nil, repositories.ErrRewardNotFound
	}
	copied := *reward
	return &copied, nil
}

func (f *fakeRewardRepo) GetByUserID(_ context.Context, userID string) ([]*models.Reward, error) {
	var out []*models.Reward
	for _, r := range f.rewards {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRewardRepo) Update(context.Context, *models.Reward) error { return nil }

func (f *fakeRewardRepo) Delete(_ context.Context, id int64, _ string) error {
	delete(f.rewards, id)
	return nil
}

func (f *fakeRewardRepo) MarkClaimedTx(_ context.Context, _ bun.Tx, id int64, _ string) error {
	f.markCalls++
	if f.markErr != nil {
		return f.markErr
	}
	reward, ok := f.rewards[id]
	if !ok || reward.IsClaimed {
		return repositories.ErrAlreadyClaimed
	}
	now := time.Now()
	reward.IsClaimed = true
	reward.ClaimedAt = &now
	return nil
}

type fakeDisciplineRepo struct {
	disciplines map[int64]*models.Discipline
	markCalls   int
}

func (f *fakeDisciplineRepo) Create(_ context.Context, d *models.Discipline) error {
	f.disciplines[d.ID] = d
	return nil
}

func (f *fakeDisciplineRepo) GetByID(_ context.Context, id int64) (*models.Discipline, error) {
	d, ok := f.disciplines[id]
	if !ok {
		return nil, repositories.ErrDisciplineNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDisciplineRepo) GetByUserID(_ context.Context, userID string) ([]*models.Discipline, error) {
	var out []*models.Discipline
	for _, d := range f.disciplines {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDisciplineRepo) Update(context.Context, *models.Discipline) error { return nil }

func (f *fakeDisciplineRepo) Delete(_ context.Context, id int64, _ string) error {
	delete(f.disciplines, id)
	return nil
}

func (f *fakeDisciplineRepo) MarkTriggeredTx(_ context.Context, _ bun.Tx, id int64, _ string) error {
	f.markCalls++
	d, ok := f.disciplines[id]
	if !ok || d.Status != models.DisciplineArmed {
		return repositories.ErrAlreadyTriggered
	}
	now := time.Now()
	d.Status = models.DisciplineTriggered
	d.TriggeredAt = &now
	return nil
}

type fakeHabitRepo struct {
	habits []*models.Habit
}

func (f *fakeHabitRepo) Create(_ context.Context, habit *models.Habit) error {
	f.habits = append(f.habits, habit)
	return nil
}

func (f *fakeHabitRepo) GetByID(_ context.Context, id int64) (*models.Habit, error) {
	for _, h := range f.habits {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, repositories.ErrHabitNotFound
}

func (f *fakeHabitRepo) GetActiveByUserID(_ context.Context, userID string) ([]*models.Habit, error) {
	var out []*models.Habit
	for _, h := range f.habits {
		if h.UserID == userID && h.IsActive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHabitRepo) Update(context.Context, *models.Habit) error { return nil }

func (f *fakeHabitRepo) SoftDelete(_ context.Context, id int64, _ string) (bool, error) {
	for _, h := range f.habits {
		if h.ID == id && h.IsActive {
			h.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

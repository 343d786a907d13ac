package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytaskflow/backend/database/models"
)

const testUser = "demo-user-001"

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}{
		{
			name:      "january",
			year:      2025,
			month:     0,
			wantStart: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.January, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "leap february",
			year:      2024,
			month:     1,
			wantStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.February, 29, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "december",
			year:      2025,
			month:     11,
			wantStart: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.December, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:    "month too large",
			year:    2025,
			month:   12,
			wantErr: ErrInvalidMonth,
		},
		{
			name:    "negative month",
			year:    2025,
			month:   -1,
			wantErr: ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := MonthWindow(tt.year, tt.month)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestMarkComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("records completion at midday UTC", func(t *testing.T) {
		completions := &fakeCompletionRepo{}
		stats := &fakeStatsRepo{}
		svc := NewLedgerService(completions, stats)

		created, err := svc.MarkComplete(ctx, testUser, 1, "2025-03-15")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, 1, stats.recordCalls)

		require.Len(t, completions.rows, 1)
		assert.Equal(t, time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC), completions.rows[0].CompletedAt)
	})

	t.Run("duplicate day is a silent no-op", func(t *testing.T) {
		completions := &fakeCompletionRepo{}
		stats := &fakeStatsRepo{}
		svc := NewLedgerService(completions, stats)

		created, err := svc.MarkComplete(ctx, testUser, 1, "2025-03-15")
		require.NoError(t, err)
		require.True(t, created)

		created, err = svc.MarkComplete(ctx, testUser, 1, "2025-03-15")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 1, stats.recordCalls, "no second award")
		assert.Len(t, completions.rows, 1)
	})

	t.Run("cached window short-circuits the insert", func(t *testing.T) {
		completions := &fakeCompletionRepo{rows: []*models.HabitCompletion{{
			ID:          1,
			HabitID:     7,
			UserID:      testUser,
			CompletedAt: models.CompletionTimestamp(2025, time.March, 15),
		}}}
		stats := &fakeStatsRepo{}
		svc := NewLedgerService(completions, stats)

		_, err := svc.Completions(ctx, testUser, 2025, 2)
		require.NoError(t, err)

		created, err := svc.MarkComplete(ctx, testUser, 7, "2025-03-15")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 0, completions.createCalls)
		assert.Equal(t, 0, stats.recordCalls)
	})

	t.Run("malformed date", func(t *testing.T) {
		svc := NewLedgerService(&fakeCompletionRepo{}, &fakeStatsRepo{})
		_, err := svc.MarkComplete(ctx, testUser, 1, "15/03/2025")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("stats failure is swallowed", func(t *testing.T) {
		completions := &fakeCompletionRepo{}
		stats := &fakeStatsRepo{recordErr: errors.New("connection reset")}
		svc := NewLedgerService(completions, stats)

		created, err := svc.MarkComplete(ctx, testUser, 1, "2025-03-15")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Len(t, completions.rows, 1, "ledger row stands")
	})

	t.Run("insert failure propagates", func(t *testing.T) {
		completions := &fakeCompletionRepo{createErr: errors.New("down")}
		stats := &fakeStatsRepo{}
		svc := NewLedgerService(completions, stats)

		_, err := svc.MarkComplete(ctx, testUser, 1, "2025-03-15")
		assert.Error(t, err)
		assert.Equal(t, 0, stats.recordCalls)
	})
}

func TestMarkIncomplete(t *testing.T) {
	ctx := context.Background()

	t.Run("sweeps every duplicate row for the day", func(t *testing.T) {
		day := models.CompletionTimestamp(2025, time.March, 15)
		completions := &fakeCompletionRepo{rows: []*models.HabitCompletion{
			{ID: 1, HabitID: 1, UserID: testUser, CompletedAt: day},
			{ID: 2, HabitID: 1, UserID: testUser, CompletedAt: day},
			{ID: 3, HabitID: 1, UserID: testUser, CompletedAt: day},
			{ID: 4, HabitID: 2, UserID: testUser, CompletedAt: day},
		}}
		stats := &fakeStatsRepo{}
		svc := NewLedgerService(completions, stats)

		removed, err := svc.MarkIncomplete(ctx, testUser, 1, "2025-03-15")
		require.NoError(t, err)
		assert.Equal(t, int64(3), removed)
		assert.Equal(t, int64(3), stats.removedTotal)
		assert.Len(t, completions.rows, 1, "other habit untouched")
	})

	t.Run("nothing to remove skips the stats update", func(t *testing.T) {
		completions := &fakeCompletionRepo{}
		stats := &fakeStatsRepo{}
		svc := NewLedgerService(completions, stats)

		removed, err := svc.MarkIncomplete(ctx, testUser, 1, "2025-03-15")
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.Zero(t, stats.removedTotal)
	})

	t.Run("stats failure is swallowed", func(t *testing.T) {
		day := models.CompletionTimestamp(2025, time.March, 15)
		completions := &fakeCompletionRepo{rows: []*models.HabitCompletion{
			{ID: 1, HabitID: 1, UserID: testUser, CompletedAt: day},
		}}
		stats := &fakeStatsRepo{removeErr: errors.New("connection reset")}
		svc := NewLedgerService(completions, stats)

		removed, err := svc.MarkIncomplete(ctx, testUser, 1, "2025-03-15")
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
	})

	t.Run("malformed date", func(t *testing.T) {
		svc := NewLedgerService(&fakeCompletionRepo{}, &fakeStatsRepo{})
		_, err := svc.MarkIncomplete(ctx, testUser, 1, "yesterday")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestCompletionsCaching(t *testing.T) {
	ctx := context.Background()
	day := models.CompletionTimestamp(2025, time.March, 15)
	completions := &fakeCompletionRepo{rows: []*models.HabitCompletion{
		{ID: 1, HabitID: 1, UserID: testUser, CompletedAt: day},
	}}
	svc := NewLedgerService(completions, &fakeStatsRepo{})

	first, err := svc.Completions(ctx, testUser, 2025, 2)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, completions.getCalls)

	// Second read of the same window is served from cache.
	_, err = svc.Completions(ctx, testUser, 2025, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, completions.getCalls)

	// A mutation in the window invalidates it.
	_, err = svc.MarkComplete(ctx, testUser, 2, "2025-03-16")
	require.NoError(t, err)
	_, err = svc.Completions(ctx, testUser, 2025, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, completions.getCalls)

	_, _, err = MonthWindow(2025, 12)
	require.Error(t, err)
	_, err = svc.Completions(ctx, testUser, 2025, 12)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

// blockingCompletionRepo parks Create until released so a second toggle can
// race the first.
type blockingCompletionRepo struct {
	fakeCompletionRepo
	entered     chan struct{}
	enteredOnce sync.Once
	release     chan struct{}
}

func (b *blockingCompletionRepo) Create(ctx context.Context, completion *models.HabitCompletion) error {
	b.enteredOnce.Do(func() { close(b.entered) })
	<-b.release
	return b.fakeCompletionRepo.Create(ctx, completion)
}

func TestToggleCellGuard(t *testing.T) {
	ctx := context.Background()
	completions := &blockingCompletionRepo{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewLedgerService(completions, &fakeStatsRepo{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.MarkComplete(ctx, testUser, 1, "2025-03-15")
		done <- err
	}()

	<-completions.entered

	// Same cell is rejected while the first toggle is in flight.
	_, err := svc.MarkIncomplete(ctx, testUser, 1, "2025-03-15")
	assert.ErrorIs(t, err, ErrToggleInFlight)

	// A different day on the same habit is not serialized.
	removed, err := svc.MarkIncomplete(ctx, testUser, 1, "2025-03-16")
	require.NoError(t, err)
	assert.Zero(t, removed)

	close(completions.release)
	require.NoError(t, <-done)

	// The cell frees up once the first toggle finishes.
	created, err := svc.MarkComplete(ctx, testUser, 1, "2025-03-15")
	require.NoError(t, err)
	assert.False(t, created, "already complete")
}

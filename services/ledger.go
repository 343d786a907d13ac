package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
)

const (
	ledgerCacheSize = 128
	dateLayout      = "2006-01-02"
)

var (
	// ErrInvalidMonth rejects month indexes outside 0-11.
	ErrInvalidMonth = errors.New("month must be between 0 and 11")
	ErrInvalidDate  = errors.New("date must be formatted as YYYY-MM-DD")
	// ErrToggleInFlight rejects a second toggle for a (habit, day) cell
	// while one is still outstanding. Unrelated cells are not serialized.
	ErrToggleInFlight = errors.New("a toggle for this habit and day is already in flight")
)

// LedgerService turns "toggle habit H on day D" intents into ledger
// mutations and the matching stats updates. Month windows are cached in an
// LRU keyed completions-{year}-{month} and invalidated on every mutation
// that touches the window.
type LedgerService struct {
	completions repositories.CompletionRepository
	stats       repositories.StatsRepository
	cache       *lru.Cache
	inflight    sync.Map
}

func NewLedgerService(completions repositories.CompletionRepository, stats repositories.StatsRepository) *LedgerService {
	cache, _ := lru.New(ledgerCacheSize)
	return &LedgerService{
		completions: completions,
		stats:       stats,
		cache:       cache,
	}
}

// MonthWindow computes the inclusive [first instant, last instant] UTC range
// of a zero-based month.
func MonthWindow(year, month int) (time.Time, time.Time, error) {
	if month < 0 || month > 11 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	start := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}

func windowKey(userID string, year, month int) string {
	return fmt.Sprintf("%s/completions-%d-%d", userID, year, month)
}

// Completions returns the user's completions for the month window, newest
// first, serving repeat reads for the same window from cache.
func (s *LedgerService) Completions(ctx context.Context, userID string, year, month int) ([]*models.HabitCompletion, error) {
	start, end, err := MonthWindow(year, month)
	if err != nil {
		return nil, err
	}

	key := windowKey(userID, year, month)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*models.HabitCompletion), nil
	}

	completions, err := s.completions.GetForWindow(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, completions)
	return completions, nil
}

// MarkComplete records a completion for the habit on the given calendar day.
// It returns false when the day was already complete; a storage-level unique
// violation is folded into the same answer. A stats failure after a
// successful insert is logged and swallowed; the ledger row stands.
func (s *LedgerService) MarkComplete(ctx context.Context, userID string, habitID int64, dateStr string) (bool, error) {
	day, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return false, ErrInvalidDate
	}

	release, err := s.acquireCell(habitID, dateStr)
	if err != nil {
		return false, err
	}
	defer release()

	// Fast path: the loaded month already shows this cell complete.
	if s.cachedHasCompletion(userID, habitID, day) {
		return false, nil
	}

	completion := &models.HabitCompletion{
		HabitID:     habitID,
		UserID:      userID,
		CompletedAt: models.CompletionTimestamp(day.Year(), day.Month(), day.Day()),
	}
	if err := s.completions.Create(ctx, completion); err != nil {
		if errors.Is(err, repositories.ErrDuplicateDay) {
			s.invalidateWindow(userID, day)
			return false, nil
		}
		return false, err
	}

	if err := s.stats.RecordCompletion(ctx, userID); err != nil {
		slog.Error("Failed to update stats after completion",
			slog.String("type", "db"),
			slog.String("user_id", userID),
			slog.Int64("habit_id", habitID),
			slog.String("date", dateStr),
			slog.Any("error", err))
	}

	s.invalidateWindow(userID, day)
	return true, nil
}

// MarkIncomplete deletes every completion of the habit on the calendar day
// and reverses the stats for however many rows went away.
func (s *LedgerService) MarkIncomplete(ctx context.Context, userID string, habitID int64, dateStr string) (int64, error) {
	day, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return 0, ErrInvalidDate
	}

	release, err := s.acquireCell(habitID, dateStr)
	if err != nil {
		return 0, err
	}
	defer release()

	removed, err := s.completions.DeleteForDay(ctx, habitID, userID, models.CompletionTimestamp(day.Year(), day.Month(), day.Day()))
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.stats.RemoveCompletions(ctx, userID, removed); err != nil {
		slog.Error("Failed to update stats after unmarking",
			slog.String("type", "db"),
			slog.String("user_id", userID),
			slog.Int64("habit_id", habitID),
			slog.Int64("removed", removed),
			slog.Any("error", err))
	}

	s.invalidateWindow(userID, day)
	return removed, nil
}

// Invalidate drops the cached window so the next read hits the database.
func (s *LedgerService) Invalidate(userID string, year, month int) {
	s.cache.Remove(windowKey(userID, year, month))
}

// Purge empties the window cache. Called after a full data reset.
func (s *LedgerService) Purge() {
	s.cache.Purge()
}

func (s *LedgerService) acquireCell(habitID int64, dateStr string) (func(), error) {
	key := fmt.Sprintf("%d|%s", habitID, dateStr)
	if _, busy := s.inflight.LoadOrStore(key, struct{}{}); busy {
		return nil, ErrToggleInFlight
	}
	return func() { s.inflight.Delete(key) }, nil
}

func (s *LedgerService) cachedHasCompletion(userID string, habitID int64, day time.Time) bool {
	cached, ok := s.cache.Get(windowKey(userID, day.Year(), int(day.Month())-1))
	if !ok {
		return false
	}
	dateStr := day.Format(dateLayout)
	for _, c := range cached.([]*models.HabitCompletion) {
		if c.HabitID == habitID && c.CompletedAt.UTC().Format(dateLayout) == dateStr {
			return true
		}
	}
	return false
}

func (s *LedgerService) invalidateWindow(userID string, day time.Time) {
	s.Invalidate(userID, day.Year(), int(day.Month())-1)
}

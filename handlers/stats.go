package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	dbmodels "github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/models"
	"github.com/mytaskflow/backend/services"
	"github.com/mytaskflow/backend/utils"
)

// GetStats returns the denormalized counter row, creating a zeroed one on
// first read.
func (wa *WebApp) GetStats(c *fiber.Ctx) error {
	stats, err := wa.Stats.GetByUserID(c.Context(), wa.UserID)
	if err != nil {
		slog.Error("Failed to fetch stats", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to fetch stats")
	}
	return utils.SendSuccess(c, stats, "")
}

// GetDashboard assembles the overview for one month: stats, active habit
// count, month completions, headline progress and the daily series. The
// independent reads run concurrently.
func (wa *WebApp) GetDashboard(c *fiber.Ctx) error {
	year, month := monthParams(c)
	if _, _, err := services.MonthWindow(year, month); err != nil {
		return utils.SendBadRequest(c, err.Error())
	}

	var (
		stats       *dbmodels.UserStats
		habits      []*dbmodels.Habit
		completions []*dbmodels.HabitCompletion
	)

	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		var err error
		stats, err = wa.Stats.GetByUserID(ctx, wa.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		habits, err = wa.Habits.GetActiveByUserID(ctx, wa.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		completions, err = wa.Ledger.Completions(ctx, wa.UserID, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Failed to assemble dashboard",
			slog.Int("year", year),
			slog.Int("month", month),
			slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to fetch dashboard")
	}

	dashboard := models.DashboardStats{
		Stats:            stats,
		ActiveHabits:     len(habits),
		MonthCompletions: len(completions),
		MonthlyProgress:  services.MonthlyProgress(habits, completions, year, month, time.Now().UTC()),
		Daily:            services.DailySeries(habits, completions, year, month),
	}
	return utils.SendSuccess(c, dashboard, "")
}

// GetAnalysis returns the per-habit monthly table for one month window.
func (wa *WebApp) GetAnalysis(c *fiber.Ctx) error {
	year, month := monthParams(c)
	if _, _, err := services.MonthWindow(year, month); err != nil {
		return utils.SendBadRequest(c, err.Error())
	}

	var (
		habits      []*dbmodels.Habit
		completions []*dbmodels.HabitCompletion
	)

	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		var err error
		habits, err = wa.Habits.GetActiveByUserID(ctx, wa.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		completions, err = wa.Ledger.Completions(ctx, wa.UserID, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Failed to assemble analysis",
			slog.Int("year", year),
			slog.Int("month", month),
			slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to fetch analysis")
	}

	return utils.SendSuccess(c, fiber.Map{
		"rows":     services.MonthlyRows(habits, completions, year, month),
		"progress": services.MonthlyProgress(habits, completions, year, month, time.Now().UTC()),
	}, "")
}

package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mytaskflow/backend/database/repositories"
	"github.com/mytaskflow/backend/services"
	"github.com/mytaskflow/backend/utils"
)

type toggleRequest struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// ListCompletions returns the ledger rows of one month window, newest first.
func (wa *WebApp) ListCompletions(c *fiber.Ctx) error {
	year, month := monthParams(c)

	completions, err := wa.Ledger.Completions(c.Context(), wa.UserID, year, month)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMonth) {
			return utils.SendBadRequest(c, err.Error())
		}
		slog.Error("Failed to list completions",
			slog.Int("year", year),
			slog.Int("month", month),
			slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to fetch completions")
	}
	return utils.SendSuccess(c, completions, "")
}

// ToggleHabit marks or unmarks a habit for a calendar day. Marking an
// already-complete day is a silent no-op; unmarking sweeps every duplicate
// row for the day.
func (wa *WebApp) ToggleHabit(c *fiber.Ctx) error {
	habitID, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid habit id")
	}

	var req toggleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body")
	}

	habit, err := wa.Habits.GetByID(c.Context(), habitID)
	if err != nil {
		if errors.Is(err, repositories.ErrHabitNotFound) {
			return utils.SendNotFound(c, "Habit not found")
		}
		return utils.SendInternalServerError(c, "Failed to fetch habit")
	}
	// Another user's habit and a soft-deleted one both read as absent.
	if habit.UserID != wa.UserID || !habit.IsActive {
		return utils.SendNotFound(c, "Habit not found")
	}

	if req.Completed {
		created, err := wa.Ledger.MarkComplete(c.Context(), wa.UserID, habitID, req.Date)
		if err != nil {
			return wa.sendToggleError(c, habitID, req.Date, err)
		}
		return utils.SendSuccess(c, fiber.Map{"created": created}, "Completion recorded")
	}

	removed, err := wa.Ledger.MarkIncomplete(c.Context(), wa.UserID, habitID, req.Date)
	if err != nil {
		return wa.sendToggleError(c, habitID, req.Date, err)
	}
	return utils.SendSuccess(c, fiber.Map{"removed": removed}, "Completion removed")
}

func (wa *WebApp) sendToggleError(c *fiber.Ctx, habitID int64, date string, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidDate):
		return utils.SendBadRequest(c, err.Error())
	case errors.Is(err, services.ErrToggleInFlight):
		return utils.SendConflict(c, err.Error())
	}
	slog.Error("Toggle failed",
		slog.Int64("habit_id", habitID),
		slog.String("date", date),
		slog.Any("error", err))
	return utils.SendInternalServerError(c, "Failed to toggle habit")
}

package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/services"
	"github.com/mytaskflow/backend/utils"
)

type goalRequest struct {
	Year             int `json:"year"`
	Month            int `json:"month"`
	TargetPercentage int `json:"target_percentage"`
}

// GetGoal returns the goal for the month with its achieved percentage
// recomputed from the ledger. Progress is persisted on read so the stored
// row never goes stale for long.
func (wa *WebApp) GetGoal(c *fiber.Ctx) error {
	year, month := monthParams(c)
	if _, _, err := services.MonthWindow(year, month); err != nil {
		return utils.SendBadRequest(c, err.Error())
	}

	goal, err := wa.Goals.GetForMonth(c.Context(), wa.UserID, year, month)
	if err != nil {
		slog.Error("Failed to fetch goal", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to fetch goal")
	}
	if goal == nil {
		return utils.SendSuccess(c, nil, "No goal set for this month")
	}

	habits, err := wa.Habits.GetActiveByUserID(c.Context(), wa.UserID)
	if err != nil {
		return utils.SendInternalServerError(c, "Failed to fetch habits")
	}
	completions, err := wa.Ledger.Completions(c.Context(), wa.UserID, year, month)
	if err != nil {
		return utils.SendInternalServerError(c, "Failed to fetch completions")
	}

	achieved := services.GoalAchievement(habits, completions, year, month, time.Now().UTC())
	completed := achieved >= goal.TargetPercentage
	if achieved != goal.AchievedPercentage || completed != goal.IsCompleted {
		if err := wa.Goals.UpdateProgress(c.Context(), goal.ID, achieved, completed); err != nil {
			slog.Error("Failed to persist goal progress",
				slog.String("type", "db"),
				slog.Int64("goal_id", goal.ID),
				slog.Any("error", err))
		}
		goal.AchievedPercentage = achieved
		goal.IsCompleted = completed
	}

	return utils.SendSuccess(c, goal, "")
}

// UpsertGoal sets the target percentage for a month, creating the row on
// first write.
func (wa *WebApp) UpsertGoal(c *fiber.Ctx) error {
	var req goalRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body")
	}
	if _, _, err := services.MonthWindow(req.Year, req.Month); err != nil {
		return utils.SendBadRequest(c, err.Error())
	}
	if req.TargetPercentage < 1 || req.TargetPercentage > 100 {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "Invalid goal",
			map[string]string{"target_percentage": "target_percentage must be between 1 and 100"})
	}

	goal := &models.MonthlyGoal{
		UserID:           wa.UserID,
		Year:             req.Year,
		Month:            req.Month,
		TargetPercentage: req.TargetPercentage,
	}
	if err := wa.Goals.Upsert(c.Context(), goal); err != nil {
		slog.Error("Failed to upsert goal", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to save goal")
	}

	saved, err := wa.Goals.GetForMonth(c.Context(), wa.UserID, req.Year, req.Month)
	if err != nil {
		return utils.SendInternalServerError(c, "Failed to fetch goal")
	}
	return utils.SendSuccess(c, saved, "Goal saved")
}

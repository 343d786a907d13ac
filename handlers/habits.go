package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
	"github.com/mytaskflow/backend/utils"
)

type habitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Frequency   string `json:"frequency"`
	TargetCount int    `json:"target_count"`
}

func (r *habitRequest) validate() map[string]string {
	details := make(map[string]string)
	if r.Name == "" {
		details["name"] = "name is required"
	}
	if r.Frequency == "" {
		r.Frequency = models.FrequencyDaily
	} else if !models.ValidFrequency(r.Frequency) {
		details["frequency"] = "frequency must be daily, weekly or monthly"
	}
	if r.TargetCount < 0 {
		details["target_count"] = "target_count cannot be negative"
	}
	if r.TargetCount == 0 {
		r.TargetCount = 1
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// ListHabits returns the user's active habits, oldest first.
func (wa *WebApp) ListHabits(c *fiber.Ctx) error {
	habits, err := wa.Habits.GetActiveByUserID(c.Context(), wa.UserID)
	if err != nil {
		slog.Error("Failed to list habits", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to fetch habits")
	}
	return utils.SendSuccess(c, habits, "")
}

// SearchHabits fuzzy-ranks active habits against the q parameter.
func (wa *WebApp) SearchHabits(c *fiber.Ctx) error {
	habits, err := wa.Search.Search(c.Context(), wa.UserID, c.Query("q"))
	if err != nil {
		slog.Error("Habit search failed", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Search failed")
	}
	return utils.SendSuccess(c, habits, "")
}

func (wa *WebApp) CreateHabit(c *fiber.Ctx) error {
	var req habitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body")
	}
	if details := req.validate(); details != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "Invalid habit", details)
	}

	habit := &models.Habit{
		UserID:      wa.UserID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Frequency:   req.Frequency,
		TargetCount: req.TargetCount,
	}
	if err := wa.Habits.Create(c.Context(), habit); err != nil {
		slog.Error("Failed to create habit", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to create habit")
	}

	if err := wa.Stats.IncrementHabits(c.Context(), wa.UserID); err != nil {
		slog.Error("Failed to bump habit counter",
			slog.String("type", "db"),
			slog.String("user_id", wa.UserID),
			slog.Any("error", err))
	}

	return utils.SendCreated(c, habit, "Habit created")
}

func (wa *WebApp) UpdateHabit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid habit id")
	}

	var req habitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body")
	}
	if details := req.validate(); details != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "Invalid habit", details)
	}

	habit := &models.Habit{
		ID:          id,
		UserID:      wa.UserID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Frequency:   req.Frequency,
		TargetCount: req.TargetCount,
	}
	if err := wa.Habits.Update(c.Context(), habit); err != nil {
		if errors.Is(err, repositories.ErrHabitNotFound) {
			return utils.SendNotFound(c, "Habit not found")
		}
		slog.Error("Failed to update habit", slog.Int64("habit_id", id), slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to update habit")
	}

	updated, err := wa.Habits.GetByID(c.Context(), id)
	if err != nil {
		return utils.SendInternalServerError(c, "Failed to fetch habit")
	}
	return utils.SendSuccess(c, updated, "Habit updated")
}

// DeleteHabit soft-deletes a habit. The habit counter only moves when the
// row actually transitions from active, so repeated deletes stay idempotent.
func (wa *WebApp) DeleteHabit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid habit id")
	}

	transitioned, err := wa.Habits.SoftDelete(c.Context(), id, wa.UserID)
	if err != nil {
		slog.Error("Failed to delete habit", slog.Int64("habit_id", id), slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to delete habit")
	}

	if transitioned {
		if err := wa.Stats.DecrementHabits(c.Context(), wa.UserID); err != nil {
			slog.Error("Failed to drop habit counter",
				slog.String("type", "db"),
				slog.String("user_id", wa.UserID),
				slog.Any("error", err))
		}
	}

	return utils.SendSuccess(c, fiber.Map{"deleted": transitioned}, "Habit deleted")
}

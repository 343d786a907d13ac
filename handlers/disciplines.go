package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
	"github.com/mytaskflow/backend/utils"
)

type disciplineRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	PenaltyType  string `json:"penalty_type"`
	PenaltyValue int64  `json:"penalty_value"`
	GoalID       *int64 `json:"goal_id"`
}

func (r *disciplineRequest) validate() map[string]string {
	details := make(map[string]string)
	if r.Name == "" {
		details["name"] = "name is required"
	}
	if r.PenaltyType == "" {
		r.PenaltyType = models.PenaltyPoints
	} else if !models.ValidPenaltyType(r.PenaltyType) {
		details["penalty_type"] = "penalty_type must be points, streak_reset or custom"
	}
	if r.PenaltyType == models.PenaltyPoints && r.PenaltyValue < 1 {
		details["penalty_value"] = "penalty_value must be at least 1 for a points penalty"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func (wa *WebApp) ListDisciplines(c *fiber.Ctx) error {
	disciplines, err := wa.Disciplines.GetByUserID(c.Context(), wa.UserID)
	if err != nil {
		slog.Error("Failed to list disciplines", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to fetch disciplines")
	}
	return utils.SendSuccess(c, disciplines, "")
}

func (wa *WebApp) CreateDiscipline(c *fiber.Ctx) error {
	var req disciplineRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body")
	}
	if details := req.validate(); details != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "Invalid discipline", details)
	}

	discipline := &models.Discipline{
		UserID:       wa.UserID,
		Name:         req.Name,
		Description:  req.Description,
		PenaltyType:  req.PenaltyType,
		PenaltyValue: req.PenaltyValue,
		GoalID:       req.GoalID,
	}
	if err := wa.Disciplines.Create(c.Context(), discipline); err != nil {
		slog.Error("Failed to create discipline", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to create discipline")
	}
	return utils.SendCreated(c, discipline, "Discipline created")
}

func (wa *WebApp) UpdateDiscipline(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid discipline id")
	}

	var req disciplineRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body")
	}
	if details := req.validate(); details != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "Invalid discipline", details)
	}

	discipline := &models.Discipline{
		ID:           id,
		UserID:       wa.UserID,
		Name:         req.Name,
		Description:  req.Description,
		PenaltyType:  req.PenaltyType,
		PenaltyValue: req.PenaltyValue,
	}
	if err := wa.Disciplines.Update(c.Context(), discipline); err != nil {
		if errors.Is(err, repositories.ErrDisciplineNotFound) {
			return utils.SendNotFound(c, "Discipline not found")
		}
		slog.Error("Failed to update discipline", slog.Int64("discipline_id", id), slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to update discipline")
	}

	updated, err := wa.Disciplines.GetByID(c.Context(), id)
	if err != nil {
		return utils.SendInternalServerError(c, "Failed to fetch discipline")
	}
	return utils.SendSuccess(c, updated, "Discipline updated")
}

func (wa *WebApp) DeleteDiscipline(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid discipline id")
	}

	if err := wa.Disciplines.Delete(c.Context(), id, wa.UserID); err != nil {
		if errors.Is(err, repositories.ErrDisciplineNotFound) {
			return utils.SendNotFound(c, "Discipline not found")
		}
		slog.Error("Failed to delete discipline", slog.Int64("discipline_id", id), slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to delete discipline")
	}
	return utils.SendSuccess(c, nil, "Discipline deleted")
}

// TriggerDiscipline fires the armed -> triggered transition and applies the
// penalty in one transaction.
func (wa *WebApp) TriggerDiscipline(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid discipline id")
	}

	discipline, err := wa.DisciplineSvc.Trigger(c.Context(), wa.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDisciplineNotFound):
			return utils.SendNotFound(c, "Discipline not found")
		case errors.Is(err, repositories.ErrAlreadyTriggered):
			return utils.SendError(c, fiber.StatusConflict, "ALREADY_TRIGGERED", "Discipline already triggered", nil)
		}
		slog.Error("Failed to trigger discipline", slog.Int64("discipline_id", id), slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to trigger discipline")
	}
	return utils.SendSuccess(c, discipline, "Discipline triggered")
}

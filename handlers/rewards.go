package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
	"github.com/mytaskflow/backend/utils"
)

type rewardRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	PointsRequired int64  `json:"points_required"`
}

func (r *rewardRequest) validate() map[string]string {
	details := make(map[string]string)
	if r.Name == "" {
		details["name"] = "name is required"
	}
	if r.PointsRequired < 1 {
		details["points_required"] = "points_required must be at least 1"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func (wa *WebApp) ListRewards(c *fiber.Ctx) error {
	rewards, err := wa.Rewards.GetByUserID(c.Context(), wa.UserID)
	if err != nil {
		slog.Error("Failed to list rewards", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to fetch rewards")
	}
	return utils.SendSuccess(c, rewards, "")
}

func (wa *WebApp) CreateReward(c *fiber.Ctx) error {
	var req rewardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body")
	}
	if details := req.validate(); details != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "Invalid reward", details)
	}

	reward := &models.Reward{
		UserID:         wa.UserID,
		Name:           req.Name,
		Description:    req.Description,
		Icon:           req.Icon,
		PointsRequired: req.PointsRequired,
	}
	if err := wa.Rewards.Create(c.Context(), reward); err != nil {
		slog.Error("Failed to create reward", slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to create reward")
	}
	return utils.SendCreated(c, reward, "Reward created")
}

func (wa *WebApp) UpdateReward(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid reward id")
	}

	var req rewardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body")
	}
	if details := req.validate(); details != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "Invalid reward", details)
	}

	reward := &models.Reward{
		ID:             id,
		UserID:         wa.UserID,
		Name:           req.Name,
		Description:    req.Description,
		Icon:           req.Icon,
		PointsRequired: req.PointsRequired,
	}
	if err := wa.Rewards.Update(c.Context(), reward); err != nil {
		if errors.Is(err, repositories.ErrRewardNotFound) {
			return utils.SendNotFound(c, "Reward not found")
		}
		slog.Error("Failed to update reward", slog.Int64("reward_id", id), slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to update reward")
	}

	updated, err := wa.Rewards.GetByID(c.Context(), id)
	if err != nil {
		return utils.SendInternalServerError(c, "Failed to fetch reward")
	}
	return utils.SendSuccess(c, updated, "Reward updated")
}

func (wa *WebApp) DeleteReward(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid reward id")
	}

	if err := wa.Rewards.Delete(c.Context(), id, wa.UserID); err != nil {
		if errors.Is(err, repositories.ErrRewardNotFound) {
			return utils.SendNotFound(c, "Reward not found")
		}
		slog.Error("Failed to delete reward", slog.Int64("reward_id", id), slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to delete reward")
	}
	return utils.SendSuccess(c, nil, "Reward deleted")
}

// ClaimReward spends the reward's cost and flips it claimed in one
// transaction. A rejected claim leaves both rows untouched.
func (wa *WebApp) ClaimReward(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendBadRequest(c, "Invalid reward id")
	}

	reward, err := wa.RewardSvc.Claim(c.Context(), wa.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRewardNotFound):
			return utils.SendNotFound(c, "Reward not found")
		case errors.Is(err, repositories.ErrAlreadyClaimed):
			return utils.SendError(c, fiber.StatusConflict, "ALREADY_CLAIMED", "Reward already claimed", nil)
		case errors.Is(err, repositories.ErrInsufficientPoints):
			return utils.SendUnprocessableEntity(c, "INSUFFICIENT_POINTS", "Not enough points to claim this reward")
		}
		slog.Error("Failed to claim reward", slog.Int64("reward_id", id), slog.Any("error", err))
		return utils.SendInternalServerError(c, "Failed to claim reward")
	}
	return utils.SendSuccess(c, reward, "Reward claimed")
}

package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mytaskflow/backend/models"
)

// ResetData wipes every row belonging to the demo user and zeroes the stats
// row. When an archive bucket is configured a JSON snapshot is uploaded
// first; a failed snapshot is logged but never blocks the reset. The
// response body keeps the legacy shape clients already parse.
func (wa *WebApp) ResetData(c *fiber.Ctx) error {
	ctx := c.Context()

	if wa.Archive != nil && wa.Archive.Enabled() {
		snapshot := fiber.Map{}
		if habits, err := wa.Habits.GetActiveByUserID(ctx, wa.UserID); err == nil {
			snapshot["habits"] = habits
		}
		if rewards, err := wa.Rewards.GetByUserID(ctx, wa.UserID); err == nil {
			snapshot["rewards"] = rewards
		}
		if disciplines, err := wa.Disciplines.GetByUserID(ctx, wa.UserID); err == nil {
			snapshot["disciplines"] = disciplines
		}
		if stats, err := wa.Stats.GetByUserID(ctx, wa.UserID); err == nil {
			snapshot["stats"] = stats
		}
		if err := wa.Archive.Snapshot(ctx, wa.UserID, snapshot); err != nil {
			slog.Error("Pre-reset snapshot failed",
				slog.String("user_id", wa.UserID),
				slog.Any("error", err))
		}
	}

	if err := wa.Resetter.ResetUserData(ctx, wa.UserID); err != nil {
		slog.Error("Failed to reset user data",
			slog.String("user_id", wa.UserID),
			slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ResetResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	if wa.Ledger != nil {
		wa.Ledger.Purge()
	}

	return c.JSON(models.ResetResponse{
		Success: true,
		Message: "Dados resetados com sucesso!",
	})
}

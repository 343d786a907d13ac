package services

import (
	"context"
	"log/slog"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
	"github.com/uptrace/bun"
)

// DisciplineService owns the trigger flow: the armed -> triggered transition
// and the penalty applied to the stats row in one transaction.
type DisciplineService struct {
	db          TxRunner
	disciplines repositories.DisciplineRepository
	stats       repositories.StatsRepository
}

func NewDisciplineService(db TxRunner, disciplines repositories.DisciplineRepository, stats repositories.StatsRepository) *DisciplineService {
	return &DisciplineService{db: db, disciplines: disciplines, stats: stats}
}

func (s *DisciplineService) Trigger(ctx context.Context, userID string, disciplineID int64) (*models.Discipline, error) {
	discipline, err := s.disciplines.GetByID(ctx, disciplineID)
	if err != nil {
		return nil, err
	}
	if discipline.UserID != userID {
		return nil, repositories.ErrDisciplineNotFound
	}
	if discipline.Status != models.DisciplineArmed {
		return nil, repositories.ErrAlreadyTriggered
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.disciplines.MarkTriggeredTx(ctx, tx, disciplineID, userID); err != nil {
			return err
		}
		switch discipline.PenaltyType {
		case models.PenaltyPoints:
			return s.stats.ApplyPointsPenaltyTx(ctx, tx, userID, discipline.PenaltyValue)
		case models.PenaltyStreakReset:
			return s.stats.ResetStreakTx(ctx, tx, userID)
		}
		// Custom penalties carry no stats effect.
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Discipline triggered",
		slog.String("user_id", userID),
		slog.Int64("discipline_id", disciplineID),
		slog.String("penalty_type", discipline.PenaltyType),
		slog.Int64("penalty_value", discipline.PenaltyValue))

	return s.disciplines.GetByID(ctx, disciplineID)
}

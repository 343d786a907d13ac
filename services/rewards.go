package services

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
	"github.com/uptrace/bun"
)

// TxRunner is the slice of *bun.DB the transactional services need.
type TxRunner interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error
}

// RewardService owns the claim flow: a conditional points debit and the
// one-way is_claimed flip in a single transaction, so a rejected debit
// produces no state change at all.
type RewardService struct {
	db      TxRunner
	rewards repositories.RewardRepository
	stats   repositories.StatsRepository
}

func NewRewardService(db TxRunner, rewards repositories.RewardRepository, stats repositories.StatsRepository) *RewardService {
	return &RewardService{db: db, rewards: rewards, stats: stats}
}

func (s *RewardService) Claim(ctx context.Context, userID string, rewardID int64) (*models.Reward, error) {
	reward, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if reward.UserID != userID {
		return nil, repositories.ErrRewardNotFound
	}
	if reward.IsClaimed {
		return nil, repositories.ErrAlreadyClaimed
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.stats.SpendPointsTx(ctx, tx, userID, reward.PointsRequired); err != nil {
			return err
		}
		return s.rewards.MarkClaimedTx(ctx, tx, rewardID, userID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Reward claimed",
		slog.String("user_id", userID),
		slog.Int64("reward_id", rewardID),
		slog.Int64("points_spent", reward.PointsRequired))

	return s.rewards.GetByID(ctx, rewardID)
}

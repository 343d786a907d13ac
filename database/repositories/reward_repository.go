package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mytaskflow/backend/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrRewardNotFound = errors.New("reward not found")
	ErrAlreadyClaimed = errors.New("reward already claimed")
)

type RewardRepository interface {
	Create(ctx context.Context, reward *models.Reward) error
	GetByID(ctx context.Context, id int64) (*models.Reward, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Reward, error)
	Update(ctx context.Context, reward *models.Reward) error
	Delete(ctx context.Context, id int64, userID string) error
	// MarkClaimedTx performs the one-way false -> true transition; a row
	// already claimed is left untouched and reported as ErrAlreadyClaimed.
	MarkClaimedTx(ctx context.Context, tx bun.Tx, id int64, userID string) error
}

type rewardRepository struct {
	db *bun.DB
}

func NewRewardRepository(db *bun.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	reward.IsClaimed = false
	reward.ClaimedAt = nil
	reward.CreatedAt = time.Now()
	reward.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(reward).Exec(ctx)
	return err
}

func (r *rewardRepository) GetByID(ctx context.Context, id int64) (*models.Reward, error) {
	reward := new(models.Reward)
	err := r.db.NewSelect().
		Model(reward).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, err
	}
	return reward, nil
}

func (r *rewardRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Reward, error) {
	var rewards []*models.Reward
	err := r.db.NewSelect().
		Model(&rewards).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *rewardRepository) Update(ctx context.Context, reward *models.Reward) error {
	reward.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(reward).
		Column("name", "description", "icon", "points_required", "updated_at").
		WherePK().
		Where("user_id = ?", reward.UserID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRewardNotFound
	}
	return nil
}

func (r *rewardRepository) Delete(ctx context.Context, id int64, userID string) error {
	res, err := r.db.NewDelete().
		Model((*models.Reward)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRewardNotFound
	}
	return nil
}

func (r *rewardRepository) MarkClaimedTx(ctx context.Context, tx bun.Tx, id int64, userID string) error {
	res, err := tx.NewUpdate().
		Model((*models.Reward)(nil)).
		Set("is_claimed = ?", true).
		Set("claimed_at = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Where("is_claimed = ?", false).
		Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyClaimed
	}
	return nil
}

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
	ErrDisciplineNotFound = errors.New("discipline not found")
	ErrAlreadyTriggered   = errors.New("discipline already triggered")
)

type DisciplineRepository interface {
	Create(ctx context.Context, discipline *models.Discipline) error
	GetByID(ctx context.Context, id int64) (*models.Discipline, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Discipline, error)
	Update(ctx context.Context, discipline *models.Discipline) error
	Delete(ctx context.Context, id int64, userID string) error
	// MarkTriggeredTx performs the armed -> triggered transition. There is
	// no re-arming path.
	MarkTriggeredTx(ctx context.Context, tx bun.Tx, id int64, userID string) error
}

type disciplineRepository struct {
	db *bun.DB
}

func NewDisciplineRepository(db *bun.DB) DisciplineRepository {
	return &disciplineRepository{db: db}
}

func (r *disciplineRepository) Create(ctx context.Context, discipline *models.Discipline) error {
	discipline.Status = models.DisciplineArmed
	discipline.TriggeredAt = nil
	discipline.CreatedAt = time.Now()
	discipline.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(discipline).Exec(ctx)
	return err
}

func (r *disciplineRepository) GetByID(ctx context.Context, id int64) (*models.Discipline, error) {
	discipline := new(models.Discipline)
	err := r.db.NewSelect().
		Model(discipline).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisciplineNotFound
	}
	if err != nil {
		return nil, err
	}
	return discipline, nil
}

func (r *disciplineRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Discipline, error) {
	var disciplines []*models.Discipline
	err := r.db.NewSelect().
		Model(&disciplines).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return disciplines, nil
}

func (r *disciplineRepository) Update(ctx context.Context, discipline *models.Discipline) error {
	discipline.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(discipline).
		Column("name", "description", "penalty_type", "penalty_value", "updated_at").
		WherePK().
		Where("user_id = ?", discipline.UserID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDisciplineNotFound
	}
	return nil
}

func (r *disciplineRepository) Delete(ctx context.Context, id int64, userID string) error {
	res, err := r.db.NewDelete().
		Model((*models.Discipline)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDisciplineNotFound
	}
	return nil
}

func (r *disciplineRepository) MarkTriggeredTx(ctx context.Context, tx bun.Tx, id int64, userID string) error {
	res, err := tx.NewUpdate().
		Model((*models.Discipline)(nil)).
		Set("status = ?", models.DisciplineTriggered).
		Set("triggered_at = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Where("status = ?", models.DisciplineArmed).
		Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyTriggered
	}
	return nil
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
)

func TestDisciplineTrigger(t *testing.T) {
	ctx := context.Background()

	newDiscipline := func(penaltyType string, value int64) *models.Discipline {
		return &models.Discipline{
			ID:           1,
			UserID:       testUser,
			Name:         "Skipped workout",
			PenaltyType:  penaltyType,
			PenaltyValue: value,
			Status:       models.DisciplineArmed,
		}
	}

	t.Run("points penalty debits the stats row", func(t *testing.T) {
		disciplines := &fakeDisciplineRepo{disciplines: map[int64]*models.Discipline{
			1: newDiscipline(models.PenaltyPoints, 25),
		}}
		stats := &fakeStatsRepo{}
		svc := NewDisciplineService(&fakeTxRunner{}, disciplines, stats)

		triggered, err := svc.Trigger(ctx, testUser, 1)
		require.NoError(t, err)
		assert.Equal(t, models.DisciplineTriggered, triggered.Status)
		assert.NotNil(t, triggered.TriggeredAt)
		assert.Equal(t, int64(25), stats.penaltyTotal)
		assert.Zero(t, stats.streakResets)
	})

	t.Run("streak reset penalty zeroes the streak", func(t *testing.T) {
		disciplines := &fakeDisciplineRepo{disciplines: map[int64]*models.Discipline{
			1: newDiscipline(models.PenaltyStreakReset, 0),
		}}
		stats := &fakeStatsRepo{}
		svc := NewDisciplineService(&fakeTxRunner{}, disciplines, stats)

		_, err := svc.Trigger(ctx, testUser, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.streakResets)
		assert.Zero(t, stats.penaltyTotal)
	})

	t.Run("custom penalty leaves stats untouched", func(t *testing.T) {
		disciplines := &fakeDisciplineRepo{disciplines: map[int64]*models.Discipline{
			1: newDiscipline(models.PenaltyCustom, 0),
		}}
		stats := &fakeStatsRepo{}
		svc := NewDisciplineService(&fakeTxRunner{}, disciplines, stats)

		triggered, err := svc.Trigger(ctx, testUser, 1)
		require.NoError(t, err)
		assert.Equal(t, models.DisciplineTriggered, triggered.Status)
		assert.Zero(t, stats.penaltyTotal)
		assert.Zero(t, stats.streakResets)
	})

	t.Run("second trigger is rejected", func(t *testing.T) {
		disciplines := &fakeDisciplineRepo{disciplines: map[int64]*models.Discipline{
			1: newDiscipline(models.PenaltyPoints, 25),
		}}
		stats := &fakeStatsRepo{}
		svc := NewDisciplineService(&fakeTxRunner{}, disciplines, stats)

		_, err := svc.Trigger(ctx, testUser, 1)
		require.NoError(t, err)

		_, err = svc.Trigger(ctx, testUser, 1)
		assert.ErrorIs(t, err, repositories.ErrAlreadyTriggered)
		assert.Equal(t, int64(25), stats.penaltyTotal, "penalty applied exactly once")
	})

	t.Run("unknown discipline", func(t *testing.T) {
		svc := NewDisciplineService(&fakeTxRunner{}, &fakeDisciplineRepo{disciplines: map[int64]*models.Discipline{}}, &fakeStatsRepo{})
		_, err := svc.Trigger(ctx, testUser, 42)
		assert.ErrorIs(t, err, repositories.ErrDisciplineNotFound)
	})

	t.Run("another user's discipline reads as not found", func(t *testing.T) {
		discipline := newDiscipline(models.PenaltyPoints, 25)
		discipline.UserID = "someone-else"
		svc := NewDisciplineService(&fakeTxRunner{}, &fakeDisciplineRepo{disciplines: map[int64]*models.Discipline{1: discipline}}, &fakeStatsRepo{})
		_, err := svc.Trigger(ctx, testUser, 1)
		assert.ErrorIs(t, err, repositories.ErrDisciplineNotFound)
	})
}

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodels "github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/database/repositories"
	"github.com/mytaskflow/backend/services"
)

// Stubs embed the repository interfaces and implement only what the toggle
// path touches.

type stubHabitRepo struct {
	repositories.HabitRepository
	habits map[int64]*dbmodels.Habit
}

func (s *stubHabitRepo) GetByID(_ context.Context, id int64) (*dbmodels.Habit, error) {
	habit, ok := s.habits[id]
	if !ok {
		return nil, repositories.ErrHabitNotFound
	}
	return habit, nil
}

type stubCompletionRepo struct {
	repositories.CompletionRepository
	created int
}

func (s *stubCompletionRepo) Create(context.Context, *dbmodels.HabitCompletion) error {
	s.created++
	return nil
}

type stubStatsRepo struct {
	repositories.StatsRepository
}

func (stubStatsRepo) RecordCompletion(context.Context, string) error { return nil }

func toggleApp(habits *stubHabitRepo, completions *stubCompletionRepo) *fiber.App {
	app := fiber.New()
	wa := &WebApp{
		UserID: "demo-user-001",
		Habits: habits,
		Ledger: services.NewLedgerService(completions, stubStatsRepo{}),
	}
	app.Post("/api/habits/:id/toggle", wa.ToggleHabit)
	return app
}

func postToggle(t *testing.T, app *fiber.App, id string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/habits/"+id+"/toggle",
		strings.NewReader(`{"date":"2025-03-15","completed":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestToggleHabitOwnership(t *testing.T) {
	habits := &stubHabitRepo{habits: map[int64]*dbmodels.Habit{
		1: {ID: 1, UserID: "demo-user-001", Name: "Run", IsActive: true},
		2: {ID: 2, UserID: "someone-else", Name: "Theirs", IsActive: true},
		3: {ID: 3, UserID: "demo-user-001", Name: "Retired", IsActive: false},
	}}

	t.Run("owned active habit toggles", func(t *testing.T) {
		completions := &stubCompletionRepo{}
		app := toggleApp(habits, completions)

		resp := postToggle(t, app, "1")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, completions.created)
	})

	t.Run("another user's habit reads as absent", func(t *testing.T) {
		completions := &stubCompletionRepo{}
		app := toggleApp(habits, completions)

		resp := postToggle(t, app, "2")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Zero(t, completions.created)
	})

	t.Run("soft-deleted habit reads as absent", func(t *testing.T) {
		completions := &stubCompletionRepo{}
		app := toggleApp(habits, completions)

		resp := postToggle(t, app, "3")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Zero(t, completions.created)
	})

	t.Run("unknown habit", func(t *testing.T) {
		completions := &stubCompletionRepo{}
		app := toggleApp(habits, completions)

		resp := postToggle(t, app, "99")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mytaskflow/backend/database/repositories"
	"github.com/mytaskflow/backend/middleware"
	"github.com/mytaskflow/backend/services"
	"github.com/mytaskflow/backend/utils"
)

// DataResetter wipes every row belonging to a user. Satisfied by
// *database.DB.
type DataResetter interface {
	ResetUserData(ctx context.Context, userID string) error
}

// Pinger verifies database connectivity. Satisfied by *database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WebApp carries the handler dependencies. All data is scoped to the single
// configured demo user; there is no per-request identity.
type WebApp struct {
	UserID string

	Habits      repositories.HabitRepository
	Stats       repositories.StatsRepository
	Rewards     repositories.RewardRepository
	Disciplines repositories.DisciplineRepository
	Goals       repositories.GoalRepository

	Ledger        *services.LedgerService
	RewardSvc     *services.RewardService
	DisciplineSvc *services.DisciplineService
	Search        *services.SearchService
	Archive       *services.ArchiveService

	Resetter DataResetter
	Pinger   Pinger
}

// RegisterRoutes mounts every endpoint on the app. The returned function
// stops the rate limiters' cleanup goroutines; call it during shutdown.
func (wa *WebApp) RegisterRoutes(app *fiber.App) func() {
	apiLimiter := middleware.NewAPIRateLimiter()
	resetLimiter := middleware.NewResetRateLimiter()

	app.Get("/health", wa.HealthCheck)

	api := app.Group("/api", apiLimiter.Middleware())

	api.Get("/habits", wa.ListHabits)
	api.Get("/habits/search", wa.SearchHabits)
	api.Post("/habits", wa.CreateHabit)
	api.Put("/habits/:id", wa.UpdateHabit)
	api.Delete("/habits/:id", wa.DeleteHabit)
	api.Post("/habits/:id/toggle", wa.ToggleHabit)

	api.Get("/completions", wa.ListCompletions)
	api.Get("/stats", wa.GetStats)
	api.Get("/dashboard", wa.GetDashboard)
	api.Get("/analysis", wa.GetAnalysis)

	api.Get("/rewards", wa.ListRewards)
	api.Post("/rewards", wa.CreateReward)
	api.Put("/rewards/:id", wa.UpdateReward)
	api.Delete("/rewards/:id", wa.DeleteReward)
	api.Post("/rewards/:id/claim", wa.ClaimReward)

	api.Get("/disciplines", wa.ListDisciplines)
	api.Post("/disciplines", wa.CreateDiscipline)
	api.Put("/disciplines/:id", wa.UpdateDiscipline)
	api.Delete("/disciplines/:id", wa.DeleteDiscipline)
	api.Post("/disciplines/:id/trigger", wa.TriggerDiscipline)

	api.Get("/goals", wa.GetGoal)
	api.Put("/goals", wa.UpsertGoal)

	api.Post("/reset",
		resetLimiter.Middleware(),
		middleware.AuditLogMiddleware("data_reset"),
		wa.ResetData)

	return func() {
		apiLimiter.Stop()
		resetLimiter.Stop()
	}
}

// HealthCheck reports service liveness and database reachability.
func (wa *WebApp) HealthCheck(c *fiber.Ctx) error {
	if wa.Pinger != nil {
		if err := wa.Pinger.Ping(c.Context()); err != nil {
			slog.Error("Health check failed",
				slog.String("type", "db"),
				slog.Any("error", err))
			return utils.SendError(c, fiber.StatusServiceUnavailable, "DB_UNAVAILABLE",
				"Database is unreachable", nil)
		}
	}
	return utils.SendSuccess(c, fiber.Map{
		"status":   "healthy",
		"database": "up",
		"time":     time.Now().UTC(),
	}, "Service is running")
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// monthParams reads the zero-based year/month query pair, defaulting to the
// current UTC month.
func monthParams(c *fiber.Ctx) (int, int) {
	now := time.Now().UTC()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month())-1)
	return year, month
}

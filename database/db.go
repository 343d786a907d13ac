package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"log/slog"

	"github.com/mytaskflow/backend/database/models"
	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	// Verify the server is reachable before handing a bad DSN to the pool.
	var conn net.Conn
	var err error

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = net.DialTimeout("tcp", addr, defaultConnTimeout)
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(pool)}, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(pool *pgxpool.Pool) *bun.DB {
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pool.Config().ConnConfig.User,
		pool.Config().ConnConfig.Password,
		pool.Config().ConnConfig.Host,
		pool.Config().ConnConfig.Port,
		pool.Config().ConnConfig.Database,
		sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// Ping verifies both database connections are working
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}

// InitializeSchema creates all application tables and indexes.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.Habit)(nil),
		(*models.HabitCompletion)(nil),
		(*models.UserStats)(nil),
		(*models.Reward)(nil),
		(*models.Discipline)(nil),
		(*models.MonthlyGoal)(nil),
	}

	for _, model := range tables {
		_, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_habits_user_id ON habits(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_habits_user_active ON habits(user_id) WHERE is_active = true;",
		"CREATE INDEX IF NOT EXISTS idx_habit_completions_user_id ON habit_completions(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_habit_completions_user_window ON habit_completions(user_id, completed_at DESC);",
		// One ledger row per habit per calendar day. Insert violations are
		// mapped to an idempotent no-op at the repository layer.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_habit_completions_unique_day ON habit_completions(habit_id, user_id, (completed_at::date));",
		"CREATE INDEX IF NOT EXISTS idx_rewards_user_id ON rewards(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_rewards_unclaimed ON rewards(user_id) WHERE is_claimed = false;",
		"CREATE INDEX IF NOT EXISTS idx_disciplines_user_id ON disciplines(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_disciplines_armed ON disciplines(user_id) WHERE status = 'armed';",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_monthly_goals_user_period ON monthly_goals(user_id, year, month);",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// ResetUserData deletes all rows belonging to userID and zeroes the stats
// row. Completions go first so nothing dangles if a later delete fails.
func (db *DB) ResetUserData(ctx context.Context, userID string) error {
	deletes := []struct {
		name  string
		model interface{}
	}{
		{"habit_completions", (*models.HabitCompletion)(nil)},
		{"rewards", (*models.Reward)(nil)},
		{"disciplines", (*models.Discipline)(nil)},
		{"monthly_goals", (*models.MonthlyGoal)(nil)},
		{"habits", (*models.Habit)(nil)},
	}

	for _, d := range deletes {
		if _, err := db.bunDB.NewDelete().
			Model(d.model).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", d.name, err)
		}
	}

	_, err := db.bunDB.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_points = 0").
		Set("current_streak = 0").
		Set("longest_streak = 0").
		Set("total_completions = 0").
		Set("total_habits = 0").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset user stats: %w", err)
	}

	slog.Info("User data reset",
		slog.String("type", "db"),
		slog.String("user_id", userID))
	return nil
}

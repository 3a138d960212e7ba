package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"project-analyzer-web/config"
	"project-analyzer-web/errors"
)

// BuildConnectionString builds a lib/pq connection string.
func BuildConnectionString(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode,
	)
}

// Connect opens the session database, verifies connectivity with retries and
// ensures the schema exists.
func Connect(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildConnectionString(cfg))
	if err != nil {
		return nil, errors.NewDatabaseError(errors.ErrCodeDatabaseConnection,
			"Failed to open session database", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetConnMaxIdleTime(30 * time.Minute)

	retryer := errors.NewRetryer(errors.DatabaseRetryConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err = retryer.Execute(ctx, func() error {
		if pingErr := db.PingContext(ctx); pingErr != nil {
			return errors.NewDatabaseError(errors.ErrCodeDatabaseConnection,
				"Session database unreachable", pingErr)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS analysis_sessions (
	id          TEXT PRIMARY KEY,
	snapshot    JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_sessions_updated_at
	ON analysis_sessions (updated_at);
`

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return errors.NewDatabaseError(errors.ErrCodeDatabaseQuery,
			"Failed to ensure session schema", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nightbite/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// PostgresRepository stores intent resolutions
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewWithDB wraps an existing connection
func NewWithDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the resolution log table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS intent_resolutions (
			id             BIGSERIAL PRIMARY KEY,
			query          TEXT        NOT NULL,
			source         TEXT        NOT NULL,
			intent         JSONB,
			failure_stage  TEXT        NOT NULL DEFAULT '',
			failure_cause  TEXT        NOT NULL DEFAULT '',
			model          TEXT        NOT NULL DEFAULT '',
			latency_ms     BIGINT      NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create intent_resolutions: %w", err)
	}
	return nil
}

// RecordResolution inserts one resolution
func (r *PostgresRepository) RecordResolution(ctx context.Context, rec model.ResolutionRecord) error {
	var intentJSON []byte
	if rec.Intent != nil {
		var err error
		intentJSON, err = json.Marshal(rec.Intent)
		if err != nil {
			return fmt.Errorf("failed to marshal intent: %w", err)
		}
	}

	query := `
		INSERT INTO intent_resolutions (query, source, intent, failure_stage, failure_cause, model, latency_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.Query,
		string(rec.Source),
		nullableJSON(intentJSON),
		rec.FailureStage,
		rec.FailureCause,
		rec.Model,
		rec.Latency.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resolution: %w", err)
	}
	return nil
}

type resolutionRow struct {
	ID           int64          `db:"id"`
	Query        string         `db:"query"`
	Source       string         `db:"source"`
	Intent       sql.NullString `db:"intent"`
	FailureStage string         `db:"failure_stage"`
	FailureCause string         `db:"failure_cause"`
	Model        string         `db:"model"`
	LatencyMs    int64          `db:"latency_ms"`
	CreatedAt    time.Time      `db:"created_at"`
}

// RecentResolutions returns the newest resolutions matching filter
func (r *PostgresRepository) RecentResolutions(ctx context.Context, filter model.ResolutionFilter) ([]model.ResolutionRecord, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.Source != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("source = $%d", argIndex))
		args = append(args, string(*filter.Source))
		argIndex++
	}
	if filter.FailureStage != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("failure_stage = $%d", argIndex))
		args = append(args, *filter.FailureStage)
		argIndex++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, query, source, intent, failure_stage, failure_cause, model, latency_ms, created_at
		FROM intent_resolutions
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, strings.Join(whereClauses, " AND "), argIndex)

	var rows []resolutionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list resolutions: %w", err)
	}

	records := make([]model.ResolutionRecord, 0, len(rows))
	for _, row := range rows {
		rec := model.ResolutionRecord{
			ID:           row.ID,
			Query:        row.Query,
			Source:       model.Source(row.Source),
			FailureStage: row.FailureStage,
			FailureCause: row.FailureCause,
			Model:        row.Model,
			Latency:      time.Duration(row.LatencyMs) * time.Millisecond,
			CreatedAt:    row.CreatedAt,
		}
		if row.Intent.Valid {
			var intent model.ParsedIntent
			if err := json.Unmarshal([]byte(row.Intent.String), &intent); err != nil {
				return nil, fmt.Errorf("failed to decode intent for resolution %d: %w", row.ID, err)
			}
			rec.Intent = &intent
		}
		records = append(records, rec)
	}
	return records, nil
}

func nullableJSON(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}

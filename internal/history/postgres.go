package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/vizboard/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS upload_history (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	file_name   TEXT NOT NULL,
	encoding    TEXT NOT NULL,
	size_bytes  BIGINT NOT NULL,
	row_count   INTEGER NOT NULL,
	column_count INTEGER NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS upload_history_uploaded_at_idx ON upload_history (uploaded_at DESC);
`

// Postgres records history in the upload_history table.
type Postgres struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL, applies pool settings and creates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Record inserts one entry.
func (p *Postgres) Record(ctx context.Context, e Entry) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO upload_history (id, session_id, file_name, encoding, size_bytes, row_count, column_count, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pgtype.UUID{Bytes: e.ID, Valid: true},
		e.SessionID, e.FileName, e.Encoding, e.SizeBytes, e.Rows, e.Columns,
		pgtype.Timestamptz{Time: e.UploadedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (p *Postgres) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, session_id, file_name, encoding, size_bytes, row_count, column_count, uploaded_at
		 FROM upload_history ORDER BY uploaded_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanEntry(rows pgx.Rows) (*Entry, error) {
	var (
		id         pgtype.UUID
		sessionID  string
		fileName   string
		encoding   string
		sizeBytes  int64
		rowCount   int32
		colCount   int32
		uploadedAt pgtype.Timestamptz
	)

	err := rows.Scan(&id, &sessionID, &fileName, &encoding, &sizeBytes, &rowCount, &colCount, &uploadedAt)
	if err != nil {
		return nil, err
	}

	return &Entry{
		ID:         uuid.UUID(id.Bytes),
		SessionID:  sessionID,
		FileName:   fileName,
		Encoding:   encoding,
		SizeBytes:  sizeBytes,
		Rows:       int(rowCount),
		Columns:    int(colCount),
		UploadedAt: uploadedAt.Time,
	}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

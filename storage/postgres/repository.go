// Copyright 2026 Calyptra Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/storage"
)

// uniqueViolation is the Postgres error code for duplicate key violations.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id UUID PRIMARY KEY,
    filename VARCHAR(255) NOT NULL,
    upload_date TIMESTAMPTZ NOT NULL DEFAULT now(),
    status TEXT NOT NULL DEFAULT 'uploaded',
    processed BOOLEAN GENERATED ALWAYS AS (status = 'processed') STORED,
    text_preview TEXT NOT NULL DEFAULT '',
    checksum TEXT NOT NULL DEFAULT ''
)`

// Config contains connection parameters for the metadata store.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// MaxConns bounds the shared connection pool. Acquisition blocks when
	// the pool is exhausted, which is the intended backpressure on
	// concurrent database work. Default: 3.
	MaxConns int32
}

// DSN renders the config as a pgx keyword/value connection string.
func (c Config) DSN() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s",
		c.Host, port, c.Database, c.User, c.Password)
}

// Repository implements storage.DocumentRepository on PostgreSQL.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ storage.DocumentRepository = (*Repository)(nil)

// NewRepository connects to PostgreSQL with a small bounded pool and ensures
// the documents table exists.
//
// Returns storage.DocumentRepository interface to enforce abstraction.
func NewRepository(ctx context.Context, cfg Config) (storage.DocumentRepository, error) {
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 3
	}
	return newRepository(ctx, cfg.DSN(), maxConns)
}

// NewRepositoryFromDSN connects using a raw connection string. Used by tests
// and tooling that already hold a DSN.
func NewRepositoryFromDSN(ctx context.Context, dsn string) (storage.DocumentRepository, error) {
	return newRepository(ctx, dsn, 3)
}

func newRepository(ctx context.Context, dsn string, maxConns int32) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MinConns = 1
	poolCfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: slog.Default().With("component", "postgres-repository"),
	}, nil
}

// InsertDocument adds a new document row.
func (r *Repository) InsertDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, filename, upload_date, status, checksum)
		VALUES ($1, $2, $3, $4, $5)`,
		doc.ID, doc.Filename, doc.UploadedAt, string(doc.Status), doc.Checksum)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, doc.ID)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetDocument retrieves a single document by ID.
func (r *Repository) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, filename, upload_date, status, text_preview, checksum
		FROM documents
		WHERE id = $1`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// UpdateStatus transitions a document to the given lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status core.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidStatus, status)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $1
		WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

// MarkProcessed records processed status and the text preview in one write.
func (r *Repository) MarkProcessed(ctx context.Context, id string, preview string) error {
	if len(preview) > core.PreviewLimit {
		preview = preview[:core.PreviewLimit]
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $1, text_preview = $2
		WHERE id = $3`, string(core.StatusProcessed), preview, id)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

// ListRecent retrieves the most recently uploaded documents, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*core.Document, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, filename, upload_date, status, text_preview, checksum
		FROM documents
		ORDER BY upload_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Ping verifies the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*core.Document, error) {
	var doc core.Document
	var status string
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.UploadedAt, &status, &doc.TextPreview, &doc.Checksum); err != nil {
		return nil, err
	}
	doc.Status = core.Status(status)
	return &doc, nil
}

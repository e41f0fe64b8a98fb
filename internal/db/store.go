package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floorquote/backend/internal/models"
)

const (
	StatusProcessing = "PROCESSING"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

var ErrNotFound = errors.New("analysis not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS analyses (
		id          UUID PRIMARY KEY,
		session_id  TEXT NOT NULL,
		source      TEXT NOT NULL,
		status      TEXT NOT NULL,
		error       TEXT,
		client      JSONB,
		assessment  JSONB,
		cost        JSONB,
		timeline    JSONB,
		archive_key TEXT,
		started_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finished_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS analyses_session_idx ON analyses (session_id, started_at DESC)`,
	`CREATE INDEX IF NOT EXISTS analyses_finished_idx ON analyses (finished_at DESC) WHERE status = 'DONE'`,
}

// EnsureSchema creates the analyses table if it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
		}
		return nil
	})
}

// CreateAnalysis records the start of a job so failed uploads are visible too.
func (s *Store) CreateAnalysis(ctx context.Context, id, sessionID, source, archiveKey string) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO analyses (id, session_id, source, status, archive_key, started_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW())
	`, id, sessionID, source, StatusProcessing, archiveKey)
	return err
}

// SaveAnalysis upserts a completed analysis. It also works when CreateAnalysis was never recorded.
func (s *Store) SaveAnalysis(ctx context.Context, a models.Analysis) error {
	client, err := json.Marshal(a.Client)
	if err != nil {
		return err
	}
	assessment, err := json.Marshal(a.Assessment)
	if err != nil {
		return err
	}
	cost, err := json.Marshal(a.Cost)
	if err != nil {
		return err
	}
	timeline, err := json.Marshal(a.Timeline)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO analyses (id, session_id, source, status, client, assessment, cost, timeline, archive_key, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			error = NULL,
			client = EXCLUDED.client,
			assessment = EXCLUDED.assessment,
			cost = EXCLUDED.cost,
			timeline = EXCLUDED.timeline,
			archive_key = COALESCE(EXCLUDED.archive_key, analyses.archive_key),
			finished_at = NOW()
	`, a.ID, a.SessionID, a.Source, StatusDone, client, assessment, cost, timeline, a.ArchiveKey, a.CreatedAt)
	return err
}

func (s *Store) FailAnalysis(ctx context.Context, id string, reason string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE analyses SET status = $1, error = $2, finished_at = NOW() WHERE id = $3`, StatusFailed, reason, id)
	return err
}

// UpdateCost stores an operator price adjustment.
func (s *Store) UpdateCost(ctx context.Context, id string, cost models.CostEstimate) error {
	payload, err := json.Marshal(cost)
	if err != nil {
		return err
	}
	tag, err := s.Pool.Exec(ctx, `UPDATE analyses SET cost = $1 WHERE id = $2`, payload, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) LatestAnalysis(ctx context.Context) (models.Analysis, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, session_id, source, client, assessment, cost, timeline, COALESCE(archive_key, ''), finished_at
		FROM analyses
		WHERE status = $1
		ORDER BY finished_at DESC
		LIMIT 1
	`, StatusDone)

	var (
		a                                  models.Analysis
		client, assessment, cost, timeline []byte
		finished                           *time.Time
	)
	err := row.Scan(&a.ID, &a.SessionID, &a.Source, &client, &assessment, &cost, &timeline, &a.ArchiveKey, &finished)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Analysis{}, ErrNotFound
	}
	if err != nil {
		return models.Analysis{}, err
	}
	if finished != nil {
		a.CreatedAt = *finished
	}
	for _, f := range []struct {
		raw []byte
		dst any
	}{
		{client, &a.Client},
		{assessment, &a.Assessment},
		{cost, &a.Cost},
		{timeline, &a.Timeline},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return models.Analysis{}, fmt.Errorf("decode analysis %s: %w", a.ID, err)
		}
	}
	return a, nil
}

//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"voxelbrain/internal/model"

	_ "modernc.org/sqlite"
)

func DefaultStoreKind() string {
	return KindSQLite
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

// SQLiteStore keeps one row per parameter record and one per episode. The
// record itself is the versioned JSON payload; the other columns only serve
// ordering and lookups.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

const schema = `
CREATE TABLE IF NOT EXISTS param_sets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	param_count INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	schema_version INTEGER NOT NULL,
	codec_version INTEGER NOT NULL,
	payload BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS episodes (
	id TEXT PRIMARY KEY,
	params_id TEXT NOT NULL DEFAULT '',
	steps INTEGER NOT NULL,
	mean_abs REAL NOT NULL,
	broken_signals INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	schema_version INTEGER NOT NULL,
	codec_version INTEGER NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS episodes_by_params ON episodes (params_id, created_at);
`

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return fmt.Errorf("create schema: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveParams(ctx context.Context, record model.ParamRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeParams(record)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO param_sets (id, name, param_count, created_at, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			param_count = excluded.param_count,
			created_at = excluded.created_at,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, record.ID, record.Name, len(record.Params), record.CreatedAt.UnixNano(), record.SchemaVersion, record.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetParams(ctx context.Context, id string) (model.ParamRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.ParamRecord{}, false, err
	}
	payload, ok, err := queryPayload(ctx, db, `SELECT payload FROM param_sets WHERE id = ?`, id)
	if err != nil || !ok {
		return model.ParamRecord{}, false, err
	}
	record, err := DecodeParams(payload)
	if err != nil {
		return model.ParamRecord{}, false, fmt.Errorf("decode params %s: %w", id, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) ListParams(ctx context.Context) ([]model.ParamRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	out := make([]model.ParamRecord, 0)
	err = scanPayloads(ctx, db, func(id string, payload []byte) error {
		record, err := DecodeParams(payload)
		if err != nil {
			return fmt.Errorf("decode params %s: %w", id, err)
		}
		out = append(out, record)
		return nil
	}, `SELECT id, payload FROM param_sets ORDER BY created_at, id`)
	return out, err
}

func (s *SQLiteStore) SaveEpisode(ctx context.Context, summary model.EpisodeSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeEpisode(summary)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO episodes (id, params_id, steps, mean_abs, broken_signals, created_at, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			params_id = excluded.params_id,
			steps = excluded.steps,
			mean_abs = excluded.mean_abs,
			broken_signals = excluded.broken_signals,
			created_at = excluded.created_at,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, summary.ID, summary.ParamsID, summary.Steps, summary.MeanAbs, summary.BrokenSignals,
		summary.CreatedAt.UnixNano(), summary.SchemaVersion, summary.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetEpisode(ctx context.Context, id string) (model.EpisodeSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.EpisodeSummary{}, false, err
	}
	payload, ok, err := queryPayload(ctx, db, `SELECT payload FROM episodes WHERE id = ?`, id)
	if err != nil || !ok {
		return model.EpisodeSummary{}, false, err
	}
	summary, err := DecodeEpisode(payload)
	if err != nil {
		return model.EpisodeSummary{}, false, fmt.Errorf("decode episode %s: %w", id, err)
	}
	return summary, true, nil
}

func (s *SQLiteStore) ListEpisodes(ctx context.Context, paramsID string) ([]model.EpisodeSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	query := `SELECT id, payload FROM episodes ORDER BY created_at, id`
	args := []any{}
	if paramsID != "" {
		query = `SELECT id, payload FROM episodes WHERE params_id = ? ORDER BY created_at, id`
		args = append(args, paramsID)
	}

	out := make([]model.EpisodeSummary, 0)
	err = scanPayloads(ctx, db, func(id string, payload []byte) error {
		summary, err := DecodeEpisode(payload)
		if err != nil {
			return fmt.Errorf("decode episode %s: %w", id, err)
		}
		out = append(out, summary)
		return nil
	}, query, args...)
	return out, err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func queryPayload(ctx context.Context, db *sql.DB, query string, id string) ([]byte, bool, error) {
	var payload []byte
	err := db.QueryRowContext(ctx, query, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func scanPayloads(ctx context.Context, db *sql.DB, each func(id string, payload []byte) error, query string, args ...any) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return err
		}
		if err := each(id, payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

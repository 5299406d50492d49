package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sitepicker/internal/db"
	"github.com/sells-group/sitepicker/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return NewPostgresStore(pool), nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL,
	city       TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	lat        DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng        DOUBLE PRECISION NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT '',
	votes      INTEGER NOT NULL DEFAULT 0,
	proposed   BOOLEAN NOT NULL DEFAULT false,
	scores     JSONB,
	metrics    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS evaluations (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
	metro       JSONB NOT NULL,
	scores      JSONB NOT NULL,
	todos       JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_locations_state ON locations(upper(state));
CREATE INDEX IF NOT EXISTS idx_evaluations_location ON evaluations(location_id, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var locationUpsert = db.UpsertConfig{
	Table: "locations",
	Columns: []string{
		"id", "name", "address", "city", "state", "lat", "lng",
		"status", "votes", "proposed", "scores", "metrics", "created_at", "updated_at",
	},
	ConflictKeys: []string{"id"},
	UpdateCols: []string{
		"name", "address", "city", "state", "lat", "lng",
		"status", "votes", "proposed", "updated_at",
	},
}

func (s *PostgresStore) UpsertLocation(ctx context.Context, loc *model.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = now
	}

	scores, err := marshalNullable(loc.Scores)
	if err != nil {
		return err
	}
	metrics, err := marshalNullable(loc.Metrics)
	if err != nil {
		return err
	}

	query, err := db.UpsertSQL(locationUpsert)
	if err != nil {
		return err
	}
	// Snapshot columns only move forward; nil keeps what is stored.
	query += `, "scores" = COALESCE(EXCLUDED."scores", locations."scores"), "metrics" = COALESCE(EXCLUDED."metrics", locations."metrics")`

	_, err = s.pool.Exec(ctx, query,
		loc.ID, loc.Name, loc.Address, loc.City, loc.State, loc.Lat, loc.Lng,
		loc.Status, loc.Votes, loc.Proposed, scores, metrics, loc.CreatedAt, now,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert location %s", loc.ID)
	}
	return nil
}

const pgLocationColumns = `id, name, address, city, state, lat, lng, status, votes, proposed, scores, metrics, created_at`

func (s *PostgresStore) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgLocationColumns+` FROM locations WHERE id = $1`, id)
	loc, err := scanPgLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: location %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get location %s", id)
	}
	return loc, nil
}

func (s *PostgresStore) ListLocations(ctx context.Context, filter LocationFilter) ([]model.Location, error) {
	query := `SELECT ` + pgLocationColumns + ` FROM locations WHERE ($1 = '' OR upper(state) = upper($1))
		ORDER BY created_at, id LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, filter.State, listLimit(filter.Limit), max(filter.Offset, 0))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list locations")
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		loc, err := scanPgLocation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan location")
		}
		out = append(out, *loc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list locations iterate")
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, locationID string, scores *model.ScoreRow, metrics *model.UpstreamMetrics) error {
	scoresJSON, err := marshalNullable(scores)
	if err != nil {
		return err
	}
	metricsJSON, err := marshalNullable(metrics)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE locations SET scores = COALESCE($2, scores), metrics = COALESCE($3, metrics), updated_at = now() WHERE id = $1`,
		locationID, scoresJSON, metricsJSON,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save snapshot %s", locationID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: location %s", locationID)
	}
	return nil
}

func (s *PostgresStore) SaveEvaluation(ctx context.Context, ev *model.Evaluation) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	metro, scores, todos, err := marshalEvaluation(ev)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO evaluations (id, location_id, metro, scores, todos, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.LocationID, metro, scores, todos, ev.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert evaluation for %s", ev.LocationID)
	}
	return nil
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, locationID string, limit int) ([]model.Evaluation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, location_id, metro, scores, todos, created_at FROM evaluations
		WHERE location_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		locationID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list evaluations %s", locationID)
	}
	defer rows.Close()

	var out []model.Evaluation
	for rows.Next() {
		var ev model.Evaluation
		var metro, scores, todos []byte
		if err := rows.Scan(&ev.ID, &ev.LocationID, &metro, &scores, &todos, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan evaluation")
		}
		if err := unmarshalEvaluation(&ev, metro, scores, todos); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list evaluations iterate")
}

func scanPgLocation(row pgx.Row) (*model.Location, error) {
	var loc model.Location
	var scores, metrics []byte
	err := row.Scan(
		&loc.ID, &loc.Name, &loc.Address, &loc.City, &loc.State, &loc.Lat, &loc.Lng,
		&loc.Status, &loc.Votes, &loc.Proposed, &scores, &metrics, &loc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if loc.Scores, err = unmarshalNullable[model.ScoreRow](scores); err != nil {
		return nil, err
	}
	if loc.Metrics, err = unmarshalNullable[model.UpstreamMetrics](metrics); err != nil {
		return nil, err
	}
	return &loc, nil
}

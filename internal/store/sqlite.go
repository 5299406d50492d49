package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sitepicker/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL,
	city       TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	lat        REAL NOT NULL DEFAULT 0,
	lng        REAL NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT '',
	votes      INTEGER NOT NULL DEFAULT 0,
	proposed   INTEGER NOT NULL DEFAULT 0,
	scores     TEXT,
	metrics    TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS evaluations (
	id          TEXT PRIMARY KEY,
	location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
	metro       TEXT NOT NULL,
	scores      TEXT NOT NULL,
	todos       TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_locations_state ON locations(state);
CREATE INDEX IF NOT EXISTS idx_evaluations_location ON evaluations(location_id, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertLocation(ctx context.Context, loc *model.Location) error {
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO locations (id, name, address, city, state, lat, lng, status, votes, proposed, scores, metrics, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			city = excluded.city,
			state = excluded.state,
			lat = excluded.lat,
			lng = excluded.lng,
			status = excluded.status,
			votes = excluded.votes,
			proposed = excluded.proposed,
			scores = COALESCE(excluded.scores, locations.scores),
			metrics = COALESCE(excluded.metrics, locations.metrics),
			updated_at = excluded.updated_at`,
		loc.ID, loc.Name, loc.Address, loc.City, loc.State, loc.Lat, loc.Lng,
		loc.Status, loc.Votes, loc.Proposed, textOrNull(scores), textOrNull(metrics),
		loc.CreatedAt, now,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert location %s", loc.ID)
	}
	return nil
}

const sqliteLocationColumns = `id, name, address, city, state, lat, lng, status, votes, proposed, scores, metrics, created_at`

func (s *SQLiteStore) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteLocationColumns+` FROM locations WHERE id = ?`, id)
	loc, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: location %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get location %s", id)
	}
	return loc, nil
}

func (s *SQLiteStore) ListLocations(ctx context.Context, filter LocationFilter) ([]model.Location, error) {
	query := `SELECT ` + sqliteLocationColumns + ` FROM locations WHERE 1=1`
	var args []any

	if filter.State != "" {
		query += ` AND upper(state) = upper(?)`
		args = append(args, filter.State)
	}
	query += ` ORDER BY created_at, id LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list locations")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan location")
		}
		out = append(out, *loc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list locations iterate")
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, locationID string, scores *model.ScoreRow, metrics *model.UpstreamMetrics) error {
	scoresJSON, err := marshalNullable(scores)
	if err != nil {
		return err
	}
	metricsJSON, err := marshalNullable(metrics)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE locations SET scores = COALESCE(?, scores), metrics = COALESCE(?, metrics), updated_at = ? WHERE id = ?`,
		textOrNull(scoresJSON), textOrNull(metricsJSON), time.Now().UTC(), locationID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save snapshot %s", locationID)
	}
	return checkRowsAffected(res, locationID)
}

func (s *SQLiteStore) SaveEvaluation(ctx context.Context, ev *model.Evaluation) error {
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluations (id, location_id, metro, scores, todos, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.LocationID, string(metro), string(scores), string(todos), ev.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert evaluation for %s", ev.LocationID)
	}
	return nil
}

func (s *SQLiteStore) ListEvaluations(ctx context.Context, locationID string, limit int) ([]model.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, location_id, metro, scores, todos, created_at FROM evaluations
		WHERE location_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		locationID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list evaluations %s", locationID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Evaluation
	for rows.Next() {
		var ev model.Evaluation
		var metro, scores, todos string
		if err := rows.Scan(&ev.ID, &ev.LocationID, &metro, &scores, &todos, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan evaluation")
		}
		if err := unmarshalEvaluation(&ev, []byte(metro), []byte(scores), []byte(todos)); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list evaluations iterate")
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: location %s", id)
	}
	return nil
}

func textOrNull(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLocation(row scannable) (*model.Location, error) {
	var loc model.Location
	var scores, metrics sql.NullString
	err := row.Scan(
		&loc.ID, &loc.Name, &loc.Address, &loc.City, &loc.State, &loc.Lat, &loc.Lng,
		&loc.Status, &loc.Votes, &loc.Proposed, &scores, &metrics, &loc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if loc.Scores, err = unmarshalNullable[model.ScoreRow]([]byte(scores.String)); err != nil {
		return nil, err
	}
	if loc.Metrics, err = unmarshalNullable[model.UpstreamMetrics]([]byte(metrics.String)); err != nil {
		return nil, err
	}
	return &loc, nil
}

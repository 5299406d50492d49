// Package store persists locations, their upstream snapshots and the
// evaluation history.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sitepicker/internal/model"
)

// ErrNotFound is returned when a location does not exist.
var ErrNotFound = eris.New("store: not found")

// LocationFilter specifies criteria for listing locations.
type LocationFilter struct {
	State  string `json:"state,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for locations and evaluations.
type Store interface {
	// Locations
	UpsertLocation(ctx context.Context, loc *model.Location) error
	GetLocation(ctx context.Context, id string) (*model.Location, error)
	ListLocations(ctx context.Context, filter LocationFilter) ([]model.Location, error)

	// SaveSnapshot replaces the stored score row and metrics of a location.
	// A nil argument leaves the stored value unchanged.
	SaveSnapshot(ctx context.Context, locationID string, scores *model.ScoreRow, metrics *model.UpstreamMetrics) error

	// Evaluations
	SaveEvaluation(ctx context.Context, ev *model.Evaluation) error
	ListEvaluations(ctx context.Context, locationID string, limit int) ([]model.Evaluation, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

// marshalNullable encodes v as JSON, or returns nil for a nil pointer so the
// column keeps its current value.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal")
	}
	return b, nil
}

// unmarshalNullable decodes a JSON column that may be NULL.
func unmarshalNullable[T any](data []byte) (*T, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal")
	}
	return v, nil
}

func marshalEvaluation(ev *model.Evaluation) (metro, scores, todos []byte, err error) {
	if metro, err = json.Marshal(ev.Metro); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal metro")
	}
	if scores, err = json.Marshal(ev.Scores); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal scores")
	}
	list := ev.Todos
	if list == nil {
		list = []model.LocationTodo{}
	}
	if todos, err = json.Marshal(list); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal todos")
	}
	return metro, scores, todos, nil
}

func unmarshalEvaluation(ev *model.Evaluation, metro, scores, todos []byte) error {
	if err := json.Unmarshal(metro, &ev.Metro); err != nil {
		return eris.Wrap(err, "store: unmarshal metro")
	}
	if err := json.Unmarshal(scores, &ev.Scores); err != nil {
		return eris.Wrap(err, "store: unmarshal scores")
	}
	if err := json.Unmarshal(todos, &ev.Todos); err != nil {
		return eris.Wrap(err, "store: unmarshal todos")
	}
	return nil
}

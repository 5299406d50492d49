package evaluate

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sitepicker/internal/model"
	"github.com/sells-group/sitepicker/internal/store"
	"github.com/sells-group/sitepicker/internal/upstream"
)

// memStore is an in-memory store.Store for service tests.
type memStore struct {
	mu          sync.Mutex
	locations   map[string]*model.Location
	order       []string
	evaluations []model.Evaluation
	snapshots   int
	saveEvalErr error
}

func newMemStore(locs ...*model.Location) *memStore {
	s := &memStore{locations: make(map[string]*model.Location)}
	for _, l := range locs {
		s.locations[l.ID] = l
		s.order = append(s.order, l.ID)
	}
	return s
}

func (s *memStore) UpsertLocation(_ context.Context, loc *model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[loc.ID]; !ok {
		s.order = append(s.order, loc.ID)
	}
	cp := *loc
	s.locations[loc.ID] = &cp
	return nil
}

func (s *memStore) GetLocation(_ context.Context, id string) (*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[id]
	if !ok {
		return nil, eris.Wrapf(store.ErrNotFound, "mem: location %s", id)
	}
	cp := *loc
	return &cp, nil
}

func (s *memStore) ListLocations(_ context.Context, f store.LocationFilter) ([]model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Location
	for _, id := range s.order {
		loc := s.locations[id]
		if f.State != "" && loc.State != f.State {
			continue
		}
		out = append(out, *loc)
	}
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memStore) SaveSnapshot(_ context.Context, id string, scores *model.ScoreRow, metrics *model.UpstreamMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[id]
	if !ok {
		return eris.Wrapf(store.ErrNotFound, "mem: location %s", id)
	}
	if scores != nil {
		loc.Scores = scores
	}
	if metrics != nil {
		loc.Metrics = metrics
	}
	s.snapshots++
	return nil
}

func (s *memStore) SaveEvaluation(_ context.Context, ev *model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveEvalErr != nil {
		return s.saveEvalErr
	}
	s.evaluations = append(s.evaluations, *ev)
	return nil
}

func (s *memStore) ListEvaluations(_ context.Context, id string, _ int) ([]model.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Evaluation
	for _, ev := range s.evaluations {
		if ev.LocationID == id {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *memStore) Migrate(context.Context) error { return nil }
func (s *memStore) Close() error                  { return nil }

// fakeUpstream answers FetchSite from a map keyed by address.
type fakeUpstream struct {
	mu    sync.Mutex
	sites map[string]*upstream.Snapshot
	errs  map[string]error
	calls int
}

func (f *fakeUpstream) FetchSite(ctx context.Context, address string) (*upstream.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errs[address]; ok {
		return nil, err
	}
	return f.sites[address], nil
}

// Package evaluate runs the TODO engine against stored locations, refreshing
// upstream data on request and recording each evaluation.
package evaluate

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sitepicker/internal/metro"
	"github.com/sells-group/sitepicker/internal/model"
	"github.com/sells-group/sitepicker/internal/observability"
	"github.com/sells-group/sitepicker/internal/scorer"
	"github.com/sells-group/sitepicker/internal/store"
	"github.com/sells-group/sitepicker/internal/todo"
	"github.com/sells-group/sitepicker/internal/upstream"
)

// ErrNoUpstream is returned by Sync when no upstream client is configured.
var ErrNoUpstream = eris.New("evaluate: no upstream client configured")

// Result is the outcome of running the engine over one set of inputs.
type Result struct {
	Metro  model.MetroInfo      `json:"metro"`
	Scores model.LocationScores `json:"scores"`
	Todos  []model.LocationTodo `json:"todos"`
}

// SyncResult reports one location's upstream refresh.
type SyncResult struct {
	LocationID string            `json:"location_id"`
	Synced     bool              `json:"synced"`
	FetchError string            `json:"fetch_error,omitempty"`
	Evaluation *model.Evaluation `json:"evaluation,omitempty"`
}

// Option configures the Service.
type Option func(*Service)

// WithUpstream enables Sync and SyncAll.
func WithUpstream(c upstream.Client) Option {
	return func(s *Service) { s.upstream = c }
}

// WithMetrics records evaluations and syncs.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service evaluates stored locations.
type Service struct {
	store     store.Store
	directory *metro.Directory
	upstream  upstream.Client
	metrics   *observability.Metrics
}

// NewService creates a Service. A nil directory uses the built-in one.
func NewService(st store.Store, dir *metro.Directory, opts ...Option) *Service {
	if dir == nil {
		dir = metro.DefaultDirectory()
	}
	s := &Service{store: st, directory: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Directory returns the facility directory used for metro resolution.
func (s *Service) Directory() *metro.Directory {
	return s.directory
}

// Compute maps a raw score row, resolves the metro and generates TODOs. It
// touches no storage. The metrics' state and city fill in for empty
// arguments.
func (s *Service) Compute(row *model.ScoreRow, metrics *model.UpstreamMetrics, state, city string) Result {
	var m model.UpstreamMetrics
	if metrics != nil {
		m = *metrics
	}
	if strings.TrimSpace(state) == "" && m.State != nil {
		state = *m.State
	}
	if strings.TrimSpace(city) == "" && m.City != nil {
		city = *m.City
	}

	scores := scorer.MapScores(row)
	info := s.directory.Resolve(state, city)
	todos := todo.Generate(scores, m, info)
	s.metrics.Evaluation(todos)

	return Result{Metro: info, Scores: scores, Todos: todos}
}

// Assess evaluates a stored location without recording the result.
func (s *Service) Assess(ctx context.Context, locationID string) (*model.Evaluation, error) {
	loc, err := s.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return s.assess(loc), nil
}

func (s *Service) assess(loc *model.Location) *model.Evaluation {
	r := s.Compute(loc.Scores, loc.Metrics, loc.State, loc.City)
	return &model.Evaluation{
		LocationID: loc.ID,
		Metro:      r.Metro,
		Scores:     r.Scores,
		Todos:      r.Todos,
	}
}

// Evaluate assesses a stored location and records the evaluation.
func (s *Service) Evaluate(ctx context.Context, locationID string) (*model.Evaluation, error) {
	ev, err := s.Assess(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveEvaluation(ctx, ev); err != nil {
		return nil, err
	}

	zap.L().Info("evaluated location",
		zap.String("location_id", locationID),
		zap.Int("todos", len(ev.Todos)),
		zap.Strings("scenarios", scenarios(ev.Todos)),
	)
	return ev, nil
}

// Sync refreshes a location's scores and metrics from upstream, then
// evaluates it. A failed fetch is reported in the result and the location is
// evaluated against its stored snapshot.
func (s *Service) Sync(ctx context.Context, locationID string) (*SyncResult, error) {
	if s.upstream == nil {
		return nil, ErrNoUpstream
	}
	log := zap.L().With(zap.String("location_id", locationID))

	loc, err := s.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{LocationID: locationID}
	snap, err := s.upstream.FetchSite(ctx, loc.Address)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "evaluate: fetch upstream")
		}
		log.Warn("upstream fetch failed, using stored snapshot", zap.Error(err))
		res.FetchError = err.Error()
		s.metrics.Sync(observability.SyncFailed)
	case snap == nil:
		log.Info("site not known upstream")
		s.metrics.Sync(observability.SyncNotFound)
	default:
		if err := s.store.SaveSnapshot(ctx, locationID, snap.Scores, snap.Metrics); err != nil {
			return nil, err
		}
		if snap.Scores != nil {
			loc.Scores = snap.Scores
		}
		if snap.Metrics != nil {
			loc.Metrics = snap.Metrics
		}
		res.Synced = true
		s.metrics.Sync(observability.SyncUpdated)
	}

	ev := s.assess(loc)
	if err := s.store.SaveEvaluation(ctx, ev); err != nil {
		return nil, err
	}
	res.Evaluation = ev

	log.Info("synced location",
		zap.Bool("synced", res.Synced),
		zap.Strings("scenarios", scenarios(ev.Todos)),
	)
	return res, nil
}

// SyncSummary totals a SyncAll run.
type SyncSummary struct {
	Total   int          `json:"total"`
	Synced  int          `json:"synced"`
	Failed  int          `json:"failed"`
	Results []SyncResult `json:"results"`
}

// SyncAll syncs every location matching filter with at most concurrency
// requests in flight. A zero filter.Limit pages through all matches.
// Per-location failures are counted, not returned.
func (s *Service) SyncAll(ctx context.Context, filter store.LocationFilter, concurrency int) (*SyncSummary, error) {
	if s.upstream == nil {
		return nil, ErrNoUpstream
	}
	locs, err := s.listAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]SyncResult, len(locs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, loc := range locs {
		g.Go(func() error {
			res, err := s.Sync(gctx, loc.ID)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				zap.L().Error("sync failed", zap.String("location_id", loc.ID), zap.Error(err))
				results[i] = SyncResult{LocationID: loc.ID, FetchError: err.Error()}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "evaluate: sync all")
	}

	sum := &SyncSummary{Total: len(results), Results: results}
	for _, r := range results {
		switch {
		case r.Synced:
			sum.Synced++
		case r.FetchError != "":
			sum.Failed++
		}
	}
	return sum, nil
}

const syncPageSize = 500

func (s *Service) listAll(ctx context.Context, filter store.LocationFilter) ([]model.Location, error) {
	if filter.Limit > 0 {
		return s.store.ListLocations(ctx, filter)
	}

	var all []model.Location
	filter.Limit = syncPageSize
	for {
		page, err := s.store.ListLocations(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < syncPageSize {
			return all, nil
		}
		filter.Offset += len(page)
	}
}

func scenarios(todos []model.LocationTodo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.Scenario
	}
	return out
}

package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// RunOpts describes one playlist build.
type RunOpts struct {
	Queries     []string
	Title       string
	Description string
	Privacy     string
	Budget      models.Budget
	DryRun      bool // resolve and simulate packing without writing anything
}

// Resolution is the outcome of resolving one query.
type Resolution struct {
	Query string
	Pick  *models.Pick // nil on a miss or an error
	Err   error
}

// RunResult contains all data from a build.
type RunResult struct {
	Playlist    *models.Playlist // nil on dry runs
	Resolutions []Resolution
	Durations   models.DurationIndex
	Pack        *PackResult
	Budget      models.Budget
	DryRun      bool
}

// Picks returns the successful picks in query order.
func (r *RunResult) Picks() []models.Pick {
	var picks []models.Pick
	for _, res := range r.Resolutions {
		if res.Pick != nil {
			picks = append(picks, *res.Pick)
		}
	}
	return picks
}

// Misses returns the number of queries that produced no pick.
func (r *RunResult) Misses() int {
	n := 0
	for _, res := range r.Resolutions {
		if res.Pick == nil {
			n++
		}
	}
	return n
}

// EngineOpts configures an [Engine].
type EngineOpts struct {
	Search  models.SearchOptions
	Weights models.ScoreWeights
	Logger  *log.Logger
}

// Engine builds a playlist: create, resolve, look up durations, pack.
type Engine struct {
	service  services.Service
	resolver *Resolver
	packer   *Packer
	logger   *log.Logger
}

// NewEngine creates an Engine on top of a platform service.
func NewEngine(service services.Service, opts EngineOpts) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		service:  service,
		resolver: NewResolver(service, opts.Search, opts.Weights, logger),
		packer:   NewPacker(logger),
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs a full build.
//
// The playlist is created first, then every query is resolved in order. Per-query
// failures are recorded in the result and do not stop the run; playlist creation and
// the bulk duration lookup are fatal.
func (e *Engine) Run(ctx context.Context, opts RunOpts, progress chan<- ProgressUpdate) (*RunResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: platform service not initialized", shared.ErrServiceUnavailable)
	}
	if len(opts.Queries) == 0 {
		return nil, fmt.Errorf("%w: no song queries given", shared.ErrInvalidInput)
	}

	runLogger := shared.WithLogger(e.logger, "run", shared.GenerateID())
	result := &RunResult{Budget: opts.Budget, DryRun: opts.DryRun}

	if !opts.DryRun {
		e.sendProgress(progress, creatingPlaylistUpdate(opts.Title))
		pl, err := e.service.CreatePlaylist(ctx, opts.Title, opts.Description, opts.Privacy)
		if err != nil {
			return nil, fmt.Errorf("failed to create playlist: %w", err)
		}
		result.Playlist = pl
		runLogger.Info("playlist created", "id", pl.ID, "title", pl.Title)
		e.sendProgress(progress, playlistCreatedUpdate(pl))
	}

	total := len(opts.Queries)
	ids := make([]string, 0, total)
	for i, query := range opts.Queries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.sendProgress(progress, resolveQueryUpdate(i+1, total, query))
		pick, err := e.resolver.Resolve(ctx, query)
		res := Resolution{Query: query, Pick: pick, Err: err}
		result.Resolutions = append(result.Resolutions, res)

		qLogger := shared.WithLogger(runLogger, "query", query)
		switch {
		case err != nil:
			qLogger.Warn("search failed", "error", err)
		case pick == nil:
			qLogger.Info("no result")
		default:
			ids = append(ids, pick.VideoID)
			qLogger.Debug("resolved", "video", pick.VideoID, "variant", pick.Variant, "score", pick.Score)
		}
		e.sendProgress(progress, resolvedUpdate(i+1, total, res))
	}

	e.sendProgress(progress, fetchDurationsUpdate(len(ids)))
	durations, err := e.service.Durations(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("failed to fetch durations: %w", err)
	}
	result.Durations = durations

	e.sendProgress(progress, packPlaylistUpdate(len(ids), opts.Budget, opts.DryRun))
	appendFn := func(ctx context.Context, videoID string) error {
		return e.service.AppendVideo(ctx, result.Playlist.ID, videoID)
	}
	if opts.DryRun {
		appendFn = func(context.Context, string) error { return nil }
	}
	result.Pack = e.packer.Pack(ctx, ids, durations, opts.Budget, appendFn)

	runLogger.Info("build finished",
		"added", len(result.Pack.Appended()),
		"failed", result.Pack.Failed(),
		"misses", result.Misses(),
		"total", shared.FormatDuration(result.Pack.TotalSeconds),
		"stop", result.Pack.Stop)
	e.sendProgress(progress, doneUpdate(result))

	if result.Pack.Stop == StopCancelled {
		return result, ctx.Err()
	}
	return result, nil
}

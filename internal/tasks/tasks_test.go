package tasks

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	th "github.com/desertthunder/mixtape/internal/testing"
)

func newTestEngine(cat *th.FakeCatalog) *Engine {
	return NewEngine(cat, EngineOpts{Logger: shared.NewLogger(io.Discard)})
}

func defaultRunOpts(queries ...string) RunOpts {
	return RunOpts{
		Queries:     queries,
		Title:       "Mixtape",
		Description: "test",
		Privacy:     "private",
		Budget:      models.Budget{TargetMinutes: 120, MaxOverrunMinutes: 5},
	}
}

func drain(progress chan ProgressUpdate) []ProgressUpdate {
	close(progress)
	var updates []ProgressUpdate
	for u := range progress {
		updates = append(updates, u)
	}
	return updates
}

func TestEngineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("packs resolved videos up to budget", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("q1 official video", "v1", "Song 1", 40*60)
		cat.AddVideo("q2 official video", "v2", "Song 2", 50*60)
		cat.AddVideo("q3 official video", "v3", "Song 3", 40*60)
		progress := make(chan ProgressUpdate, 64)

		result, err := newTestEngine(cat).Run(ctx, defaultRunOpts("q1", "q2", "q3"), progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Playlist == nil || result.Playlist.ID != "PLfake" {
			t.Fatalf("expected created playlist, got %+v", result.Playlist)
		}
		if len(cat.Appended) != 2 || cat.Appended[0] != "v1" || cat.Appended[1] != "v2" {
			t.Errorf("expected v1 and v2 appended, got %v", cat.Appended)
		}
		if result.Pack.TotalSeconds != 90*60 {
			t.Errorf("expected 90 minutes, got %d seconds", result.Pack.TotalSeconds)
		}
		if result.Pack.Stop != StopBudget {
			t.Errorf("expected %s, got %s", StopBudget, result.Pack.Stop)
		}
		if items := result.Pack.Items; len(items) != 3 || items[2].VideoID != "v3" || items[2].Appended {
			t.Errorf("expected v3 recorded as examined but not appended, got %+v", items)
		}
		if len(result.Picks()) != 3 {
			t.Errorf("expected 3 picks, got %d", len(result.Picks()))
		}

		updates := drain(progress)
		if len(updates) == 0 {
			t.Fatal("expected progress updates")
		}
		if updates[0].Phase != CreatePlaylist {
			t.Errorf("expected first phase %s, got %s", CreatePlaylist, updates[0].Phase)
		}
		if last := updates[len(updates)-1]; last.Phase != Done {
			t.Errorf("expected last phase %s, got %s", Done, last.Phase)
		}
	})

	t.Run("skips queries without results", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("found official video", "v1", "Found", 200)

		result, err := newTestEngine(cat).Run(ctx, defaultRunOpts("missing", "found"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Misses() != 1 {
			t.Errorf("expected 1 miss, got %d", result.Misses())
		}
		if len(cat.Appended) != 1 || cat.Appended[0] != "v1" {
			t.Errorf("expected only v1 appended, got %v", cat.Appended)
		}
	})

	t.Run("search errors are recorded", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.SearchErrs["bad official video"] = shared.ErrAPIRequest
		cat.AddVideo("good official video", "v1", "Good", 200)

		result, err := newTestEngine(cat).Run(ctx, defaultRunOpts("bad", "good"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(result.Resolutions[0].Err, shared.ErrAPIRequest) {
			t.Errorf("expected recorded ErrAPIRequest, got %v", result.Resolutions[0].Err)
		}
		if len(cat.Appended) != 1 {
			t.Errorf("expected run to continue, got %v", cat.Appended)
		}
	})

	t.Run("append failures do not stop the run", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("a official video", "v1", "A", 200)
		cat.AddVideo("b official video", "v2", "B", 200)
		cat.AppendErrs["v1"] = errors.New("forbidden")

		result, err := newTestEngine(cat).Run(ctx, defaultRunOpts("a", "b"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Pack.Failed() != 1 || result.Pack.TotalSeconds != 200 {
			t.Errorf("unexpected pack result: %+v", result.Pack)
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("a official video", "v1", "A", 200)
		opts := defaultRunOpts("a")
		opts.DryRun = true

		result, err := newTestEngine(cat).Run(ctx, opts, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Playlist != nil || len(cat.Created) != 0 || len(cat.Appended) != 0 {
			t.Errorf("expected no writes on dry run, created %v appended %v", cat.Created, cat.Appended)
		}
		if got := result.Pack.Appended(); len(got) != 1 || got[0] != "v1" {
			t.Errorf("expected simulated append of v1, got %v", got)
		}
	})

	t.Run("playlist creation failure is fatal", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.CreateErr = shared.ErrNotAuthenticated

		_, err := newTestEngine(cat).Run(ctx, defaultRunOpts("a"), nil)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if len(cat.Searches) != 0 {
			t.Errorf("expected no searches, got %v", cat.Searches)
		}
	})

	t.Run("duration lookup failure is fatal", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.DurationsErr = shared.ErrQuotaExceeded

		result, err := newTestEngine(cat).Run(ctx, defaultRunOpts("a"), nil)
		if !errors.Is(err, shared.ErrQuotaExceeded) {
			t.Errorf("expected ErrQuotaExceeded, got %v", err)
		}
		if result == nil || result.Pack != nil {
			t.Errorf("expected partial result without packing, got %+v", result)
		}
	})

	t.Run("requires queries", func(t *testing.T) {
		_, err := newTestEngine(th.NewFakeCatalog()).Run(ctx, defaultRunOpts(), nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("requires service", func(t *testing.T) {
		engine := NewEngine(nil, EngineOpts{Logger: shared.NewLogger(io.Discard)})
		_, err := engine.Run(ctx, defaultRunOpts("a"), nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("full progress channel does not block", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("a official video", "v1", "A", 200)
		progress := make(chan ProgressUpdate)

		if _, err := newTestEngine(cat).Run(ctx, defaultRunOpts("a"), progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		CreatePlaylist: "create_playlist",
		ResolveQueries: "resolve_queries",
		FetchDurations: "fetch_durations",
		PackPlaylist:   "pack_playlist",
		Done:           "done",
		Phase(42):      "",
	}
	for phase, want := range tests {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(phase), got, want)
		}
	}
}

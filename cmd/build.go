package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Build resolves every song and packs the picks into a new playlist.
//
// Songs come from positional arguments, --query, and --songs-file, in that order. When none
// are given, playlist.songs from the config is used.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	queries, err := r.collectQueries(cmd)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("%w: pass songs as arguments, --query, --songs-file or playlist.songs", shared.ErrMissingArgument)
	}

	r.applyPlaylistFlags(cmd)

	svc, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	engine := tasks.NewEngine(svc, tasks.EngineOpts{
		Search:  r.config.SearchOptions(),
		Weights: r.config.Weights(),
		Logger:  shared.WithLogger(r.logger, "component", "engine"),
	})

	playlist := r.config.Playlist
	opts := tasks.RunOpts{
		Queries:     queries,
		Title:       playlist.Title,
		Description: playlist.Description,
		Privacy:     playlist.Privacy,
		Budget:      r.config.Budget(),
		DryRun:      cmd.Bool("dry-run"),
	}
	asJSON := cmd.Bool("json")

	r.logger.Info("starting build", "songs", len(queries), "target", opts.Budget.TargetMinutes,
		"overrun", opts.Budget.MaxOverrunMinutes, "dry_run", opts.DryRun)

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if asJSON || update.Phase == tasks.Done {
				continue
			}
			r.printProgress(update)
		}
	}()

	result, runErr := engine.Run(ctx, opts, progress)
	close(progress)
	<-done

	if result == nil || result.Pack == nil {
		return runErr
	}

	report := formatter.NewReport(result, opts.Title)

	if path := cmd.String("report"); path != "" {
		written, err := formatter.WriteReport(report, path, cmd.String("format"))
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", written)
	}

	if asJSON {
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	} else if err := r.printSummary(report, result); err != nil {
		return err
	}

	return runErr
}

// collectQueries gathers songs from arguments, flags, and the songs file.
func (r *Runner) collectQueries(cmd *cli.Command) ([]string, error) {
	var queries []string
	for _, q := range append(cmd.Args().Slice(), cmd.StringSlice("query")...) {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}

	if path := cmd.String("songs-file"); path != "" {
		fromFile, err := readSongsFile(path)
		if err != nil {
			return nil, err
		}
		queries = append(queries, fromFile...)
	}

	if len(queries) == 0 {
		for _, q := range r.config.Playlist.Songs {
			if q = strings.TrimSpace(q); q != "" {
				queries = append(queries, q)
			}
		}
	}
	return queries, nil
}

// applyPlaylistFlags overlays playlist flags onto the loaded config so Validate sees them.
func (r *Runner) applyPlaylistFlags(cmd *cli.Command) {
	p := &r.config.Playlist
	if cmd.IsSet("title") {
		p.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		p.Description = cmd.String("description")
	}
	if cmd.IsSet("privacy") {
		p.Privacy = strings.ToLower(cmd.String("privacy"))
	}
	if cmd.IsSet("target") {
		p.TargetMinutes = cmd.Int("target")
	}
	if cmd.IsSet("overrun") {
		p.MaxOverrunMinutes = cmd.Int("overrun")
	}
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.ResolveQueries:
		res, ok := update.Data.(tasks.Resolution)
		if !ok {
			return
		}
		switch {
		case res.Err != nil:
			r.writePlain("%s\n", r.palette.Warn(update.Message))
		case res.Pick == nil:
			r.writePlain("%s\n", r.palette.Help(update.Message))
		default:
			r.writePlain("%s\n", update.Message)
		}
	default:
		r.writePlain("%s\n", r.palette.Help(update.Message))
	}
}

func (r *Runner) printSummary(report *formatter.Report, result *tasks.RunResult) error {
	if report.DryRun {
		r.writePlainln("%s", r.palette.Warn("Dry run: no playlist was created"))
	} else {
		r.writePlainln("%s %s", r.palette.OK("✓"), report.PlaylistURL)
	}

	r.writePlain("Title: %s\n", report.Title)
	r.writePlain("Added: %d of %d songs\n", report.Added(), len(report.Rows))
	r.writePlain("Length: %s (target %d min, +%d overrun)\n",
		shared.FormatDuration(report.TotalSeconds), report.TargetMinutes, report.OverrunMinutes)
	r.writePlain("Stopped: %s\n", report.StopReason)

	if misses := result.Misses(); misses > 0 {
		r.writePlain("%s\n", r.palette.Warn(fmt.Sprintf("No result for %d songs:", misses)))
		for _, row := range report.Rows {
			if row.Status == formatter.StatusNoResult || row.Status == formatter.StatusSearchError {
				r.writePlain("  - %s\n", row.Query)
			}
		}
	}
	if failed := result.Pack.Failed(); failed > 0 {
		r.writePlain("%s\n", r.palette.Err(fmt.Sprintf("%d videos could not be added", failed)))
	}
	return nil
}

// readSongsFile returns the non-empty, non-comment lines of path.
func readSongsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open songs file: %w", err)
	}
	defer f.Close()

	var songs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		songs = append(songs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read songs file: %w", err)
	}
	return songs, nil
}

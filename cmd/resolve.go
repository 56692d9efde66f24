package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/urfave/cli/v3"
)

type rankedCandidate struct {
	Rank            int     `json:"rank"`
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	DurationSeconds int     `json:"duration_seconds"`
	SearchRank      int     `json:"search_rank"`
	Score           float64 `json:"score"`
}

type resolveOutput struct {
	Query      string            `json:"query"`
	Variant    string            `json:"variant,omitempty"`
	Candidates []rankedCandidate `json:"candidates"`
}

// Resolve prints the ranked candidates for one song. The first row is what build would pick.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: song query is required", shared.ErrMissingArgument)
	}

	svc, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	resolver := tasks.NewResolver(svc, r.config.SearchOptions(), r.config.Weights(),
		shared.WithLogger(r.logger, "component", "resolver"))
	variant, ranked, err := resolver.Rank(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", query, err)
	}

	out := resolveOutput{Query: query, Variant: variant, Candidates: make([]rankedCandidate, 0, len(ranked))}
	for i, c := range ranked {
		out.Candidates = append(out.Candidates, rankedCandidate{
			Rank:            i + 1,
			VideoID:         c.ID,
			Title:           c.Title,
			DurationSeconds: c.DurationSeconds,
			SearchRank:      c.SearchRank,
			Score:           c.Score,
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if len(out.Candidates) == 0 {
		return r.writePlain("%s\n", r.palette.Warn(fmt.Sprintf("No results for %q", query)))
	}

	r.writeHeader(fmt.Sprintf("%s (%s)", query, variant))
	rows := make([][]string, 0, len(out.Candidates))
	for _, c := range out.Candidates {
		rows = append(rows, []string{
			strconv.Itoa(c.Rank),
			c.VideoID,
			c.Title,
			shared.FormatDuration(c.DurationSeconds),
			strconv.Itoa(c.SearchRank + 1),
			strconv.FormatFloat(c.Score, 'f', 2, 64),
		})
	}
	return r.writePlain("%s\n", r.palette.Table([]string{"#", "Video", "Title", "Length", "Search", "Score"}, rows))
}

package tasks

import (
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// ProgressUpdate represents a progress event during a build.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	CreatePlaylist Phase = iota
	ResolveQueries
	FetchDurations
	PackPlaylist
	Done
)

func (p Phase) String() string {
	switch p {
	case CreatePlaylist:
		return "create_playlist"
	case ResolveQueries:
		return "resolve_queries"
	case FetchDurations:
		return "fetch_durations"
	case PackPlaylist:
		return "pack_playlist"
	case Done:
		return "done"
	default:
		return ""
	}
}

func creatingPlaylistUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", title),
	}
}

func playlistCreatedUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Title, pl.ID),
		Data:    pl,
	}
}

func resolveQueryUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveQueries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching: %s", step, total, query),
	}
}

func resolvedUpdate(step, total int, res Resolution) ProgressUpdate {
	var msg string
	switch {
	case res.Err != nil:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Query, res.Err)
	case res.Pick == nil:
		msg = fmt.Sprintf("[%d/%d] ✗ No result for: %s", step, total, res.Query)
	default:
		msg = fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, res.Pick.Title, shared.FormatDuration(res.Pick.DurationSeconds))
	}
	return ProgressUpdate{
		Phase:   ResolveQueries,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func fetchDurationsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDurations,
		Step:    0,
		Total:   count,
		Message: fmt.Sprintf("Fetching durations for %d videos...", count),
	}
}

func packPlaylistUpdate(count int, budget models.Budget, dryRun bool) ProgressUpdate {
	msg := fmt.Sprintf("Adding up to %d videos (target %d min, +%d overrun)...", count, budget.TargetMinutes, budget.MaxOverrunMinutes)
	if dryRun {
		msg = fmt.Sprintf("Simulating %d videos (target %d min, +%d overrun)...", count, budget.TargetMinutes, budget.MaxOverrunMinutes)
	}
	return ProgressUpdate{
		Phase:   PackPlaylist,
		Step:    0,
		Total:   count,
		Message: msg,
	}
}

func doneUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done. Total length ≈ %s (%s)", shared.FormatDuration(result.Pack.TotalSeconds), result.Pack.Stop),
		Data:    result,
	}
}

package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// AppendFunc commits one video to the destination playlist.
type AppendFunc func(ctx context.Context, videoID string) error

// StopReason says why packing ended.
type StopReason int

const (
	StopExhausted StopReason = iota // every id was examined
	StopGoalMet                     // accumulated minutes reached the target
	StopBudget                      // the next video would exceed target + overrun
	StopCancelled                   // the context was cancelled
)

func (s StopReason) String() string {
	switch s {
	case StopExhausted:
		return "exhausted"
	case StopGoalMet:
		return "goal_met"
	case StopBudget:
		return "budget_exceeded"
	case StopCancelled:
		return "cancelled"
	default:
		return ""
	}
}

// PackedItem records what happened to one examined id. The id that stops packing on
// budget is recorded with Appended false and no error.
type PackedItem struct {
	VideoID         string
	DurationSeconds int
	Appended        bool
	Err             error
}

// PackResult is the outcome of a packing pass.
type PackResult struct {
	TotalSeconds int
	Items        []PackedItem
	Stop         StopReason
}

// Appended returns the ids that were committed, in order.
func (p *PackResult) Appended() []string {
	var ids []string
	for _, item := range p.Items {
		if item.Appended {
			ids = append(ids, item.VideoID)
		}
	}
	return ids
}

// Failed returns the number of append failures.
func (p *PackResult) Failed() int {
	n := 0
	for _, item := range p.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// Packer greedily fills a playlist up to a duration budget.
type Packer struct {
	logger *log.Logger
}

// NewPacker creates a Packer.
func NewPacker(logger *log.Logger) *Packer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Packer{logger: logger}
}

// Pack walks ids in order and appends each one while the budget allows.
//
// Minutes are compared as real values. Packing stops, without appending, at the first
// video that would push the total past target + overrun, and stops after the append
// that brings the total to the target or beyond. Failed appends are recorded and
// skipped; they never count toward the total.
func (p *Packer) Pack(ctx context.Context, ids []string, durations models.DurationIndex, budget models.Budget, appendFn AppendFunc) *PackResult {
	result := &PackResult{Stop: StopExhausted}
	limit := budget.LimitMinutes()
	target := float64(budget.TargetMinutes)

	for _, id := range ids {
		if ctx.Err() != nil {
			result.Stop = StopCancelled
			return result
		}

		duration := durations.Get(id)
		if shared.Minutes(result.TotalSeconds+duration) > limit {
			p.logger.Info("budget exceeded, stopping",
				"video", id,
				"total", shared.FormatDuration(result.TotalSeconds),
				"next", shared.FormatDuration(duration))
			result.Items = append(result.Items, PackedItem{VideoID: id, DurationSeconds: duration})
			result.Stop = StopBudget
			return result
		}

		item := PackedItem{VideoID: id, DurationSeconds: duration}
		if err := appendFn(ctx, id); err != nil {
			p.logger.Warn("append failed", "video", id, "error", err)
			item.Err = err
			result.Items = append(result.Items, item)
			continue
		}

		item.Appended = true
		result.Items = append(result.Items, item)
		result.TotalSeconds += duration
		p.logger.Info("added video",
			"video", id,
			"duration", shared.FormatDuration(duration),
			"total", shared.FormatDuration(result.TotalSeconds))

		if shared.Minutes(result.TotalSeconds) >= target {
			result.Stop = StopGoalMet
			return result
		}
	}

	return result
}

// package formatter exports build reports to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
)

// Format names accepted by [Export] and [WriteReport].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Row statuses.
const (
	StatusAdded        = "added"
	StatusAppendFailed = "append_failed"
	StatusNotAdded     = "not_added"
	StatusNoResult     = "no_result"
	StatusSearchError  = "search_error"
)

// Row is one query's line in a report.
type Row struct {
	Position        int     `json:"position"`
	Query           string  `json:"query"`
	Status          string  `json:"status"`
	Variant         string  `json:"variant,omitempty"`
	VideoID         string  `json:"video_id,omitempty"`
	Title           string  `json:"title,omitempty"`
	DurationSeconds int     `json:"duration_seconds"`
	Score           float64 `json:"score"`
	Error           string  `json:"error,omitempty"`
}

// Report summarizes a build for export.
type Report struct {
	PlaylistID     string `json:"playlist_id,omitempty"`
	PlaylistURL    string `json:"playlist_url,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Privacy        string `json:"privacy,omitempty"`
	TargetMinutes  int    `json:"target_minutes"`
	OverrunMinutes int    `json:"max_overrun_minutes"`
	TotalSeconds   int    `json:"total_seconds"`
	StopReason     string `json:"stop_reason"`
	DryRun         bool   `json:"dry_run"`
	Rows           []Row  `json:"rows"`
}

// Added returns the number of rows committed to the playlist.
func (r *Report) Added() int {
	n := 0
	for _, row := range r.Rows {
		if row.Status == StatusAdded {
			n++
		}
	}
	return n
}

// NewReport flattens a run result into one row per query.
//
// Packed items line up with picks in query order, so the nth pick's outcome is the nth
// packed item; picks past the last item were never reached.
func NewReport(result *tasks.RunResult, title string) *Report {
	report := &Report{
		Title:          title,
		TargetMinutes:  result.Budget.TargetMinutes,
		OverrunMinutes: result.Budget.MaxOverrunMinutes,
		DryRun:         result.DryRun,
	}
	if result.Playlist != nil {
		report.PlaylistID = result.Playlist.ID
		report.PlaylistURL = result.Playlist.URL()
		report.Title = result.Playlist.Title
		report.Description = result.Playlist.Description
		report.Privacy = result.Playlist.Privacy
	}

	var items []tasks.PackedItem
	if result.Pack != nil {
		items = result.Pack.Items
		report.TotalSeconds = result.Pack.TotalSeconds
		report.StopReason = result.Pack.Stop.String()
	}

	pickIdx := 0
	for i, res := range result.Resolutions {
		row := Row{Position: i + 1, Query: res.Query}
		switch {
		case res.Err != nil:
			row.Status = StatusSearchError
			row.Error = res.Err.Error()
		case res.Pick == nil:
			row.Status = StatusNoResult
		default:
			row.Variant = res.Pick.Variant
			row.VideoID = res.Pick.VideoID
			row.Title = res.Pick.Title
			row.DurationSeconds = res.Pick.DurationSeconds
			row.Score = res.Pick.Score
			if d, ok := result.Durations[res.Pick.VideoID]; ok {
				row.DurationSeconds = d
			}

			row.Status = StatusNotAdded
			if pickIdx < len(items) {
				item := items[pickIdx]
				if item.Appended {
					row.Status = StatusAdded
				} else if item.Err != nil {
					row.Status = StatusAppendFailed
					row.Error = item.Err.Error()
				}
			}
			pickIdx++
		}
		report.Rows = append(report.Rows, row)
	}

	return report
}

// ExportToCSV renders the report rows with columns: Position, Query, Status, VideoID, Title, Duration, Score, Variant, Error
func ExportToCSV(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Query", "Status", "VideoID", "Title", "Duration", "Score", "Variant", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			strconv.Itoa(row.Position),
			row.Query,
			row.Status,
			row.VideoID,
			row.Title,
			strconv.Itoa(row.DurationSeconds),
			strconv.FormatFloat(row.Score, 'f', -1, 64),
			row.Variant,
			row.Error,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the report as a Markdown document with a video table.
func ExportToMarkdown(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", report.Title)
	if report.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", report.Description)
	}
	if report.PlaylistURL != "" {
		fmt.Fprintf(&buf, "**Playlist**: [%s](%s)\n", report.PlaylistID, report.PlaylistURL)
	}
	if report.DryRun {
		buf.WriteString("**Dry run**: nothing was written\n")
	}
	if report.Privacy != "" {
		fmt.Fprintf(&buf, "**Visibility**: %s\n", shared.VisibilityString(report.Privacy))
	}
	fmt.Fprintf(&buf, "**Length**: %s of %d min (+%d)\n", shared.FormatDuration(report.TotalSeconds), report.TargetMinutes, report.OverrunMinutes)
	fmt.Fprintf(&buf, "**Videos**: %d added from %d queries\n\n", report.Added(), len(report.Rows))

	buf.WriteString("## Videos\n\n")
	buf.WriteString("| # | Query | Video | Length | Status |\n")
	buf.WriteString("|---|-------|-------|--------|--------|\n")
	for _, row := range report.Rows {
		video := "-"
		if row.VideoID != "" {
			video = fmt.Sprintf("[%s](https://www.youtube.com/watch?v=%s)", escapeCell(row.Title), row.VideoID)
		}
		length := "-"
		if row.VideoID != "" {
			length = shared.FormatDuration(row.DurationSeconds)
		}
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n", row.Position, escapeCell(row.Query), video, length, row.Status)
	}

	return buf.Bytes(), nil
}

// ExportToText renders the report as plain text.
func ExportToText(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", report.Title)
	if report.PlaylistURL != "" {
		fmt.Fprintf(&buf, "URL: %s\n", report.PlaylistURL)
	}
	fmt.Fprintf(&buf, "Length: %s (target %d min, +%d)\n", shared.FormatDuration(report.TotalSeconds), report.TargetMinutes, report.OverrunMinutes)
	fmt.Fprintf(&buf, "Stopped: %s\n\n", report.StopReason)

	for _, row := range report.Rows {
		if row.VideoID == "" {
			fmt.Fprintf(&buf, "%d. [%s] %s\n", row.Position, row.Status, row.Query)
			continue
		}
		fmt.Fprintf(&buf, "%d. [%s] %s -> %s (%s)\n", row.Position, row.Status, row.Query, row.Title, shared.FormatDuration(row.DurationSeconds))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the report as indented JSON.
func ExportToJSON(report *Report) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// Export renders report in the named format.
func Export(report *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(report)
	case FormatMarkdown, "markdown":
		return ExportToMarkdown(report)
	case FormatText, "text":
		return ExportToText(report)
	case FormatJSON:
		return ExportToJSON(report)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport writes report to path in the named format.
//
// An empty format is inferred from the file extension and defaults to text.
func WriteReport(report *Report, path, format string) (string, error) {
	if format == "" {
		format = FormatFromPath(path)
	}

	data, err := Export(report, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// FormatFromPath guesses a report format from a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

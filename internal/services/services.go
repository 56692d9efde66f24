// package services defines the platform capabilities playlist assembly depends on
//
// YouTube Data API v3
package services

import (
	"context"

	"github.com/desertthunder/mixtape/internal/models"
)

// MaxIDsPerLookup is the largest number of video ids accepted by one metadata call.
const MaxIDsPerLookup = 50

// SearchRequest is one search call: the query text plus ordering, cap and locale hints.
type SearchRequest struct {
	Query string
	models.SearchOptions
}

// SearchHit is a single search result in relevance order.
type SearchHit struct {
	VideoID string
	Title   string
}

// Searcher runs free-text catalog searches.
type Searcher interface {
	// Search returns hits in the requested ordering, at most MaxResults of them.
	Search(ctx context.Context, req SearchRequest) ([]SearchHit, error)
}

// DurationLookup fetches runtimes for videos in bulk.
type DurationLookup interface {
	// Durations returns the runtime of every known id; unknown ids are absent from the index.
	Durations(ctx context.Context, ids []string) (models.DurationIndex, error)
}

// PlaylistWriter creates playlists and appends videos to them.
type PlaylistWriter interface {
	// CreatePlaylist creates a new playlist and returns it with its platform id.
	CreatePlaylist(ctx context.Context, title, description, privacy string) (*models.Playlist, error)

	// AppendVideo adds videoID as the last item of the playlist.
	AppendVideo(ctx context.Context, playlistID, videoID string) error
}

// Service is the full set of platform capabilities used by a run.
type Service interface {
	Searcher
	DurationLookup
	PlaylistWriter

	// Name returns the name of the platform (e.g., "YouTube")
	Name() string
}

// Chunk splits ids into consecutive slices of at most size elements.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxIDsPerLookup
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

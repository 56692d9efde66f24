package testing

import (
	"context"
	"sync"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
)

// FakeCatalog is an in-memory [services.Service].
//
// Search hits are keyed by the exact search string, so tests control which query
// variants return results.
type FakeCatalog struct {
	Hits         map[string][]services.SearchHit
	Lengths      models.DurationIndex
	SearchErrs   map[string]error
	DurationsErr error
	CreateErr    error
	AppendErrs   map[string]error
	PlaylistID   string

	mu            sync.Mutex
	Searches      []string
	DurationCalls [][]string
	Created       []models.Playlist
	Appended      []string
}

// NewFakeCatalog creates a FakeCatalog with empty indexes.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		Hits:       map[string][]services.SearchHit{},
		Lengths:    models.DurationIndex{},
		SearchErrs: map[string]error{},
		AppendErrs: map[string]error{},
		PlaylistID: "PLfake",
	}
}

// AddVideo registers a hit for query and the video's duration.
func (f *FakeCatalog) AddVideo(query, id, title string, seconds int) *FakeCatalog {
	f.Hits[query] = append(f.Hits[query], services.SearchHit{VideoID: id, Title: title})
	f.Lengths[id] = seconds
	return f
}

func (f *FakeCatalog) Name() string { return "fake" }

func (f *FakeCatalog) Search(ctx context.Context, req services.SearchRequest) ([]services.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Searches = append(f.Searches, req.Query)
	if err := f.SearchErrs[req.Query]; err != nil {
		return nil, err
	}
	hits := f.Hits[req.Query]
	if req.MaxResults > 0 && len(hits) > req.MaxResults {
		hits = hits[:req.MaxResults]
	}
	return hits, nil
}

func (f *FakeCatalog) Durations(ctx context.Context, ids []string) (models.DurationIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DurationCalls = append(f.DurationCalls, append([]string(nil), ids...))
	if f.DurationsErr != nil {
		return nil, f.DurationsErr
	}
	index := models.DurationIndex{}
	for _, id := range ids {
		if d, ok := f.Lengths[id]; ok {
			index[id] = d
		}
	}
	return index, nil
}

func (f *FakeCatalog) CreatePlaylist(ctx context.Context, title, description, privacy string) (*models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	pl := models.Playlist{ID: f.PlaylistID, Title: title, Description: description, Privacy: privacy}
	f.Created = append(f.Created, pl)
	return &pl, nil
}

func (f *FakeCatalog) AppendVideo(ctx context.Context, playlistID, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.AppendErrs[videoID]; err != nil {
		return err
	}
	f.Appended = append(f.Appended, videoID)
	return nil
}

var _ services.Service = (*FakeCatalog)(nil)

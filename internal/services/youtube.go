// YouTube Data API v3 [Service] implementation
//
// Search costs 100 quota units per call, videos.list costs 1, inserts cost 50 each.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeScope grants read/write access to the user's YouTube account.
const YouTubeScope = youtube.YoutubeScope

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	HTTPClient        *http.Client // authenticated client; required
	BaseURL           string       // overrides the API endpoint, used in tests
	RequestsPerSecond float64      // 0 disables pacing
}

// YouTubeService implements the Service interface for the YouTube Data API.
type YouTubeService struct {
	svc *youtube.Service
}

// NewYouTubeService creates a YouTube Data API client on top of an authenticated HTTP client.
func NewYouTubeService(ctx context.Context, opts YouTubeOpts) (*YouTubeService, error) {
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("%w: youtube service requires an authenticated http client", shared.ErrNotAuthenticated)
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(WithRateLimit(opts.HTTPClient, opts.RequestsPerSecond))}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(strings.TrimRight(opts.BaseURL, "/")+"/"))
	}

	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	return &YouTubeService{svc: svc}, nil
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Search lists videos matching req.Query.
//
// Calls search.list with type=video and safeSearch=none, without a publish date filter.
func (y *YouTubeService) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	order := req.Order
	if order == "" {
		order = models.OrderRelevance
	}

	call := y.svc.Search.List([]string{"id", "snippet"}).
		Q(req.Query).
		Type("video").
		Order(order).
		SafeSearch("none")

	if req.MaxResults > 0 {
		call = call.MaxResults(int64(req.MaxResults))
	}
	if req.RegionCode != "" {
		call = call.RegionCode(req.RegionCode)
	}
	if req.RelevanceLanguage != "" {
		call = call.RelevanceLanguage(req.RelevanceLanguage)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("search", err)
	}

	hits := make([]SearchHit, 0, len(resp.Items))
	for _, item := range resp.Items {
		hit := SearchHit{}
		if item.Id != nil {
			hit.VideoID = item.Id.VideoId
		}
		if item.Snippet != nil {
			hit.Title = item.Snippet.Title
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// Durations looks up runtimes with videos.list, [MaxIDsPerLookup] ids per call.
func (y *YouTubeService) Durations(ctx context.Context, ids []string) (models.DurationIndex, error) {
	index := make(models.DurationIndex, len(ids))

	for _, chunk := range Chunk(ids, MaxIDsPerLookup) {
		resp, err := y.svc.Videos.List([]string{"contentDetails"}).
			Id(chunk...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, wrapAPIError("videos", err)
		}

		for _, v := range resp.Items {
			duration := ""
			if v.ContentDetails != nil {
				duration = v.ContentDetails.Duration
			}
			index[v.Id] = shared.ParseISODuration(duration)
		}
	}

	return index, nil
}

// CreatePlaylist creates a playlist with playlists.insert.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, title, description, privacy string) (*models.Playlist, error) {
	if privacy == "" {
		privacy = "private"
	}

	created, err := y.svc.Playlists.Insert([]string{"snippet", "status"}, &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{Title: title, Description: description},
		Status:  &youtube.PlaylistStatus{PrivacyStatus: privacy},
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("playlists", err)
	}

	return &models.Playlist{
		ID:          created.Id,
		Title:       title,
		Description: description,
		Privacy:     privacy,
	}, nil
}

// AppendVideo adds a video to the end of a playlist with playlistItems.insert.
func (y *YouTubeService) AppendVideo(ctx context.Context, playlistID, videoID string) error {
	_, err := y.svc.PlaylistItems.Insert([]string{"snippet"}, &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{Kind: "youtube#video", VideoId: videoID},
		},
	}).Context(ctx).Do()
	if err != nil {
		return wrapAPIError("playlistItems", err)
	}
	return nil
}

// wrapAPIError maps a googleapi error onto the shared sentinels.
func wrapAPIError(resource string, err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, resource, err)
	}

	switch apiErr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: %s", shared.ErrNotAuthenticated, resource, apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s: %s", shared.ErrNotFound, resource, apiErr.Message)
	case http.StatusForbidden:
		for _, item := range apiErr.Errors {
			if item.Reason == "quotaExceeded" || item.Reason == "dailyLimitExceeded" {
				return fmt.Errorf("%w: %s: %s", shared.ErrQuotaExceeded, resource, apiErr.Message)
			}
		}
	}

	return fmt.Errorf("%w: %s (status %d): %s", shared.ErrAPIRequest, resource, apiErr.Code, apiErr.Message)
}

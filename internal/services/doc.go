// Package services defines the platform capabilities used to assemble a playlist and implements them for YouTube.
//
// # Interfaces
//
// The core algorithms depend only on narrow interfaces so they can be exercised with fakes:
//   - [Searcher] : free-text search in relevance order
//   - [DurationLookup] : bulk runtime lookup, at most [MaxIDsPerLookup] ids per call
//   - [PlaylistWriter] : playlist creation and append
//
// [Service] bundles all three.
//
// # YouTube Implementation
//
// [YouTubeService] wraps the generated google.golang.org/api/youtube/v3 client.
// It expects an [http.Client] that already carries OAuth2 credentials (see the auth package).
// Requests are paced by a [rate.Limiter] installed on the client's transport; nothing is retried.
//
// # Error Handling
//
// API failures are mapped onto sentinels from the shared package:
//   - [shared.ErrNotAuthenticated] : 401, token missing or revoked
//   - [shared.ErrQuotaExceeded] : 403 with a quota reason
//   - [shared.ErrNotFound] : 404, e.g. unknown playlist or video
//   - [shared.ErrAPIRequest] : anything else
package services

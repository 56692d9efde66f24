package tasks

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Catalog is what the [Resolver] needs from the platform.
type Catalog interface {
	services.Searcher
	services.DurationLookup
}

// Resolver maps a free-text song query to a single video.
type Resolver struct {
	catalog Catalog
	search  models.SearchOptions
	weights models.ScoreWeights
	logger  *log.Logger
}

// NewResolver creates a Resolver. Zero-valued options fall back to the defaults.
func NewResolver(catalog Catalog, search models.SearchOptions, weights models.ScoreWeights, logger *log.Logger) *Resolver {
	if search == (models.SearchOptions{}) {
		search = models.DefaultSearchOptions()
	}
	if weights == (models.ScoreWeights{}) {
		weights = models.DefaultScoreWeights()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{catalog: catalog, search: search, weights: weights, logger: logger}
}

// Variants returns the search strings tried for query, in order.
func Variants(query string) []string {
	return []string{
		query + " official video",
		`"` + query + `"`,
		query + " audio",
	}
}

// Score rates a candidate: a large bonus inside the typical song window, a small
// penalty for distance from the center length, and a penalty per relevance rank.
func Score(c models.Candidate, w models.ScoreWeights) float64 {
	score := 0.0
	if c.DurationSeconds >= w.TypicalMinSeconds && c.DurationSeconds <= w.TypicalMaxSeconds {
		score += w.TypicalBonus
	}
	score -= math.Abs(float64(w.CenterSeconds-c.DurationSeconds)) / w.ProximityDivisor
	score -= float64(c.SearchRank) * w.RankPenalty
	return score
}

// Rank scores candidates and orders them best first. Equal scores keep their input order.
func Rank(candidates []models.Candidate, w models.ScoreWeights) []models.ScoredCandidate {
	ranked := make([]models.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		ranked[i] = models.ScoredCandidate{Candidate: c, Score: Score(c, w)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// Rank runs the query variants in order and returns the ranking of the first variant
// that produced any candidate. An empty ranking with a nil error means no variant matched.
func (r *Resolver) Rank(ctx context.Context, query string) (string, []models.ScoredCandidate, error) {
	for _, variant := range Variants(query) {
		candidates, err := r.candidates(ctx, variant)
		if err != nil {
			return variant, nil, err
		}
		if len(candidates) == 0 {
			r.logger.Debug("no hits for variant", "variant", variant)
			continue
		}
		return variant, Rank(candidates, r.weights), nil
	}
	return "", nil, nil
}

// Resolve picks the best video for query. A nil [models.Pick] with a nil error is a miss, not a failure.
func (r *Resolver) Resolve(ctx context.Context, query string) (*models.Pick, error) {
	variant, ranked, err := r.Rank(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("resolve %q (variant %q): %w", query, variant, err)
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	best := ranked[0]
	return &models.Pick{
		Query:           query,
		Variant:         variant,
		VideoID:         best.ID,
		Title:           best.Title,
		DurationSeconds: best.DurationSeconds,
		Score:           best.Score,
	}, nil
}

// candidates searches one variant and attaches durations from a single bulk lookup.
func (r *Resolver) candidates(ctx context.Context, variant string) ([]models.Candidate, error) {
	hits, err := r.catalog.Search(ctx, services.SearchRequest{Query: variant, SearchOptions: r.search})
	if err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(hits))
	ids := make([]string, 0, len(hits))
	for rank, hit := range hits {
		if hit.VideoID == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{ID: hit.VideoID, Title: hit.Title, SearchRank: rank})
		ids = append(ids, hit.VideoID)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	durations, err := r.catalog.Durations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].DurationSeconds = durations.Get(candidates[i].ID)
	}

	return candidates, nil
}

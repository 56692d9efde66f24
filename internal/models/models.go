// package models defines the data model for playlist assembly
package models

import "fmt"

// OrderRelevance is the platform's default relevance ordering.
const OrderRelevance = "relevance"

// Candidate is a search result for one query variant before scoring.
type Candidate struct {
	ID              string
	Title           string
	DurationSeconds int
	SearchRank      int // 0-based position in the relevance ordering
}

// ScoredCandidate pairs a [Candidate] with its score.
type ScoredCandidate struct {
	Candidate
	Score float64
}

// Pick is the video chosen for a query.
type Pick struct {
	Query           string  `json:"query"`
	Variant         string  `json:"variant"`
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	DurationSeconds int     `json:"duration_seconds"`
	Score           float64 `json:"score"`
}

// DurationIndex maps a video id to its runtime in seconds.
type DurationIndex map[string]int

// Get returns the duration for id, or 0 when the id is unknown.
func (d DurationIndex) Get(id string) int {
	return d[id]
}

// Playlist is a destination playlist created for a run.
type Playlist struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

// URL returns the public watch URL of the playlist.
func (p Playlist) URL() string {
	return fmt.Sprintf("https://www.youtube.com/playlist?list=%s", p.ID)
}

// Budget bounds the accumulated playlist runtime.
type Budget struct {
	TargetMinutes     int `json:"target_minutes"`
	MaxOverrunMinutes int `json:"max_overrun_minutes"`
}

// LimitMinutes is the hard ceiling on accumulated minutes.
func (b Budget) LimitMinutes() float64 {
	return float64(b.TargetMinutes + b.MaxOverrunMinutes)
}

// ScoreWeights are the heuristic constants of candidate scoring.
type ScoreWeights struct {
	TypicalMinSeconds int
	TypicalMaxSeconds int
	TypicalBonus      float64
	CenterSeconds     int
	ProximityDivisor  float64
	RankPenalty       float64
}

// DefaultScoreWeights favours 2-8 minute videos close to 4 minutes.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		TypicalMinSeconds: 120,
		TypicalMaxSeconds: 480,
		TypicalBonus:      1000,
		CenterSeconds:     240,
		ProximityDivisor:  10,
		RankPenalty:       1,
	}
}

// SearchOptions are the hints sent with every search request.
type SearchOptions struct {
	MaxResults        int
	Order             string
	RegionCode        string
	RelevanceLanguage string
}

// DefaultSearchOptions returns the search settings used when none are configured.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{MaxResults: 8, Order: OrderRelevance, RegionCode: "CA", RelevanceLanguage: "en"}
}

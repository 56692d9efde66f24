package tasks

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	th "github.com/desertthunder/mixtape/internal/testing"
)

func newTestResolver(catalog Catalog) *Resolver {
	return NewResolver(catalog, models.SearchOptions{}, models.ScoreWeights{}, shared.NewLogger(io.Discard))
}

func TestVariants(t *testing.T) {
	got := Variants("Blur - Girls & Boys")
	want := []string{
		"Blur - Girls & Boys official video",
		`"Blur - Girls & Boys"`,
		"Blur - Girls & Boys audio",
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d variants, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("variant %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestScore(t *testing.T) {
	w := models.DefaultScoreWeights()
	tests := []struct {
		name string
		c    models.Candidate
		want float64
	}{
		{"centered first result", models.Candidate{DurationSeconds: 240, SearchRank: 0}, 1000},
		{"lower bound inclusive", models.Candidate{DurationSeconds: 120, SearchRank: 0}, 988},
		{"upper bound inclusive", models.Candidate{DurationSeconds: 480, SearchRank: 0}, 976},
		{"just below window", models.Candidate{DurationSeconds: 119, SearchRank: 0}, -12.1},
		{"rank penalty", models.Candidate{DurationSeconds: 300, SearchRank: 1}, 993},
		{"long video", models.Candidate{DurationSeconds: 500, SearchRank: 2}, -28},
		{"unknown duration", models.Candidate{DurationSeconds: 0, SearchRank: 3}, -27},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.c, w)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRank(t *testing.T) {
	w := models.DefaultScoreWeights()

	t.Run("orders by score", func(t *testing.T) {
		ranked := Rank([]models.Candidate{
			{ID: "A", DurationSeconds: 350, SearchRank: 0},
			{ID: "B", DurationSeconds: 300, SearchRank: 1},
			{ID: "C", DurationSeconds: 500, SearchRank: 2},
		}, w)

		wantIDs := []string{"B", "A", "C"}
		wantScores := []float64{993, 989, -28}
		for i := range wantIDs {
			if ranked[i].ID != wantIDs[i] {
				t.Errorf("position %d: expected %s, got %s", i, wantIDs[i], ranked[i].ID)
			}
			if ranked[i].Score != wantScores[i] {
				t.Errorf("position %d: expected score %v, got %v", i, wantScores[i], ranked[i].Score)
			}
		}
	})

	t.Run("ties keep first seen", func(t *testing.T) {
		flat := models.ScoreWeights{TypicalMinSeconds: 0, TypicalMaxSeconds: 1000, TypicalBonus: 1, ProximityDivisor: 1}
		ranked := Rank([]models.Candidate{
			{ID: "first", DurationSeconds: 10},
			{ID: "second", DurationSeconds: 10},
		}, flat)
		if ranked[0].ID != "first" {
			t.Errorf("expected first-seen candidate to win a tie, got %s", ranked[0].ID)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if ranked := Rank(nil, w); len(ranked) != 0 {
			t.Errorf("expected no candidates, got %d", len(ranked))
		}
	})
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("picks highest score", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("X official video", "A", "Too long", 350)
		cat.AddVideo("X official video", "B", "Just right", 300)
		cat.AddVideo("X official video", "C", "Extended mix", 500)

		pick, err := newTestResolver(cat).Resolve(ctx, "X")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pick == nil || pick.VideoID != "B" {
			t.Fatalf("expected pick B, got %+v", pick)
		}
		if pick.Score != 993 || pick.DurationSeconds != 300 {
			t.Errorf("unexpected pick details: %+v", pick)
		}
		if pick.Variant != "X official video" || pick.Query != "X" {
			t.Errorf("unexpected variant/query: %q %q", pick.Variant, pick.Query)
		}
		if len(cat.DurationCalls) != 1 || len(cat.DurationCalls[0]) != 3 {
			t.Errorf("expected one bulk duration call with 3 ids, got %v", cat.DurationCalls)
		}
	})

	t.Run("falls back to next variant", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo(`"Y"`, "V", "Y (Remastered)", 200)

		pick, err := newTestResolver(cat).Resolve(ctx, "Y")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pick == nil || pick.VideoID != "V" {
			t.Fatalf("expected pick V, got %+v", pick)
		}
		if pick.Variant != `"Y"` {
			t.Errorf("expected quoted variant, got %q", pick.Variant)
		}
		if len(cat.Searches) != 2 {
			t.Errorf("expected 2 searches, got %v", cat.Searches)
		}
	})

	t.Run("never mixes variants", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("Z official video", "bad", "Live at Wembley", 1800)
		cat.AddVideo("Z audio", "good", "Z", 240)

		pick, err := newTestResolver(cat).Resolve(ctx, "Z")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pick == nil || pick.VideoID != "bad" {
			t.Fatalf("expected the only first-variant candidate, got %+v", pick)
		}
		if len(cat.Searches) != 1 {
			t.Errorf("expected a single search, got %v", cat.Searches)
		}
	})

	t.Run("no results", func(t *testing.T) {
		cat := th.NewFakeCatalog()

		pick, err := newTestResolver(cat).Resolve(ctx, "nothing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pick != nil {
			t.Errorf("expected no pick, got %+v", pick)
		}
		if len(cat.Searches) != 3 {
			t.Errorf("expected all 3 variants searched, got %v", cat.Searches)
		}
		if len(cat.DurationCalls) != 0 {
			t.Errorf("expected no duration lookups, got %v", cat.DurationCalls)
		}
	})

	t.Run("drops hits without id", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.Hits["W official video"] = []services.SearchHit{{VideoID: "", Title: "channel"}}
		cat.AddVideo(`"W"`, "w1", "W", 210)

		pick, err := newTestResolver(cat).Resolve(ctx, "W")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pick == nil || pick.VideoID != "w1" {
			t.Fatalf("expected fallback pick w1, got %+v", pick)
		}
	})

	t.Run("missing duration counts as zero", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.Hits["M official video"] = []services.SearchHit{{VideoID: "unknown", Title: "M"}}

		pick, err := newTestResolver(cat).Resolve(ctx, "M")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pick == nil || pick.DurationSeconds != 0 || pick.Score != -24 {
			t.Errorf("expected zero-length pick scored -24, got %+v", pick)
		}
	})

	t.Run("search error propagates", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.SearchErrs["E official video"] = shared.ErrQuotaExceeded

		_, err := newTestResolver(cat).Resolve(ctx, "E")
		if !errors.Is(err, shared.ErrQuotaExceeded) {
			t.Errorf("expected ErrQuotaExceeded, got %v", err)
		}
	})

	t.Run("duration error propagates", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("D official video", "d1", "D", 200)
		cat.DurationsErr = shared.ErrAPIRequest

		_, err := newTestResolver(cat).Resolve(ctx, "D")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("rank exposes ordering", func(t *testing.T) {
		cat := th.NewFakeCatalog()
		cat.AddVideo("R official video", "r1", "R live", 900)
		cat.AddVideo("R official video", "r2", "R", 230)

		variant, ranked, err := newTestResolver(cat).Rank(ctx, "R")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if variant != "R official video" {
			t.Errorf("unexpected variant %q", variant)
		}
		if len(ranked) != 2 || ranked[0].ID != "r2" || ranked[1].ID != "r1" {
			t.Errorf("unexpected ranking: %+v", ranked)
		}
	})
}

package models

import (
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name string
		ms   int
		want string
	}{
		{name: "typical track", ms: 201000, want: "3:21"},
		{name: "sub-minute", ms: 45000, want: "0:45"},
		{name: "zero-padded seconds", ms: 185000, want: "3:05"},
		{name: "exact minute", ms: 240000, want: "4:00"},
		{name: "over an hour", ms: 3723000, want: "62:03"},
		{name: "zero", ms: 0, want: "0:00"},
		{name: "sub-second remainder dropped", ms: 1999, want: "0:01"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDuration(tt.ms)
			if got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.ms, got, tt.want)
			}
		})
	}
}

func TestRecommendationQueryValues(t *testing.T) {
	t.Run("Defaults Applied", func(t *testing.T) {
		values := RecommendationQuery{SeedArtist: "a1", SeedGenre: "rock"}.Values()

		if values.Get("seed_artists") != "a1" || values.Get("seed_genres") != "rock" {
			t.Errorf("unexpected seeds: %v", values)
		}
		if values.Get("limit") != "15" {
			t.Errorf("expected default limit 15, got %s", values.Get("limit"))
		}
		if values.Get("market") != "US" {
			t.Errorf("expected default market US, got %s", values.Get("market"))
		}
	})

	t.Run("Nil Bounds Omitted", func(t *testing.T) {
		values := RecommendationQuery{SeedArtist: "a1", SeedGenre: "rock"}.Values()

		if values.Has("min_popularity") || values.Has("max_popularity") {
			t.Errorf("nil bounds should be omitted, got %v", values)
		}
	})

	t.Run("Bounds Included When Set", func(t *testing.T) {
		min, max := 0, 100
		values := RecommendationQuery{
			SeedArtist:    "a1",
			SeedGenre:     "rock",
			MinPopularity: &min,
			MaxPopularity: &max,
		}.Values()

		// A zero bound is a real value, not an absent one.
		if values.Get("min_popularity") != "0" {
			t.Errorf("expected min_popularity 0, got %s", values.Get("min_popularity"))
		}
		if values.Get("max_popularity") != "100" {
			t.Errorf("expected max_popularity 100, got %s", values.Get("max_popularity"))
		}
	})

	t.Run("Explicit Limit And Market", func(t *testing.T) {
		values := RecommendationQuery{
			SeedArtist: "a1",
			SeedGenre:  "rock",
			Limit:      5,
			Market:     "GB",
		}.Values()

		if values.Get("limit") != "5" || values.Get("market") != "GB" {
			t.Errorf("expected explicit limit and market, got %v", values)
		}
	})
}

// package models defines the view models and query values for the Spotify relay.
//
// View models are read-only projections of upstream API responses shaped for display.
// They carry no identity beyond the request that produced them and are never persisted.
package models

import (
	"fmt"
	"net/url"
	"strconv"
)

// ArtistSummary is the display projection of an artist from the top-artists listing.
type ArtistSummary struct {
	Name       string   `json:"name"`
	Picture    string   `json:"picture,omitempty"` // first artist image, if any
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
}

// TrackSummary is the display projection of a track from the top-tracks listing.
type TrackSummary struct {
	Name       string   `json:"name"`
	Duration   string   `json:"duration"` // m:ss
	Popularity int      `json:"popularity"`
	Artists    []string `json:"artists"`
}

// PlaylistSummary is the display projection of a playlist owned or followed by the user.
type PlaylistSummary struct {
	Name        string `json:"name"`
	Creator     string `json:"creator"`
	Description string `json:"description"`
}

// SuggestionSummary is the display projection of a recommended track.
type SuggestionSummary struct {
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Popularity int    `json:"popularity"`
}

// Default seed values for recommendation queries.
const (
	DefaultRecommendationLimit  = 15
	DefaultRecommendationMarket = "US"
)

// RecommendationQuery describes a single recommendations request.
//
// MinPopularity and MaxPopularity are optional; a nil pointer omits the
// corresponding parameter from the query string.
type RecommendationQuery struct {
	SeedArtist    string
	SeedGenre     string
	Limit         int
	Market        string
	MinPopularity *int
	MaxPopularity *int
}

// Values encodes the query as URL parameters, applying the default limit and
// market when unset and omitting nil popularity bounds.
func (q RecommendationQuery) Values() url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	market := q.Market
	if market == "" {
		market = DefaultRecommendationMarket
	}

	values := url.Values{}
	values.Set("seed_artists", q.SeedArtist)
	values.Set("seed_genres", q.SeedGenre)
	values.Set("limit", strconv.Itoa(limit))
	values.Set("market", market)

	if q.MinPopularity != nil {
		values.Set("min_popularity", strconv.Itoa(*q.MinPopularity))
	}
	if q.MaxPopularity != nil {
		values.Set("max_popularity", strconv.Itoa(*q.MaxPopularity))
	}

	return values
}

// FormatDuration renders a track duration in milliseconds as m:ss.
func FormatDuration(ms int) string {
	totalSeconds := ms / 1000
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

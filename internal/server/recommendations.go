package server

import (
	"net/http"
	"strconv"

	"github.com/jeobmg24/spotify-relay/internal/models"
	"golang.org/x/oauth2"
)

// Suggestions lists track suggestions from fixed seed values.
func (h *RelayHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	token, ok := h.browserCredential(w, r)
	if !ok {
		return
	}

	// Fixed seeds matching the stock suggestions view.
	query := models.RecommendationQuery{
		SeedArtist: "5ficpwpxT4Gz9OsA3h3fFA",
		SeedGenre:  "work-out",
	}

	suggestions, err := h.spotify.Recommendations(r.Context(), token, query)
	if err != nil {
		h.upstreamFailure(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, suggestions)
}

// CustomRecommendations serves the browser form for seeded recommendations.
//
// Form fields: artist, genre, minimum, maximum. A missing credential sends the
// browser back to login; upstream failures surface as a 400 JSON error the
// form page can display.
func (h *RelayHandler) CustomRecommendations(w http.ResponseWriter, r *http.Request) {
	token, ok := h.browserCredential(w, r)
	if !ok {
		return
	}

	query, formErr := recommendationForm(r)
	if formErr != "" {
		h.writeError(w, http.StatusBadRequest, formErr)
		return
	}

	h.recommend(w, r, token, query)
}

// GetRecommendations is the programmatic variant of [RelayHandler.CustomRecommendations].
//
// Its caller is code, not a browser, so every failure surfaces as a
// structured error body: 400 for an unusable request or upstream error, 404
// when the artist is unknown, 500 for anything unexpected.
func (h *RelayHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	token, err := h.credential(w, r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "not authenticated")
		return
	}

	query, formErr := recommendationForm(r)
	if formErr != "" {
		h.writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	h.recommend(w, r, token, query)
}

// recommend resolves the seed artist and fetches suggestions for both recommendation endpoints.
func (h *RelayHandler) recommend(w http.ResponseWriter, r *http.Request, token *oauth2.Token, query models.RecommendationQuery) {
	artistID, err := h.spotify.ResolveArtistID(r.Context(), token, query.SeedArtist)
	if err != nil {
		h.logger.Error("artist search failed", "artist", query.SeedArtist, "error", err)
		if isUpstream(err) {
			h.writeError(w, http.StatusBadRequest, "an error occurred while fetching recommendations")
		} else {
			h.writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
		}
		return
	}

	if artistID == "" {
		h.writeError(w, http.StatusNotFound, "no artist found")
		return
	}

	query.SeedArtist = artistID

	suggestions, err := h.spotify.Recommendations(r.Context(), token, query)
	if err != nil {
		h.logger.Error("recommendations fetch failed", "error", err)
		if isUpstream(err) {
			h.writeError(w, http.StatusBadRequest, "an error occurred while fetching recommendations")
		} else {
			h.writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, suggestions)
}

// recommendationForm parses the shared recommendation form fields.
//
// The artist name is carried in RecommendationQuery.SeedArtist until the
// handler resolves it to an ID.
func recommendationForm(r *http.Request) (models.RecommendationQuery, string) {
	if err := r.ParseForm(); err != nil {
		return models.RecommendationQuery{}, "malformed form data"
	}

	artist := r.PostFormValue("artist")
	genre := r.PostFormValue("genre")
	if artist == "" || genre == "" {
		return models.RecommendationQuery{}, "artist and genre are required"
	}

	query := models.RecommendationQuery{
		SeedArtist: artist,
		SeedGenre:  genre,
	}

	if min, ok := formInt(r, "minimum"); ok {
		query.MinPopularity = &min
	}
	if max, ok := formInt(r, "maximum"); ok {
		query.MaxPopularity = &max
	}

	return query, ""
}

// formInt parses an optional integer form field; unparseable values are treated as absent.
func formInt(r *http.Request, field string) (int, bool) {
	raw := r.PostFormValue(field)
	if raw == "" {
		return 0, false
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	return value, true
}

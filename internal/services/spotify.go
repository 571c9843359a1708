// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeobmg24/spotify-relay/internal/models"
	"github.com/jeobmg24/spotify-relay/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 5.0
	searchMarket     = "US"

	maxErrorBody = 4096
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Images     []SpotifyImage `json:"images"`
	Popularity int            `json:"popularity"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       owner  `json:"owner"`
	Public      bool   `json:"public"`
}

type topArtistsPage struct {
	Items []SpotifyArtist `json:"items"`
}

type topTracksPage struct {
	Items []SpotifyTrack `json:"items"`
}

type playlistsPage struct {
	Items []SpotifySimplePlaylist `json:"items"`
}

type recommendationsPage struct {
	Tracks []SpotifyTrack `json:"tracks"`
}

type searchPage struct {
	Artists struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
}

// SpotifyService implements the [Service] interface for Spotify API interactions.
//
// It owns the full credential lifecycle: the authorization-code exchange, the
// expiry gate, and the refresh exchange. Resource fetches attach the bearer
// token and pass through a client-side rate limiter.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	showDialog bool
	apiBase    string
	now        func() time.Time
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
//
// The client defaults to one with a bounded timeout; every upstream call goes
// through it.
func NewSpotifyService(credentials map[string]string, client *http.Client) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	scopes := strings.Fields(credentials["scopes"])
	if len(scopes) == 0 {
		scopes = []string{"user-read-private", "user-read-email", "user-top-read"}
	}

	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		showDialog: credentials["show_dialog"] == "true",
		apiBase:    spotifyBaseURL,
		now:        time.Now,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetRateLimit replaces the upstream request limiter with one allowing rps requests per second.
func (s *SpotifyService) SetRateLimit(rps float64) {
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// AuthURL returns the OAuth2 authorization URL for user login.
//
// Appends show_dialog=true when configured, forcing the consent screen even
// for previously authorized users.
func (s *SpotifyService) AuthURL(state string) string {
	var opts []oauth2.AuthCodeOption
	if s.showDialog {
		opts = append(opts, oauth2.SetAuthURLParam("show_dialog", "true"))
	}
	return s.config.AuthCodeURL(state, opts...)
}

// ExchangeCode performs a one-shot exchange of an authorization code for a credential.
//
// The returned token's expiry is now plus the server-reported lifetime.
// Authorization codes are single use; a reused code fails with
// [shared.ErrExchangeFailed] carrying the upstream response.
func (s *SpotifyService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty authorization code", shared.ErrExchangeFailed)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExchangeFailed, err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint omitted access_token", shared.ErrExchangeFailed)
	}

	return token, nil
}

// Refresh performs the refresh-token exchange against the token endpoint.
//
// Upstream refresh responses commonly omit a new refresh token; the original
// one is kept in that case so subsequent refreshes remain possible.
func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, shared.ErrNoRefreshToken)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", s.config.ClientID)
	form.Set("client_secret", s.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrRefreshFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrRefreshFailed, resp.StatusCode, body)
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if payload.AccessToken == "" || payload.ExpiresIn <= 0 {
		return nil, fmt.Errorf("%w: token endpoint omitted access_token or expires_in", shared.ErrRefreshFailed)
	}

	if payload.RefreshToken == "" {
		payload.RefreshToken = refreshToken
	}

	return &oauth2.Token{
		AccessToken:  payload.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: payload.RefreshToken,
		Expiry:       s.now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}

// EnsureValid is the gate every resource call passes through.
//
// An unexpired credential is returned unchanged without any network call. An
// expired one triggers exactly one refresh exchange; on refresh failure the
// caller is expected to force a fresh login rather than retry.
func (s *SpotifyService) EnsureValid(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if token == nil || token.AccessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}

	if s.now().Before(token.Expiry) {
		return token, nil
	}

	return s.Refresh(ctx, token.RefreshToken)
}

// get performs an authenticated GET against the Spotify API and decodes the response into result.
func (s *SpotifyService) get(ctx context.Context, token *oauth2.Token, fullURL string, result any) error {
	if token == nil || token.AccessToken == "" {
		return shared.ErrNotAuthenticated
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", shared.ErrUpstream, resp.StatusCode, body)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
	}

	return nil
}

// TopArtists retrieves the user's top artists as display summaries.
func (s *SpotifyService) TopArtists(ctx context.Context, token *oauth2.Token) ([]models.ArtistSummary, error) {
	var page topArtistsPage
	if err := s.get(ctx, token, s.apiBase+"/me/top/artists", &page); err != nil {
		return nil, err
	}

	summaries := make([]models.ArtistSummary, 0, len(page.Items))
	for _, artist := range page.Items {
		summary := models.ArtistSummary{
			Name:       artist.Name,
			Popularity: artist.Popularity,
			Genres:     artist.Genres,
		}
		if len(artist.Images) > 0 {
			summary.Picture = artist.Images[0].URL
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// TopTracks retrieves the user's top tracks as display summaries.
func (s *SpotifyService) TopTracks(ctx context.Context, token *oauth2.Token) ([]models.TrackSummary, error) {
	var page topTracksPage
	if err := s.get(ctx, token, s.apiBase+"/me/top/tracks", &page); err != nil {
		return nil, err
	}

	summaries := make([]models.TrackSummary, 0, len(page.Items))
	for _, track := range page.Items {
		names := make([]string, 0, len(track.Artists))
		for _, artist := range track.Artists {
			names = append(names, artist.Name)
		}

		summaries = append(summaries, models.TrackSummary{
			Name:       track.Name,
			Duration:   models.FormatDuration(track.DurationMS),
			Popularity: track.Popularity,
			Artists:    names,
		})
	}

	return summaries, nil
}

// Playlists retrieves the user's playlists as display summaries.
func (s *SpotifyService) Playlists(ctx context.Context, token *oauth2.Token) ([]models.PlaylistSummary, error) {
	var page playlistsPage
	if err := s.get(ctx, token, s.apiBase+"/me/playlists", &page); err != nil {
		return nil, err
	}

	summaries := make([]models.PlaylistSummary, 0, len(page.Items))
	for _, playlist := range page.Items {
		summaries = append(summaries, models.PlaylistSummary{
			Name:        playlist.Name,
			Creator:     playlist.Owner.DisplayName,
			Description: playlist.Description,
		})
	}

	return summaries, nil
}

// BuildRecommendationsURL encodes the query onto the recommendations endpoint. No network effect.
func (s *SpotifyService) BuildRecommendationsURL(query models.RecommendationQuery) string {
	return s.apiBase + "/recommendations?" + query.Values().Encode()
}

// Recommendations retrieves track suggestions for the given query.
func (s *SpotifyService) Recommendations(ctx context.Context, token *oauth2.Token, query models.RecommendationQuery) ([]models.SuggestionSummary, error) {
	var page recommendationsPage
	if err := s.get(ctx, token, s.BuildRecommendationsURL(query), &page); err != nil {
		return nil, err
	}

	summaries := make([]models.SuggestionSummary, 0, len(page.Tracks))
	for _, track := range page.Tracks {
		summary := models.SuggestionSummary{
			Name:       track.Name,
			Popularity: track.Popularity,
		}
		if len(track.Artists) > 0 {
			summary.Artist = track.Artists[0].Name
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// ResolveArtistID searches Spotify for an artist by name.
//
// Returns the first match's ID. An empty result list yields ("", nil):
// absence is an expected outcome, not an error.
func (s *SpotifyService) ResolveArtistID(ctx context.Context, token *oauth2.Token, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty artist name", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("type", "artist")
	params.Set("market", searchMarket)
	params.Set("limit", "1")
	params.Set("offset", "0")

	var page searchPage
	if err := s.get(ctx, token, s.apiBase+"/search?"+params.Encode(), &page); err != nil {
		return "", err
	}

	if len(page.Artists.Items) == 0 {
		return "", nil
	}

	return page.Artists.Items[0].ID, nil
}

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"

	"github.com/jeobmg24/spotify-relay/internal/models"
	"golang.org/x/oauth2"
)

// MockService is a configurable test double satisfying services.Service.
//
// Each operation delegates to the corresponding function field when set and
// otherwise returns a zero value.
type MockService struct {
	AuthURLFn         func(state string) string
	ExchangeCodeFn    func(ctx context.Context, code string) (*oauth2.Token, error)
	EnsureValidFn     func(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
	TopArtistsFn      func(ctx context.Context, token *oauth2.Token) ([]models.ArtistSummary, error)
	TopTracksFn       func(ctx context.Context, token *oauth2.Token) ([]models.TrackSummary, error)
	PlaylistsFn       func(ctx context.Context, token *oauth2.Token) ([]models.PlaylistSummary, error)
	RecommendationsFn func(ctx context.Context, token *oauth2.Token, query models.RecommendationQuery) ([]models.SuggestionSummary, error)
	ResolveArtistIDFn func(ctx context.Context, token *oauth2.Token, name string) (string, error)
}

func (m *MockService) AuthURL(state string) string {
	if m.AuthURLFn != nil {
		return m.AuthURLFn(state)
	}
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if m.ExchangeCodeFn != nil {
		return m.ExchangeCodeFn(ctx, code)
	}
	return &oauth2.Token{AccessToken: "mock_token"}, nil
}

func (m *MockService) EnsureValid(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if m.EnsureValidFn != nil {
		return m.EnsureValidFn(ctx, token)
	}
	return token, nil
}

func (m *MockService) TopArtists(ctx context.Context, token *oauth2.Token) ([]models.ArtistSummary, error) {
	if m.TopArtistsFn != nil {
		return m.TopArtistsFn(ctx, token)
	}
	return []models.ArtistSummary{}, nil
}

func (m *MockService) TopTracks(ctx context.Context, token *oauth2.Token) ([]models.TrackSummary, error) {
	if m.TopTracksFn != nil {
		return m.TopTracksFn(ctx, token)
	}
	return []models.TrackSummary{}, nil
}

func (m *MockService) Playlists(ctx context.Context, token *oauth2.Token) ([]models.PlaylistSummary, error) {
	if m.PlaylistsFn != nil {
		return m.PlaylistsFn(ctx, token)
	}
	return []models.PlaylistSummary{}, nil
}

func (m *MockService) Recommendations(ctx context.Context, token *oauth2.Token, query models.RecommendationQuery) ([]models.SuggestionSummary, error) {
	if m.RecommendationsFn != nil {
		return m.RecommendationsFn(ctx, token, query)
	}
	return []models.SuggestionSummary{}, nil
}

func (m *MockService) ResolveArtistID(ctx context.Context, token *oauth2.Token, name string) (string, error) {
	if m.ResolveArtistIDFn != nil {
		return m.ResolveArtistIDFn(ctx, token, name)
	}
	return "", nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

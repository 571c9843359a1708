// package services defines interface Service for the upstream music catalog
package services

import (
	"context"

	"github.com/jeobmg24/spotify-relay/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the operations the relay needs from a music catalog: the
// credential lifecycle and the read-only resource fetches the handlers expose.
//
// Every resource method requires a credential previously validated through
// [Service.EnsureValid].
type Service interface {
	// AuthURL returns the consent-redirect URL for the given state token.
	// Pure function of configuration; no side effects.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for a credential.
	// This is the only path that creates a credential.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// EnsureValid returns the credential unchanged while it has not expired,
	// and otherwise attempts exactly one refresh exchange before failing.
	EnsureValid(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)

	// TopArtists retrieves the user's top artists.
	TopArtists(ctx context.Context, token *oauth2.Token) ([]models.ArtistSummary, error)

	// TopTracks retrieves the user's top tracks.
	TopTracks(ctx context.Context, token *oauth2.Token) ([]models.TrackSummary, error)

	// Playlists retrieves the user's playlists.
	Playlists(ctx context.Context, token *oauth2.Token) ([]models.PlaylistSummary, error)

	// Recommendations retrieves track suggestions for the given query.
	Recommendations(ctx context.Context, token *oauth2.Token, query models.RecommendationQuery) ([]models.SuggestionSummary, error)

	// ResolveArtistID searches for an artist by name and returns the first
	// match's identifier, or an empty string when nothing matched.
	ResolveArtistID(ctx context.Context, token *oauth2.Token, name string) (string, error)

	// Name returns the name of the upstream service (e.g. "Spotify")
	Name() string
}

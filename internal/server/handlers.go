package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/jeobmg24/spotify-relay/internal/services"
	"github.com/jeobmg24/spotify-relay/internal/sessions"
	"github.com/jeobmg24/spotify-relay/internal/shared"
	"golang.org/x/oauth2"
)

const (
	stateCookie    = "relay_oauth_state"
	stateCookieTTL = 300 // seconds

	loginPath = "/login"
	homePath  = "/home"
)

// RelayHandler serves the relay's browser-facing and JSON endpoints.
//
// Implements the [Handler] interface for registration with a [Router].
type RelayHandler struct {
	spotify    services.Service
	store      sessions.Store
	locks      *sessions.KeyedMutex
	logger     *log.Logger
	cookieName string
}

// NewRelayHandler creates a RelayHandler backed by the given catalog service and session store.
func NewRelayHandler(spotify services.Service, store sessions.Store, logger *log.Logger, cookieName string) *RelayHandler {
	if cookieName == "" {
		cookieName = "relay_session"
	}

	return &RelayHandler{
		spotify:    spotify,
		store:      store,
		locks:      sessions.NewKeyedMutex(),
		logger:     logger,
		cookieName: cookieName,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *RelayHandler) Routes() []string {
	return []string{
		"/",
		"/home",
		"/login",
		"/callback",
		"/logout",
		"/artists",
		"/tracks",
		"/playlists",
		"/suggestions",
		"/custom-recommendations",
		"/get-recommendations",
	}
}

// ServeHTTP dispatches requests to the endpoint handlers.
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/", "/home":
		h.get(w, r, h.Home)
	case "/login":
		h.get(w, r, h.Login)
	case "/callback":
		h.get(w, r, h.Callback)
	case "/logout":
		h.get(w, r, h.Logout)
	case "/artists":
		h.get(w, r, h.Artists)
	case "/tracks":
		h.get(w, r, h.Tracks)
	case "/playlists":
		h.get(w, r, h.Playlists)
	case "/suggestions":
		h.get(w, r, h.Suggestions)
	case "/custom-recommendations":
		h.post(w, r, h.CustomRecommendations)
	case "/get-recommendations":
		h.post(w, r, h.GetRecommendations)
	default:
		http.NotFound(w, r)
	}
}

func (h *RelayHandler) get(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fn(w, r)
}

func (h *RelayHandler) post(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fn(w, r)
}

// Home returns a small JSON index of the relay's routes.
func (h *RelayHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"service": h.spotify.Name() + " relay",
		"routes":  []string{"/login", "/artists", "/tracks", "/playlists", "/suggestions"},
	})
}

// Login redirects the browser to the upstream consent screen.
//
// A random state token is set in a short-lived cookie and verified on callback.
func (h *RelayHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state token", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieTTL,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.spotify.AuthURL(state), http.StatusFound)
}

// Callback establishes the session credential from the authorization response.
//
// Validates the state parameter, exchanges the authorization code for tokens,
// and stores the credential under a fresh session ID.
func (h *RelayHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn("authorization denied upstream", "error", errParam)
		h.writeJSON(w, http.StatusOK, map[string]string{"error": errParam})
		return
	}

	state := query.Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || state == "" || cookie.Value != state {
		h.writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	code := query.Get("code")
	if code == "" {
		h.writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := h.spotify.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Error("authorization code exchange failed", "error", err)
		h.writeError(w, http.StatusBadGateway, "authorization failed")
		return
	}

	sessionID := shared.GenerateID()
	if err := h.store.Put(r.Context(), sessionID, token); err != nil {
		h.logger.Error("failed to store session", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, homePath, http.StatusFound)
}

// Logout destroys the session credential and sends the browser back to login.
func (h *RelayHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.store.Delete(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to delete session", "error", err)
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, loginPath, http.StatusFound)
}

// Artists lists the user's top artists.
func (h *RelayHandler) Artists(w http.ResponseWriter, r *http.Request) {
	token, ok := h.browserCredential(w, r)
	if !ok {
		return
	}

	artists, err := h.spotify.TopArtists(r.Context(), token)
	if err != nil {
		h.upstreamFailure(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, artists)
}

// Tracks lists the user's top tracks.
func (h *RelayHandler) Tracks(w http.ResponseWriter, r *http.Request) {
	token, ok := h.browserCredential(w, r)
	if !ok {
		return
	}

	tracks, err := h.spotify.TopTracks(r.Context(), token)
	if err != nil {
		h.upstreamFailure(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tracks)
}

// Playlists lists the user's playlists.
func (h *RelayHandler) Playlists(w http.ResponseWriter, r *http.Request) {
	token, ok := h.browserCredential(w, r)
	if !ok {
		return
	}

	playlists, err := h.spotify.Playlists(r.Context(), token)
	if err != nil {
		h.upstreamFailure(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, playlists)
}

// credential loads and validates the session credential for the request.
//
// The lookup, expiry gate, possible refresh, and store write run under the
// per-session lock so concurrent requests cannot race duplicate refreshes.
// On refresh failure the session is destroyed; the caller must restart the
// authorization flow.
func (h *RelayHandler) credential(w http.ResponseWriter, r *http.Request) (*oauth2.Token, error) {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, shared.ErrNotAuthenticated
	}
	sessionID := cookie.Value

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	token, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("session lookup failed", "error", err)
		return nil, err
	}
	if token == nil {
		return nil, shared.ErrNotAuthenticated
	}

	valid, err := h.spotify.EnsureValid(r.Context(), token)
	if err != nil {
		h.logger.Warn("credential expired and refresh failed, forcing login", "error", err)
		if delErr := h.store.Delete(r.Context(), sessionID); delErr != nil {
			h.logger.Warn("failed to delete session", "error", delErr)
		}
		h.clearSessionCookie(w)
		return nil, err
	}

	if valid != token {
		if err := h.store.Put(r.Context(), sessionID, valid); err != nil {
			h.logger.Error("failed to persist refreshed credential", "error", err)
			return nil, err
		}
	}

	return valid, nil
}

// browserCredential is the guard for browser-facing endpoints: any credential
// failure degrades uniformly to a redirect to /login.
func (h *RelayHandler) browserCredential(w http.ResponseWriter, r *http.Request) (*oauth2.Token, bool) {
	token, err := h.credential(w, r)
	if err != nil {
		http.Redirect(w, r, loginPath, http.StatusFound)
		return nil, false
	}
	return token, true
}

// upstreamFailure handles a non-200 resource response for browser endpoints.
//
// The upstream body is logged for diagnostics but never rendered; the user is
// sent back to login without partial data.
func (h *RelayHandler) upstreamFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("resource fetch failed", "path", r.URL.Path, "error", err)
	http.Redirect(w, r, loginPath, http.StatusFound)
}

func (h *RelayHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (h *RelayHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *RelayHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// isUpstream reports whether err came from a non-200 upstream response or a
// malformed body, as opposed to a local failure.
func isUpstream(err error) bool {
	return errors.Is(err, shared.ErrUpstream) || errors.Is(err, shared.ErrMalformedResponse) || errors.Is(err, shared.ErrAPIRequest)
}

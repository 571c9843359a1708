package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeobmg24/spotify-relay/internal/server"
	"github.com/jeobmg24/spotify-relay/internal/services"
	"github.com/jeobmg24/spotify-relay/internal/sessions"
	"github.com/jeobmg24/spotify-relay/internal/shared"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
)

// Setup writes the embedded example config to the path given by --config.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Config file created at %s\n", configPath)
	r.writePlain("Fill in your Spotify client credentials before running serve.\n")

	return nil
}

// AuthURL prints the consent URL for the configured Spotify client.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	spotify, err := services.NewSpotifyService(config.Credentials.Spotify.Map(), nil)
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	authURL := spotify.AuthURL(state)
	r.writePlain("%s\n", authURL)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
		}
	}

	return nil
}

// Serve starts the relay HTTP server and blocks until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	spotifyConf := config.Credentials.Spotify
	if spotifyConf.ClientID == "" || spotifyConf.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	timeout := time.Duration(config.HTTP.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	spotify, err := services.NewSpotifyService(spotifyConf.Map(), &http.Client{Timeout: timeout})
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}
	spotify.SetRateLimit(config.HTTP.RateLimit)

	store, err := r.buildStore(ctx, config)
	if err != nil {
		return err
	}

	relay := server.NewRelayHandler(spotify, store, shared.WithLogger(r.logger, "component", "relay"), config.Sessions.CookieName)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(relay)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("relay listening at %v", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-stop.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	return nil
}

// buildStore constructs the session store named by the config.
func (r *Runner) buildStore(ctx context.Context, config *shared.Config) (sessions.Store, error) {
	ttl := time.Duration(config.Sessions.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	switch config.Sessions.Backend {
	case "", "memory":
		return sessions.NewMemoryStore(ttl), nil
	case "redis":
		opts, err := redis.ParseURL(config.Sessions.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid redis_url: %v", shared.ErrInvalidConfig, err)
		}

		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("%w: redis unreachable: %v", shared.ErrServiceUnavailable, err)
		}

		return sessions.NewRedisStore(client, ttl), nil
	default:
		return nil, fmt.Errorf("%w: unknown sessions backend %q", shared.ErrInvalidConfig, config.Sessions.Backend)
	}
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeobmg24/spotify-relay/internal/shared"
	tu "github.com/jeobmg24/spotify-relay/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		commands := runner.register()
		if len(commands) != 3 {
			t.Fatalf("expected 3 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, command := range commands {
			names[command.Name] = true
		}
		for _, want := range []string{"setup", "auth-url", "serve"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if output.String() != "{\"key\":\"value\"}\n" {
				t.Errorf("unexpected output: %s", output.String())
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(output.String(), "  \"key\": \"value\"") {
				t.Errorf("expected indented output, got %s", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("unmarshalable value", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("unexpected output: %s", output.String())
		}

		runner = NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writePlain("hello"); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestSetup(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	command := setupCommand(runner)
	if err := command.Run(context.Background(), []string{"setup", "--config", configPath}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file should exist: %v", err)
	}
	if !strings.Contains(output.String(), configPath) {
		t.Errorf("expected created path in output, got %s", output.String())
	}

	if err := command.Run(context.Background(), []string{"setup", "--config", configPath}); err == nil {
		t.Error("running setup twice should fail")
	}
}

func TestAuthURL(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[credentials.spotify]
client_id = "cid"
client_secret = "secret"
redirect_uri = "http://localhost:8080/callback"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	command := authURLCommand(runner)
	if err := command.Run(context.Background(), []string{"auth-url", "--config", configPath}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := output.String()
	if !strings.Contains(got, "accounts.spotify.com") || !strings.Contains(got, "cid") {
		t.Errorf("expected consent URL in output, got %s", got)
	}
}

func TestServeValidation(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		command := serveCommand(runner)
		err := command.Run(context.Background(), []string{"serve", "--config", "/nonexistent/config.toml"})
		if err == nil {
			t.Fatal("expected error for unconfigured credentials")
		}
		if !strings.Contains(err.Error(), "client_id") {
			t.Errorf("expected credential validation error, got %v", err)
		}
	})
}

func TestBuildStore(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

	t.Run("memory by default", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Sessions.Backend = ""

		store, err := runner.buildStore(ctx, config)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if store == nil {
			t.Error("expected a store")
		}
	})

	t.Run("invalid redis url", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Sessions.Backend = "redis"
		config.Sessions.RedisURL = "not-a-url"

		if _, err := runner.buildStore(ctx, config); err == nil {
			t.Error("expected error for invalid redis URL")
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Sessions.Backend = "etcd"

		if _, err := runner.buildStore(ctx, config); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}

package shared

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID()

	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected a valid UUID, got %s: %v", id, err)
	}

	if GenerateID() == id {
		t.Error("expected distinct IDs on successive calls")
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	raw, err := hex.DecodeString(state)
	if err != nil {
		t.Fatalf("expected hex-encoded state, got %s: %v", state, err)
	}
	if len(raw) != 16 {
		t.Errorf("expected 16 bytes of entropy, got %d", len(raw))
	}

	other, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if other == state {
		t.Error("expected distinct state tokens on successive calls")
	}
}

func TestOpenBrowser(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()

	getRuntime = func() string { return "plan9" }

	err := OpenBrowser("http://localhost:8080")
	if err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestLogger(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		logger.Info("hello")
		if buf.Len() == 0 {
			t.Error("expected log output")
		}
	})

	t.Run("Nil Writer Defaults", func(t *testing.T) {
		if NewLogger(nil) == nil {
			t.Error("expected a logger")
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		child := WithLogger(logger, "component", "relay")
		child.Info("hello")

		if !bytes.Contains(buf.Bytes(), []byte("relay")) {
			t.Errorf("expected child fields in output, got %s", buf.String())
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("suppressed")

		if buf.Len() != 0 {
			t.Errorf("expected info to be suppressed, got %s", buf.String())
		}
	})
}

package testing

import (
	"io"
	"testing"
	"time"

	"finboard-go/internal/platform/config"
	"finboard-go/internal/platform/logging"
)

func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Defaults()
	cfg.API.BaseURL = "http://127.0.0.1:3000"
	cfg.Channel.URL = "ws://127.0.0.1:3000/ws"
	cfg.Channel.ReconnectInitial = 10 * time.Millisecond
	cfg.Channel.ReconnectMax = 50 * time.Millisecond
	cfg.Log.Level = "DEBUG"

	return cfg
}

func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.New(logging.Config{
		Level:  "DEBUG",
		Output: io.Discard,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}

	return logger
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// Eventually polls the condition until it holds or the deadline passes.
// Timer driven behaviour (session clock, reconnects) is asserted through it.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

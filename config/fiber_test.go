package config

import (
	"testing"
	"time"
)

func TestHttpTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "")
	if got := httpTimeout(); got != 60*time.Second {
		t.Errorf("expected the 60s default, got %s", got)
	}

	t.Setenv("HTTP_TIMEOUT_SECONDS", "15")
	if got := httpTimeout(); got != 15*time.Second {
		t.Errorf("expected 15s, got %s", got)
	}

	t.Setenv("HTTP_TIMEOUT_SECONDS", "not-a-number")
	if got := httpTimeout(); got != 60*time.Second {
		t.Errorf("expected the default for a bad value, got %s", got)
	}
}

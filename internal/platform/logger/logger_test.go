package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestSetupLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
		if logger := Setup(level); logger == nil {
			t.Errorf("Expected a logger for level %q", level)
		}
	}
}

func TestSetupInvalidLevelFallsBack(t *testing.T) {
	if logger := Setup("chatty"); logger == nil {
		t.Error("Expected a logger despite an invalid level")
	}
}

func TestFromContextRoundTrip(t *testing.T) {
	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := WithContext(context.Background(), base)

	if got := FromContext(ctx); got != base {
		t.Error("Expected the stored logger back from the context")
	}
}

func TestFromContextDefault(t *testing.T) {
	if got := FromContext(context.Background()); got == nil {
		t.Error("Expected the default logger for a bare context")
	}
}

package cmd

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func Test_buildLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		log, err := buildLogger(lvl)
		if err != nil {
			t.Fatalf("buildLogger(%q): %v", lvl, err)
		}
		if lvl == "debug" && !log.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("debug logger does not log debug")
		}
		if lvl == "error" && log.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("error logger logs info")
		}
	}
	if _, err := buildLogger("loud"); err == nil {
		t.Fatalf("want error for unknown level")
	}
}

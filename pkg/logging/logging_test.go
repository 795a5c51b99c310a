package logging_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"inventorysync.com/pkg/logging"
)

func TestConfigLevelByEnv(t *testing.T) {
	cases := map[string]zapcore.Level{
		"production":  zapcore.InfoLevel,
		"staging":     zapcore.InfoLevel,
		"development": zapcore.DebugLevel,
		"":            zapcore.DebugLevel,
	}
	for env, want := range cases {
		cfg := logging.Config(env)
		if got := cfg.Level.Level(); got != want {
			t.Errorf("%q: level = %s, want %s", env, got, want)
		}
	}
}

func TestNewBuildsLogger(t *testing.T) {
	logger, err := logging.New("production")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("production logger should not log debug")
	}
}

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap logger configured for the application environment:
// JSON at info level in production and staging, console at debug otherwise.
func New(env string) (*zap.Logger, error) {
	return Config(env).Build()
} // ./New

func Config(env string) zap.Config {
	switch env {
	case "production", "staging":
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg
	default:
		return zap.NewDevelopmentConfig()
	}
} // ./Config

// Package logging builds the structured loggers used across the service.
package logging

import "go.uber.org/zap"

// New builds a zap logger for the configured level and format. An
// unparseable level falls back to info. Output goes to stderr, which
// keeps stdout clean for the stdio transport.
func New(level, format string, development bool) (*zap.Logger, error) {
	var zapConfig zap.Config
	if development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		parsed = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = parsed

	if format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	return zapConfig.Build()
}

// internal/platform/logging/logger.go
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New は format ("text" / "json") と level から zerolog.Logger を作ります。
func New(w io.Writer, format, level string) (zerolog.Logger, error) {
	out := w
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text", "plain":
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					return strings.ToUpper(ll)
				}
				return "????"
			},
		}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unsupported log format: %s", format)
	}

	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to parse log level: %v", err)
	}

	return zerolog.New(out).Level(logLevel).With().Timestamp().Logger(), nil
}

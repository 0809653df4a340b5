// internal/infra/ledger/logger.go
package ledger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// badgerLogger は badger のログを zerolog に流します。
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) format(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msg(l.format(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msg(l.format(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msg(l.format(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msg(l.format(format, args...))
}

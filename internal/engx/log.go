// Package engx is the engine's logging facade: one small severity-leveled
// logger handed down by reference to every package, built on
// charmbracelet/log with optional rotating-file output.
package engx

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a *log.Logger, adding the periodic estimator-status line
// with a strftime-formatted timestamp.
type Logger struct {
	*log.Logger
	statusFormat *strftime.Strftime
}

// Rotation mirrors lumberjack's sizing knobs for the file sink. The zero
// value falls back to lumberjack's own defaults.
type Rotation struct {
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// New builds a Logger writing to stderr, or to a rotating file at filePath
// when one is given. level is one of "debug", "info", "warn", "error"; rot
// is only consulted when a file path is set.
func New(level, filePath string, rot Rotation) (*Logger, error) {
	var w io.Writer = os.Stderr
	if filePath != "" {
		w = &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    rot.MaxSizeMB,
			MaxAge:     rot.MaxAgeDays,
			MaxBackups: rot.MaxBackups,
			Compress:   rot.Compress,
		}
	}

	l := log.NewWithOptions(w, log.Options{ReportTimestamp: true})
	l.SetLevel(parseLevel(level))

	fmt, err := strftime.New("%Y-%m-%d %H:%M:%S")
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: l, statusFormat: fmt}, nil
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// EstimatorStatus logs an unsolicited per-inspector baud estimate line.
func (l *Logger) EstimatorStatus(inspectorID uint32, facBaud, nlnBaud float64) {
	ts := l.statusFormat.FormatString(nowFunc())
	l.Logger.With("inspector_id", inspectorID, "fac_baud", facBaud, "nln_baud", nlnBaud, "ts", ts).
		Info("estimator")
}

// Package log hands out named, leveled loggers that share one sink. Output
// goes to stderr at Warning until SetSink or SetLevel say otherwise.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/op/go-logging"
)

// Level is the minimum severity written to the sink.
type Level int

const (
	Debug Level = iota
	Info
	Warning
	Error
)

var backendLevels = map[Level]logging.Level{
	Debug:   logging.DEBUG,
	Info:    logging.INFO,
	Warning: logging.WARNING,
	Error:   logging.ERROR,
}

var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{level:.4s} %{module:-11s}%{color:reset} %{message}`,
)

// Logger is the subset of *logging.Logger the renderer packages use.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warning(v ...interface{})
	Warningf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

var (
	mu      sync.Mutex
	level   = Warning
	backend logging.LeveledBackend
)

// New returns the logger for a package. name is printed on every line.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink redirects every logger to sink, keeping the current level.
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	formatted := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	backend = logging.AddModuleLevel(formatted)
	backend.SetLevel(backendLevels[level], "")
	logging.SetBackend(backend)
}

// SetLevel changes the level of every logger.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := backendLevels[l]; !ok {
		return
	}
	level = l
	backend.SetLevel(backendLevels[l], "")
}

// Verbosity maps the number of -v flags to a level.
func Verbosity(n int) Level {
	switch {
	case n >= 2:
		return Debug
	case n == 1:
		return Info
	}
	return Warning
}

func init() {
	SetSink(os.Stderr)
}

package logging

import (
	"os"

	"github.com/phuslu/log"
)

// Setup builds the process logger: colored console output plus an optional
// append-only log file. It also replaces log.DefaultLogger so packages that
// were handed a nil logger still write somewhere sensible.
func Setup(level, file string) *log.Logger {
	var writer log.Writer = &log.ConsoleWriter{
		ColorOutput:    log.IsTerminal(os.Stderr.Fd()),
		QuoteString:    true,
		EndWithMessage: true,
		Writer:         os.Stderr,
	}

	if file != "" {
		writer = &log.MultiEntryWriter{
			writer,
			&log.FileWriter{
				Filename:  file,
				MaxSize:   50 * 1024 * 1024,
				LocalTime: true,
			},
		}
	}

	logger := &log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     writer,
	}
	log.DefaultLogger = *logger
	return logger
}

// Component returns a copy of logger tagged with a component field.
func Component(logger *log.Logger, name string) *log.Logger {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	child := *logger
	child.Context = log.NewContext(nil).Str("component", name).Value()
	return &child
}

// Package logger holds the process-wide zerolog logger of the catalog API.
//
// main calls Init once; packages receive a Component logger through their
// constructors rather than reaching for the global.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultService = "catalog-api"

// Options configures the logger built by Init.
type Options struct {
	// Level is a zerolog level name; "warning" is accepted for warn. Unknown or
	// empty values mean info.
	Level string
	// Pretty switches from JSON lines to the coloured console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer

	// Service, Environment and Version are stamped on every entry. Service
	// defaults to catalog-api; the others are omitted when empty.
	Service     string
	Environment string
	Version     string
}

var (
	mu       sync.Mutex
	instance *zerolog.Logger
)

// Init builds the process logger on first call and returns it. Later calls
// return the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		return *instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	service := opts.Service
	if service == "" {
		service = defaultService
	}
	ctx := zerolog.New(out).Level(level).With().Timestamp().Caller().Str("service", service)
	if opts.Environment != "" {
		ctx = ctx.Str("env", opts.Environment)
	}
	if opts.Version != "" {
		ctx = ctx.Str("version", opts.Version)
	}

	l := ctx.Logger()
	instance = &l
	return l
}

// Get returns the process logger. It panics before Init.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		panic("logger: Get() called before Init()")
	}
	return *instance
}

// Component returns the process logger tagged with a component name such as
// "catalog" or "dispatcher".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Product tags an event with the product it concerns.
func Product(e *zerolog.Event, id int64, sku string) *zerolog.Event {
	e = e.Int64("product_id", id)
	if sku != "" {
		e = e.Str("sku", sku)
	}
	return e
}

// Actor tags an event with the user that caused it.
func Actor(e *zerolog.Event, userID int64) *zerolog.Event {
	return e.Int64("actor_id", userID)
}

// Reset discards the process logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

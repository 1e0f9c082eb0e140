// Package cli implements the routesim command-line interface.
//
// Commands edit topology files in the interchange format, compute routes
// through the shared pipeline, manage saved topologies and the result cache,
// and serve the HTTP API. The CLI is built using cobra and logs with the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - init, show: Create and inspect topology files
//   - node, edge: Edit routers and links
//   - route: Compute a routing table or a single route
//   - store: Save and load named topologies
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so nested helpers log with the same level.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps are formatted as
// "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one operation and logs its completion.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, rounded to the millisecond, and any
// extra key/value pairs.
//
//	14:32:01.45 INFO Centralized (Dijkstra) routes from router 1 elapsed=3ms
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append([]any{"elapsed", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

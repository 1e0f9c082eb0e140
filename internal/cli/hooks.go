package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks reports observability events through the CLI logger. serve
// registers it for the lifetime of the server.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l.WithPrefix("hooks")}
}

func (h *logHooks) OnComputeStart(_ context.Context, algorithm string, source, nodeCount int) {
	h.logger.Debug("compute start", "algorithm", algorithm, "source", source, "nodes", nodeCount)
}

func (h *logHooks) OnComputeComplete(_ context.Context, algorithm string, source, reachable int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("compute failed", "algorithm", algorithm, "source", source, "err", err)
		return
	}
	h.logger.Debug("compute done", "algorithm", algorithm, "source", source, "reachable", reachable, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	if status >= 500 {
		h.logger.Warn("response", "method", method, "path", path, "status", status, "duration", d)
		return
	}
	h.logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

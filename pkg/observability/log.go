package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failed line
// mutations and storage errors are logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

// Register installs h for every hook category.
func (h *LogHooks) Register() {
	SetLineHooks(h)
	SetStoreHooks(h)
	SetRenderHooks(h)
	SetCacheHooks(h)
}

func (h *LogHooks) OnSectionAdded(_ context.Context, lineID, section string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("add section rejected", "line", lineID, "section", section, "err", err)
		return
	}
	h.logger.Debug("section added", "line", lineID, "section", section, "took", d)
}

func (h *LogHooks) OnStationRemoved(_ context.Context, lineID, stationID string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("remove station rejected", "line", lineID, "station", stationID, "err", err)
		return
	}
	h.logger.Debug("station removed", "line", lineID, "station", stationID, "took", d)
}

func (h *LogHooks) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("store", "backend", backend, "op", op, "err", err)
		return
	}
	h.logger.Debug("store", "backend", backend, "op", op, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, lineID, format string) {
	h.logger.Debug("render start", "line", lineID, "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, lineID, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "line", lineID, "format", format, "err", err)
		return
	}
	h.logger.Debug("render done", "line", lineID, "format", format, "bytes", size, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ LineHooks   = (*LogHooks)(nil)
	_ StoreHooks  = (*LogHooks)(nil)
	_ RenderHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
)

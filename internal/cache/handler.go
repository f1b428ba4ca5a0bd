package cache

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

// Handler exposes admin-only cache introspection and flushing.
type Handler struct {
	*transport.BaseHandler
	Cache *Cache
}

func NewHandler(c *Cache) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Cache:       c,
	}
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Cache.Stats())
}

// Clear flushes the cache. With ?prefix= only matching keys go; without it
// everything goes.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	var removed int
	if prefix == "" {
		removed = h.Cache.Clear()
	} else {
		removed = h.Cache.DeleteFunc(func(key string) bool {
			return len(key) >= len(prefix) && key[:len(prefix)] == prefix
		})
	}

	h.Logger.Info("cache cleared", "prefix", prefix, "removed", removed)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"removed": removed,
	})
}

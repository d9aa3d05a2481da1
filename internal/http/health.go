package http

import (
	"net/http"
	"runtime"
	"time"
)

// Health devolve contagem de registros, uptime e memória do processo.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	total, err := h.contagem.Contar(r.Context())
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"totalDemandas": total,
		"uptimeSeconds": int64(time.Since(h.inicio).Seconds()),
		"memoria": map[string]any{
			"allocBytes": mem.Alloc,
			"sysBytes":   mem.Sys,
			"numGC":      mem.NumGC,
		},
	})
}

// Ready confirma conectividade com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Ping(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "banco indisponível", nil)
		return
	}
	if err := h.redis.Ping(r.Context()).Err(); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "redis indisponível", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"status": "pronto"})
}

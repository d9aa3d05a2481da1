package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gestaodemandas/plataforma/internal/auditoria"
)

// ListarAuditoria devolve os eventos mais recentes da trilha.
func (h *Handler) ListarAuditoria(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}

	registros, err := h.trilha.ListarRecentes(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if registros == nil {
		registros = []auditoria.Registro{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"auditoria": registros})
}

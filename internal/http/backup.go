package http

import (
	"encoding/json"
	"net/http"

	"github.com/gestaodemandas/plataforma/internal/auditoria"
	"github.com/gestaodemandas/plataforma/internal/backup"
)

// CriarBackup executa uma exportação manual e devolve o nome do arquivo.
func (h *Handler) CriarBackup(w http.ResponseWriter, r *http.Request) {
	nome, err := h.backups.Exportar(r.Context(), backup.MotivoManual)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"arquivo": nome})
}

// BaixarBackup devolve o conteúdo completo da tabela de forma síncrona.
func (h *Handler) BaixarBackup(w http.ResponseWriter, r *http.Request) {
	arquivo, err := h.backups.Snapshot(r.Context(), backup.MotivoManual)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="demandas-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(arquivo)
}

// Restaurar aplica upsert em lote a partir de um array JSON de demandas.
// A resposta reflete a conclusão real de todas as escritas.
func (h *Handler) Restaurar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Demandas []json.RawMessage `json:"demandas"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}
	if len(payload.Demandas) == 0 {
		WriteError(w, http.StatusBadRequest, "lista de demandas vazia", nil)
		return
	}

	resultado := h.backups.Restaurar(r.Context(), payload.Demandas)

	h.auditar(auditoria.Entrada{
		Acao:       auditoria.AcaoRestauracao,
		Tabela:     "demandas",
		ValorNovo:  resultado,
		UsuarioID:  h.subjectID(r),
		EnderecoIP: clientIP(r),
	})

	WriteJSON(w, http.StatusOK, map[string]any{
		"sucessos": resultado.Sucessos,
		"falhas":   resultado.Falhas,
		"erros":    resultado.Erros,
	})
}

package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gestaodemandas/plataforma/internal/usuario"
)

// ListarUsuarios devolve o elenco sem hashes de senha.
func (h *Handler) ListarUsuarios(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.usuarios.Listar(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if usuarios == nil {
		usuarios = []usuario.Usuario{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuarios": usuarios})
}

// CriarFeedback registra feedback de gestor para um funcionário.
func (h *Handler) CriarFeedback(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FuncionarioID int64  `json:"funcionarioId"`
		GestorID      int64  `json:"gestorId"`
		Tipo          string `json:"tipo"`
		Mensagem      string `json:"mensagem"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	f, err := h.usuarios.CriarFeedback(r.Context(), usuario.CriarFeedbackInput{
		FuncionarioID: payload.FuncionarioID,
		GestorID:      payload.GestorID,
		Tipo:          payload.Tipo,
		Mensagem:      payload.Mensagem,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"feedback": f})
}

// ListarFeedbacks lista feedbacks, opcionalmente de um único funcionário.
func (h *Handler) ListarFeedbacks(w http.ResponseWriter, r *http.Request) {
	var funcionarioID *int64
	if idStr := strings.TrimSpace(r.URL.Query().Get("funcionarioId")); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "funcionarioId inválido", nil)
			return
		}
		funcionarioID = &id
	}

	feedbacks, err := h.usuarios.ListarFeedbacks(r.Context(), funcionarioID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if feedbacks == nil {
		feedbacks = []usuario.Feedback{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"feedbacks": feedbacks})
}

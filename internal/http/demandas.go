package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gestaodemandas/plataforma/internal/demanda"
)

// ListarDemandas lista demandas filtrando por status/solicitante/categoria/prioridade.
func (h *Handler) ListarDemandas(w http.ResponseWriter, r *http.Request) {
	filtro := demanda.Filtro{
		Status:     strings.TrimSpace(r.URL.Query().Get("status")),
		Categoria:  strings.TrimSpace(r.URL.Query().Get("categoria")),
		Prioridade: strings.TrimSpace(r.URL.Query().Get("prioridade")),
	}

	if idStr := strings.TrimSpace(r.URL.Query().Get("solicitanteId")); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "solicitanteId inválido", nil)
			return
		}
		filtro.SolicitanteID = &id
	}

	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			filtro.Limit = v
		}
	}
	if offsetStr := strings.TrimSpace(r.URL.Query().Get("offset")); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil {
			filtro.Offset = v
		}
	}

	demandas, err := h.demandas.Listar(r.Context(), filtro)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if demandas == nil {
		demandas = []demanda.Demanda{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demandas": demandas, "total": len(demandas)})
}

// CriarDemanda valida, normaliza e registra uma nova demanda.
func (h *Handler) CriarDemanda(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		demanda.Entrada
		UsuarioID *int64 `json:"usuarioId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	ator := payload.UsuarioID
	if ator == nil {
		ator = h.subjectID(r)
	}

	d, err := h.demandas.Criar(r.Context(), payload.Entrada, ator, clientIP(r))
	if err != nil {
		if errors.Is(err, demanda.ErrTagDuplicada) {
			WriteError(w, http.StatusConflict, err.Error(), nil)
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"demanda": d})
}

// BuscarDemanda devolve uma demanda pelo id.
func (h *Handler) BuscarDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := demandaID(w, r)
	if !ok {
		return
	}

	d, err := h.demandas.Buscar(r.Context(), id)
	if err != nil {
		if errors.Is(err, demanda.ErrNaoEncontrada) {
			WriteError(w, http.StatusNotFound, "demanda não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demanda": d})
}

// AtualizarDemanda aplica alteração parcial; campos omitidos preservam o valor atual.
func (h *Handler) AtualizarDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := demandaID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Tag                *string                `json:"tag"`
		Categoria          *string                `json:"categoria"`
		Prioridade         *string                `json:"prioridade"`
		Complexidade       *string                `json:"complexidade"`
		Nome               *string                `json:"nome"`
		Descricao          *string                `json:"descricao"`
		Local              *string                `json:"local"`
		Status             *string                `json:"status"`
		IsRotina           *demanda.BoolFlexivel  `json:"isRotina"`
		DiasSemana         *demanda.ListaInteiros `json:"diasSemana"`
		Atribuidos         *demanda.ListaTextos   `json:"atribuidos"`
		AnexosCriacao      *demanda.ListaTextos   `json:"anexosCriacao"`
		AnexosResolucao    *demanda.ListaTextos   `json:"anexosResolucao"`
		ComentarioGestor   *string                `json:"comentarioGestor"`
		ComentarioRejeicao *string                `json:"comentarioRejeicao"`
		DataLimite         *string                `json:"dataLimite"`
		UsuarioID          *int64                 `json:"usuarioId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	alt := demanda.Atualizacao{
		ID:                 id,
		Tag:                payload.Tag,
		Categoria:          payload.Categoria,
		Prioridade:         payload.Prioridade,
		Complexidade:       payload.Complexidade,
		Nome:               payload.Nome,
		Descricao:          payload.Descricao,
		Local:              payload.Local,
		Status:             payload.Status,
		ComentarioGestor:   payload.ComentarioGestor,
		ComentarioRejeicao: payload.ComentarioRejeicao,
	}

	if payload.IsRotina != nil {
		rotina := bool(*payload.IsRotina)
		alt.IsRotina = &rotina
	}
	if payload.DiasSemana != nil {
		dias := []int(*payload.DiasSemana)
		alt.DiasSemana = &dias
	}
	if payload.Atribuidos != nil {
		atribuidos := []string(*payload.Atribuidos)
		alt.Atribuidos = &atribuidos
	}
	if payload.AnexosCriacao != nil {
		anexos := []string(*payload.AnexosCriacao)
		alt.AnexosCriacao = &anexos
	}
	if payload.AnexosResolucao != nil {
		anexos := []string(*payload.AnexosResolucao)
		alt.AnexosResolucao = &anexos
	}
	if payload.DataLimite != nil {
		limite, err := demanda.ParseDataLimite(*payload.DataLimite)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "data limite inválida", nil)
			return
		}
		alt.DataLimite = &limite
	}

	alt.ModificadoPor = payload.UsuarioID
	if alt.ModificadoPor == nil {
		alt.ModificadoPor = h.subjectID(r)
	}

	d, err := h.demandas.Atualizar(r.Context(), alt, clientIP(r))
	if err != nil {
		if errors.Is(err, demanda.ErrNaoEncontrada) {
			WriteError(w, http.StatusNotFound, "demanda não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demanda": d})
}

// ExcluirDemanda remove a demanda após backup prévio.
func (h *Handler) ExcluirDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := demandaID(w, r)
	if !ok {
		return
	}

	removida, err := h.demandas.Excluir(r.Context(), id, h.subjectID(r), clientIP(r))
	if err != nil {
		if errors.Is(err, demanda.ErrNaoEncontrada) {
			WriteError(w, http.StatusNotFound, "demanda não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demanda": removida})
}

// EstatisticasDemandas agrega contagens por status e rotinas.
func (h *Handler) EstatisticasDemandas(w http.ResponseWriter, r *http.Request) {
	var desde time.Time
	if desdeStr := strings.TrimSpace(r.URL.Query().Get("desde")); desdeStr != "" {
		parsed, err := demanda.ParseDataLimite(desdeStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "data inicial inválida", nil)
			return
		}
		desde = parsed
	}

	stats, err := h.demandas.Estatisticas(r.Context(), desde)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"estatisticas": stats})
}

// PesquisarDemandas busca substring em nome, descrição, tag e categoria.
func (h *Handler) PesquisarDemandas(w http.ResponseWriter, r *http.Request) {
	termo := strings.TrimSpace(r.URL.Query().Get("q"))
	if termo == "" {
		WriteError(w, http.StatusBadRequest, "parâmetro q obrigatório", nil)
		return
	}

	limit := 0
	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}

	demandas, err := h.demandas.Pesquisar(r.Context(), termo, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if demandas == nil {
		demandas = []demanda.Demanda{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demandas": demandas, "total": len(demandas)})
}

func demandaID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "id inválido", nil)
		return 0, false
	}
	return id, true
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaodemandas/plataforma/internal/auditoria"
	"github.com/gestaodemandas/plataforma/internal/auth"
	"github.com/gestaodemandas/plataforma/internal/usuario"
)

const mensagemCredenciais = "credenciais inválidas"

// Login autentica por e-mail e senha. E-mail desconhecido e senha incorreta
// recebem exatamente a mesma resposta 401.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	u, err := h.usuarios.Autenticar(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		if errors.Is(err, usuario.ErrCredenciais) {
			WriteError(w, http.StatusUnauthorized, mensagemCredenciais, nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	h.auditar(auditoria.Entrada{
		Acao:       auditoria.AcaoAutenticacao,
		Tabela:     "usuarios",
		RegistroID: u.ID,
		UsuarioID:  &u.ID,
		EnderecoIP: clientIP(r),
	})

	accessToken, _, err := h.jwt.GenerateAccessToken(strconv.FormatInt(u.ID, 10), u.Papel)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	refreshRaw, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	if err := h.redis.Set(r.Context(), auth.RefreshRedisKey(refreshHash),
		strconv.FormatInt(u.ID, 10), h.cfg.JWTRefreshTTL).Err(); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"usuario":      u,
		"accessToken":  accessToken,
		"refreshToken": refreshRaw,
	})
}

// Refresh troca um refresh token válido por um novo par de tokens.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.RefreshToken) == "" {
		WriteError(w, http.StatusBadRequest, "refreshToken obrigatório", nil)
		return
	}

	chave := auth.RefreshRedisKey(auth.HashRefreshToken(payload.RefreshToken))
	idStr, err := h.redis.Get(r.Context(), chave).Result()
	if err != nil {
		WriteError(w, http.StatusUnauthorized, auth.ErrInvalidRefresh.Error(), nil)
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, auth.ErrInvalidRefresh.Error(), nil)
		return
	}

	u, err := h.usuarios.BuscarPorID(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, auth.ErrInvalidRefresh.Error(), nil)
		return
	}

	// rotação: o token antigo deixa de valer imediatamente
	h.redis.Del(r.Context(), chave)

	accessToken, _, err := h.jwt.GenerateAccessToken(idStr, u.Papel)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	refreshRaw, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	if err := h.redis.Set(r.Context(), auth.RefreshRedisKey(refreshHash), idStr, h.cfg.JWTRefreshTTL).Err(); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"accessToken":  accessToken,
		"refreshToken": refreshRaw,
	})
}

// ResetPassword aceita o pedido e apenas registra em log; nenhum efeito real.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	log.Info().Str("email", strings.TrimSpace(payload.Email)).Msg("pedido de reset de senha recebido")

	WriteJSON(w, http.StatusOK, map[string]any{
		"mensagem": "se o e-mail existir, instruções serão enviadas",
	})
}

// Register aceita o cadastro e apenas registra em log; o elenco de usuários
// é fixo nesta instalação.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome  string `json:"nome"`
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	log.Info().Str("nome", strings.TrimSpace(payload.Nome)).
		Str("email", strings.TrimSpace(payload.Email)).
		Time("em", time.Now()).Msg("pedido de cadastro recebido")

	WriteJSON(w, http.StatusAccepted, map[string]any{
		"mensagem": "cadastro recebido para análise",
	})
}

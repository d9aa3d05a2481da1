package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gestaodemandas/plataforma/internal/auth"
	"github.com/gestaodemandas/plataforma/internal/usuario"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyPapel   contextKey = "papel"
)

// Auth valida JWT de acesso e injeta identidade no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeEnvelopeError(w, http.StatusUnauthorized, "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeEnvelopeError(w, http.StatusUnauthorized, "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyPapel, claims.Papel)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetSubjectID converte o subject para id numérico, quando possível.
func GetSubjectID(ctx context.Context) *int64 {
	id, err := strconv.ParseInt(GetSubject(ctx), 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// GetPapel recupera o papel do contexto.
func GetPapel(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyPapel).(string)
	return val
}

// RequireGestor restringe a rota a usuários com papel de gestor.
func RequireGestor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(GetPapel(r.Context()), usuario.PapelGestor) {
			writeEnvelopeError(w, http.StatusForbidden, "acesso restrito a gestores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

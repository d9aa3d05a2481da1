package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Recover garante resposta sanitizada em caso de panic. Em produção a
// mensagem é genérica; fora dela o valor do panic é exposto para depuração.
// O hook opcional permite acionar um backup de emergência antes da resposta.
func Recover(producao bool, emergencia func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("panic recuperado")
					if emergencia != nil {
						emergencia()
					}
					mensagem := "erro interno"
					if !producao {
						mensagem = fmt.Sprintf("erro interno: %v", rec)
					}
					writeEnvelopeError(w, http.StatusInternalServerError, mensagem)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

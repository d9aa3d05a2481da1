package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gestaodemandas/plataforma/internal/auth"
	"github.com/gestaodemandas/plataforma/internal/usuario"
)

const segredoTeste = "segredo-de-teste-com-32-caracteres!"

func handlerEco(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(GetSubject(r.Context()) + "|" + GetPapel(r.Context())))
	})
}

func TestAuthSemToken(t *testing.T) {
	mgr := auth.NewJWTManager(segredoTeste, time.Minute)
	srv := Auth(mgr)(handlerEco(t))

	req := httptest.NewRequest(http.MethodGet, "/api/auditoria", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", rec.Code)
	}
}

func TestAuthTokenInvalido(t *testing.T) {
	mgr := auth.NewJWTManager(segredoTeste, time.Minute)
	srv := Auth(mgr)(handlerEco(t))

	req := httptest.NewRequest(http.MethodGet, "/api/auditoria", nil)
	req.Header.Set("Authorization", "Bearer nao-sou-um-jwt")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", rec.Code)
	}
}

func TestAuthInjetaIdentidade(t *testing.T) {
	mgr := auth.NewJWTManager(segredoTeste, time.Minute)
	token, _, err := mgr.GenerateAccessToken("2", usuario.PapelGestor)
	if err != nil {
		t.Fatalf("geração do token falhou: %v", err)
	}

	srv := Auth(mgr)(handlerEco(t))

	req := httptest.NewRequest(http.MethodGet, "/api/auditoria", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperado 200", rec.Code)
	}
	if got := rec.Body.String(); got != "2|gestor" {
		t.Errorf("identidade no contexto = %q", got)
	}
}

func TestRequireGestorBloqueiaFuncionario(t *testing.T) {
	mgr := auth.NewJWTManager(segredoTeste, time.Minute)
	token, _, err := mgr.GenerateAccessToken("1", usuario.PapelFuncionario)
	if err != nil {
		t.Fatalf("geração do token falhou: %v", err)
	}

	srv := Auth(mgr)(RequireGestor(handlerEco(t)))

	req := httptest.NewRequest(http.MethodGet, "/api/auditoria", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, esperado 403", rec.Code)
	}
}

func TestGetSubjectIDNaoNumerico(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetSubjectID(req.Context()); id != nil {
		t.Errorf("subject ausente deveria resultar em nil, veio %d", *id)
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func handlerQueEntraEmPanico() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("ponteiro nulo simulado")
	})
}

func respostaDeErro(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("resposta não é JSON: %v", err)
	}
	if body.Success {
		t.Error("success deveria ser false após panic")
	}
	return body.Error
}

func TestRecoverProducaoMensagemGenerica(t *testing.T) {
	srv := Recover(true, nil)(handlerQueEntraEmPanico())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, esperado 500", rec.Code)
	}
	if msg := respostaDeErro(t, rec); msg != "erro interno" {
		t.Errorf("produção deveria esconder o detalhe do panic, veio %q", msg)
	}
}

func TestRecoverDesenvolvimentoExpoeDetalhe(t *testing.T) {
	srv := Recover(false, nil)(handlerQueEntraEmPanico())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, esperado 500", rec.Code)
	}
	if msg := respostaDeErro(t, rec); !strings.Contains(msg, "ponteiro nulo simulado") {
		t.Errorf("fora de produção a mensagem deveria carregar o detalhe, veio %q", msg)
	}
}

func TestRecoverAcionaHookDeEmergencia(t *testing.T) {
	acionado := false
	srv := Recover(true, func() { acionado = true })(handlerQueEntraEmPanico())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !acionado {
		t.Error("hook de emergência não foi acionado")
	}
}

func TestRecoverNaoInterfereSemPanic(t *testing.T) {
	srv := Recover(true, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, esperado 204", rec.Code)
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gestaodemandas/plataforma/internal/demanda"
)

type armazenamentoStub struct {
	criada       *demanda.Demanda
	criarErr     error
	buscada      *demanda.Demanda
	buscarErr    error
	listadas     []demanda.Demanda
	ultimoFiltro demanda.Filtro
	ultimoTermo  string
}

func (a *armazenamentoStub) Criar(ctx context.Context, e demanda.Entrada, dataLimite *time.Time, criadoPor *int64) (*demanda.Demanda, error) {
	if a.criarErr != nil {
		return nil, a.criarErr
	}
	return a.criada, nil
}

func (a *armazenamentoStub) Buscar(ctx context.Context, id int64) (*demanda.Demanda, error) {
	if a.buscarErr != nil {
		return nil, a.buscarErr
	}
	return a.buscada, nil
}

func (a *armazenamentoStub) Listar(ctx context.Context, filtro demanda.Filtro) ([]demanda.Demanda, error) {
	a.ultimoFiltro = filtro
	return a.listadas, nil
}

func (a *armazenamentoStub) Atualizar(ctx context.Context, alt demanda.Atualizacao) (*demanda.Demanda, error) {
	return a.buscada, nil
}

func (a *armazenamentoStub) Excluir(ctx context.Context, id int64) (*demanda.Demanda, error) {
	return a.buscada, nil
}

func (a *armazenamentoStub) Pesquisar(ctx context.Context, termo string, limit int) ([]demanda.Demanda, error) {
	a.ultimoTermo = termo
	return a.listadas, nil
}

func (a *armazenamentoStub) Estatisticas(ctx context.Context, desde time.Time) (*demanda.Estatisticas, error) {
	return &demanda.Estatisticas{}, nil
}

func novoRouterDemandas(repo demanda.Armazenamento) (*Handler, *chi.Mux) {
	h := &Handler{demandas: demanda.NewService(repo, nil, nil, zerolog.Nop())}

	r := chi.NewRouter()
	r.Get("/api/demandas", h.ListarDemandas)
	r.Post("/api/demandas", h.CriarDemanda)
	r.Get("/api/demandas/search", h.PesquisarDemandas)
	r.Get("/api/demandas/{id}", h.BuscarDemanda)
	r.Put("/api/demandas/{id}", h.AtualizarDemanda)
	r.Delete("/api/demandas/{id}", h.ExcluirDemanda)

	return h, r
}

func decodificar(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("resposta não é JSON: %v", err)
	}
	return body
}

func corpoCriacaoValido() string {
	limite := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	return `{
		"nome": "Trocar lâmpadas do salão",
		"categoria": "manutencao",
		"prioridade": "Importante",
		"complexidade": "Fácil",
		"descricao": "Trocar todas as lâmpadas queimadas do salão",
		"local": "Salão principal",
		"dataLimite": "` + limite + `"
	}`
}

func TestCriarDemandaSucesso(t *testing.T) {
	repo := &armazenamentoStub{criada: &demanda.Demanda{ID: 1, Tag: "DMD-1-abc"}}
	_, router := novoRouterDemandas(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/demandas", strings.NewReader(corpoCriacaoValido()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, esperado 201: %s", rec.Code, rec.Body.String())
	}

	body := decodificar(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, esperado true", body["success"])
	}
	if _, ok := body["demanda"]; !ok {
		t.Error("resposta sem a demanda criada")
	}
}

func TestCriarDemandaInvalida(t *testing.T) {
	_, router := novoRouterDemandas(&armazenamentoStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/demandas", strings.NewReader(`{"nome":"ab"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, esperado 400", rec.Code)
	}

	body := decodificar(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v, esperado false", body["success"])
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Error("resposta de erro sem mensagem")
	}
}

func TestCriarDemandaTagDuplicada(t *testing.T) {
	repo := &armazenamentoStub{criarErr: demanda.ErrTagDuplicada}
	_, router := novoRouterDemandas(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/demandas", strings.NewReader(corpoCriacaoValido()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, esperado 409", rec.Code)
	}
}

func TestCriarDemandaColecoesMalformadas(t *testing.T) {
	repo := &armazenamentoStub{criada: &demanda.Demanda{ID: 2}}
	_, router := novoRouterDemandas(repo)

	limite := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	corpo := `{
		"nome": "Organizar estoque",
		"categoria": "logistica",
		"prioridade": "Relevante",
		"complexidade": "Média",
		"descricao": "Reorganizar prateleiras do estoque central",
		"local": "Estoque",
		"dataLimite": "` + limite + `",
		"diasSemana": "isso não é um array",
		"atribuidos": 42,
		"isRotina": "sim"
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/demandas", strings.NewReader(corpo))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// coleções malformadas degradam para vazio, nunca rejeitam a requisição
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, esperado 201: %s", rec.Code, rec.Body.String())
	}
}

func TestBuscarDemandaNaoEncontrada(t *testing.T) {
	repo := &armazenamentoStub{buscarErr: demanda.ErrNaoEncontrada}
	_, router := novoRouterDemandas(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/demandas/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, esperado 404", rec.Code)
	}
}

func TestBuscarDemandaIDInvalido(t *testing.T) {
	_, router := novoRouterDemandas(&armazenamentoStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/demandas/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, esperado 400", rec.Code)
	}
}

func TestListarDemandasComFiltro(t *testing.T) {
	repo := &armazenamentoStub{listadas: []demanda.Demanda{{ID: 1}, {ID: 2}}}
	_, router := novoRouterDemandas(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/demandas?status=pendente&solicitanteId=3&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperado 200", rec.Code)
	}

	if repo.ultimoFiltro.Status != "pendente" {
		t.Errorf("status do filtro = %q", repo.ultimoFiltro.Status)
	}
	if repo.ultimoFiltro.SolicitanteID == nil || *repo.ultimoFiltro.SolicitanteID != 3 {
		t.Error("solicitanteId do filtro não propagado")
	}
	if repo.ultimoFiltro.Limit != 5 {
		t.Errorf("limit do filtro = %d", repo.ultimoFiltro.Limit)
	}

	body := decodificar(t, rec)
	if body["total"] != float64(2) {
		t.Errorf("total = %v, esperado 2", body["total"])
	}
}

func TestPesquisarDemandasSemTermo(t *testing.T) {
	_, router := novoRouterDemandas(&armazenamentoStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/demandas/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, esperado 400", rec.Code)
	}
}

func TestPesquisarDemandas(t *testing.T) {
	repo := &armazenamentoStub{listadas: []demanda.Demanda{{ID: 1}}}
	_, router := novoRouterDemandas(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/demandas/search?q=l%C3%A2mpada", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperado 200", rec.Code)
	}
	if repo.ultimoTermo != "lâmpada" {
		t.Errorf("termo = %q", repo.ultimoTermo)
	}
}

func TestAtualizarDemandaDataLimiteInvalida(t *testing.T) {
	repo := &armazenamentoStub{buscada: &demanda.Demanda{ID: 1}}
	_, router := novoRouterDemandas(repo)

	req := httptest.NewRequest(http.MethodPut, "/api/demandas/1", strings.NewReader(`{"dataLimite":"31/12/2026"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, esperado 400", rec.Code)
	}
}

func TestExcluirDemanda(t *testing.T) {
	repo := &armazenamentoStub{buscada: &demanda.Demanda{ID: 8}}
	_, router := novoRouterDemandas(repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/demandas/8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperado 200", rec.Code)
	}

	body := decodificar(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, esperado true", body["success"])
	}
}

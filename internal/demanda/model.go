package demanda

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNaoEncontrada      = errors.New("demanda não encontrada")
	ErrTagDuplicada       = errors.New("tag já utilizada")
	ErrPrioridadeInvalida = errors.New("prioridade inválida")
)

const (
	PrioridadeImportante = "Importante"
	PrioridadeMedia      = "Média"
	PrioridadeRelevante  = "Relevante"

	ComplexidadeFacil   = "Fácil"
	ComplexidadeMedia   = "Média"
	ComplexidadeDificil = "Difícil"

	StatusPendente         = "pendente"
	StatusAprovada         = "aprovada"
	StatusRejeitada        = "rejeitada"
	StatusAguardandoGestor = "aguardando-aprovacao-gestor"
	StatusConcluida        = "concluida"
)

var (
	prioridadesValidas = map[string]struct{}{
		PrioridadeImportante: {},
		PrioridadeMedia:      {},
		PrioridadeRelevante:  {},
	}
	complexidadesValidas = map[string]struct{}{
		ComplexidadeFacil:   {},
		ComplexidadeMedia:   {},
		ComplexidadeDificil: {},
	}
)

// Demanda representa uma unidade de trabalho registrada por um funcionário.
type Demanda struct {
	ID                 int64      `json:"id"`
	Tag                string     `json:"tag,omitempty"`
	SolicitanteID      int64      `json:"solicitanteId"`
	SolicitanteNome    string     `json:"solicitanteNome"`
	SolicitanteEmail   string     `json:"solicitanteEmail"`
	Categoria          string     `json:"categoria"`
	Prioridade         string     `json:"prioridade"`
	Complexidade       string     `json:"complexidade"`
	Nome               string     `json:"nome"`
	Descricao          string     `json:"descricao"`
	Local              string     `json:"local"`
	Status             string     `json:"status"`
	IsRotina           bool       `json:"isRotina"`
	DiasSemana         []int      `json:"diasSemana"`
	Atribuidos         []string   `json:"atribuidos"`
	AnexosCriacao      []string   `json:"anexosCriacao"`
	AnexosResolucao    []string   `json:"anexosResolucao"`
	ComentarioGestor   *string    `json:"comentarioGestor,omitempty"`
	ComentarioRejeicao *string    `json:"comentarioRejeicao,omitempty"`
	CriadaEm           time.Time  `json:"criadaEm"`
	DataLimite         *time.Time `json:"dataLimite,omitempty"`
	AtualizadaEm       time.Time  `json:"atualizadaEm"`
	ConcluidaEm        *time.Time `json:"concluidaEm,omitempty"`
	CriadoPor          *int64     `json:"criadoPor,omitempty"`
	ModificadoPor      *int64     `json:"modificadoPor,omitempty"`
}

// Entrada é o formato aceito na criação/restauração. Os campos de coleção
// usam tipos flexíveis que degradam conteúdo malformado para vazio.
type Entrada struct {
	ID                 int64         `json:"id,omitempty"`
	Tag                string        `json:"tag"`
	SolicitanteID      int64         `json:"solicitanteId"`
	SolicitanteNome    string        `json:"solicitanteNome"`
	SolicitanteEmail   string        `json:"solicitanteEmail"`
	Categoria          string        `json:"categoria"`
	Prioridade         string        `json:"prioridade"`
	Complexidade       string        `json:"complexidade"`
	Nome               string        `json:"nome"`
	Descricao          string        `json:"descricao"`
	Local              string        `json:"local"`
	Status             string        `json:"status"`
	IsRotina           BoolFlexivel  `json:"isRotina"`
	DiasSemana         ListaInteiros `json:"diasSemana"`
	Atribuidos         ListaTextos   `json:"atribuidos"`
	AnexosCriacao      ListaTextos   `json:"anexosCriacao"`
	AnexosResolucao    ListaTextos   `json:"anexosResolucao"`
	ComentarioGestor   *string       `json:"comentarioGestor"`
	ComentarioRejeicao *string       `json:"comentarioRejeicao"`
	CriadaEm           string        `json:"criadaEm"`
	DataLimite         string        `json:"dataLimite"`
	ConcluidaEm        string        `json:"concluidaEm"`
	CriadoPor          *int64        `json:"criadoPor"`
	ModificadoPor      *int64        `json:"modificadoPor"`
}

// Atualizacao descreve alteração parcial; campos nil preservam o valor atual.
type Atualizacao struct {
	ID                 int64
	Tag                *string
	Categoria          *string
	Prioridade         *string
	Complexidade       *string
	Nome               *string
	Descricao          *string
	Local              *string
	Status             *string
	IsRotina           *bool
	DiasSemana         *[]int
	Atribuidos         *[]string
	AnexosCriacao      *[]string
	AnexosResolucao    *[]string
	ComentarioGestor   *string
	ComentarioRejeicao *string
	DataLimite         *time.Time
	ConcluidaEm        *time.Time
	ModificadoPor      *int64
}

// Filtro restringe a listagem de demandas.
type Filtro struct {
	Status        string
	SolicitanteID *int64
	Categoria     string
	Prioridade    string
	Limit         int
	Offset        int
}

// Estatisticas consolida contagens por status e rotinas.
type Estatisticas struct {
	Total     int64            `json:"total"`
	PorStatus map[string]int64 `json:"porStatus"`
	Rotinas   int64            `json:"rotinas"`
}

const (
	nomeSolicitantePadrao  = "Solicitante não informado"
	emailSolicitantePadrao = "nao-informado@interno.local"
)

// Normalizar aplica defaults e materializa coleções ausentes. É idempotente:
// aplicar duas vezes produz o mesmo valor.
func Normalizar(e Entrada) Entrada {
	if strings.TrimSpace(e.Status) == "" {
		e.Status = StatusPendente
	}
	if strings.TrimSpace(e.CriadaEm) == "" {
		e.CriadaEm = time.Now().Format(time.RFC3339)
	}
	if e.SolicitanteID == 0 {
		e.SolicitanteID = 1
	}
	if strings.TrimSpace(e.SolicitanteNome) == "" {
		e.SolicitanteNome = nomeSolicitantePadrao
	}
	if strings.TrimSpace(e.SolicitanteEmail) == "" {
		e.SolicitanteEmail = emailSolicitantePadrao
	}
	if e.DiasSemana == nil {
		e.DiasSemana = ListaInteiros{}
	}
	if e.Atribuidos == nil {
		e.Atribuidos = ListaTextos{}
	}
	if e.AnexosCriacao == nil {
		e.AnexosCriacao = ListaTextos{}
	}
	if e.AnexosResolucao == nil {
		e.AnexosResolucao = ListaTextos{}
	}
	return e
}

// ValidarCriacao aplica as regras do fluxo de criação. A primeira violação
// interrompe com uma única mensagem.
func ValidarCriacao(e Entrada) error {
	if len(strings.TrimSpace(e.Nome)) < 3 {
		return errors.New("nome deve ter pelo menos 3 caracteres")
	}
	if strings.TrimSpace(e.Categoria) == "" {
		return errors.New("categoria obrigatória")
	}
	if !PrioridadeValida(e.Prioridade) {
		return errors.New("prioridade deve ser Importante, Média ou Relevante")
	}
	if !ComplexidadeValida(e.Complexidade) {
		return errors.New("complexidade deve ser Fácil, Média ou Difícil")
	}
	if len(strings.TrimSpace(e.Descricao)) < 10 {
		return errors.New("descrição deve ter pelo menos 10 caracteres")
	}
	if strings.TrimSpace(e.Local) == "" {
		return errors.New("local obrigatório")
	}
	limite, err := ParseDataLimite(e.DataLimite)
	if err != nil {
		return errors.New("data limite inválida")
	}
	hoje := InicioDoDia(time.Now())
	if limite.Before(hoje) {
		return errors.New("data limite não pode estar no passado")
	}
	return nil
}

// PrioridadeValida confere o enum de prioridade.
func PrioridadeValida(p string) bool {
	_, ok := prioridadesValidas[strings.TrimSpace(p)]
	return ok
}

// ComplexidadeValida confere o enum de complexidade.
func ComplexidadeValida(c string) bool {
	_, ok := complexidadesValidas[strings.TrimSpace(c)]
	return ok
}

// ParseDataLimite aceita data de calendário (AAAA-MM-DD) ou RFC3339.
func ParseDataLimite(valor string) (time.Time, error) {
	valor = strings.TrimSpace(valor)
	if valor == "" {
		return time.Time{}, errors.New("data limite obrigatória")
	}
	if t, err := time.ParseInLocation("2006-01-02", valor, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, valor); err == nil {
		return t.In(time.Local), nil
	}
	return time.Time{}, errors.New("data limite inválida")
}

// InicioDoDia trunca para meia-noite no fuso local do servidor.
func InicioDoDia(t time.Time) time.Time {
	ano, mes, dia := t.Local().Date()
	return time.Date(ano, mes, dia, 0, 0, 0, 0, time.Local)
}

// GerarTag produz identificador humano único o suficiente para uma
// instalação de instância única.
func GerarTag(agora time.Time) string {
	sufixo := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("DMD-%d-%s", agora.UnixMilli(), sufixo)
}

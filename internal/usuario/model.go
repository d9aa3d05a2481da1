package usuario

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNaoEncontrado = errors.New("usuário não encontrado")
	ErrCredenciais   = errors.New("credenciais inválidas")
	ErrTipoFeedback  = errors.New("tipo de feedback inválido")
)

const (
	PapelFuncionario = "funcionario"
	PapelGestor      = "gestor"

	FeedbackPositivo    = "positivo"
	FeedbackConstrutivo = "construtivo"
	FeedbackNegativo    = "negativo"

	// GestorPadraoID é o autor assumido quando o feedback não informa gestor.
	GestorPadraoID int64 = 2
)

var tiposFeedbackValidos = map[string]struct{}{
	FeedbackPositivo:    {},
	FeedbackConstrutivo: {},
	FeedbackNegativo:    {},
}

// Usuario representa um membro da equipe. O hash de senha nunca é serializado.
type Usuario struct {
	ID         int64    `json:"id"`
	Nome       string   `json:"nome"`
	Email      string   `json:"email"`
	SenhaHash  string   `json:"-"`
	Nivel      string   `json:"nivel"`
	Pontos     int      `json:"pontos"`
	Conquistas []string `json:"conquistas"`
	Papel      string   `json:"papel"`
}

// Feedback é um retorno de gestor sobre um funcionário; somente inserção.
type Feedback struct {
	ID            int64     `json:"id"`
	FuncionarioID int64     `json:"funcionarioId"`
	GestorID      int64     `json:"gestorId"`
	Tipo          string    `json:"tipo"`
	Mensagem      string    `json:"mensagem"`
	CriadoEm      time.Time `json:"criadoEm"`
}

// CriarFeedbackInput encapsula os campos aceitos na criação.
type CriarFeedbackInput struct {
	FuncionarioID int64
	GestorID      int64
	Tipo          string
	Mensagem      string
}

// TipoFeedbackValido confere o enum de tipo.
func TipoFeedbackValido(tipo string) bool {
	_, ok := tiposFeedbackValidos[strings.ToLower(strings.TrimSpace(tipo))]
	return ok
}

package usuario

import (
	"context"
	"errors"
	"strings"

	"github.com/gestaodemandas/plataforma/internal/auth"
)

// Repositorio abstrai o acesso a usuários/feedbacks para permitir stubs.
type Repositorio interface {
	Listar(ctx context.Context) ([]Usuario, error)
	BuscarPorEmail(ctx context.Context, email string) (*Usuario, error)
	BuscarPorID(ctx context.Context, id int64) (*Usuario, error)
	CriarFeedback(ctx context.Context, input CriarFeedbackInput) (*Feedback, error)
	ListarFeedbacks(ctx context.Context, funcionarioID *int64) ([]Feedback, error)
}

// Service reúne autenticação e regras de feedback.
type Service struct {
	repo Repositorio
}

// NewService cria uma nova instância do serviço.
func NewService(repo Repositorio) *Service {
	return &Service{repo: repo}
}

// hashFantasma mantém o custo de verificação estável quando o e-mail não
// existe, evitando enumeração por diferença de tempo de resposta.
var hashFantasma, _ = auth.Hash("senha-fantasma-nunca-usada")

// Autenticar valida e-mail e senha. E-mail desconhecido e senha incorreta
// produzem o mesmo erro genérico.
func (s *Service) Autenticar(ctx context.Context, email, senha string) (*Usuario, error) {
	u, err := s.repo.BuscarPorEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNaoEncontrado) {
			_, _ = auth.Verify(senha, hashFantasma)
			return nil, ErrCredenciais
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, u.SenhaHash)
	if err != nil || !ok {
		return nil, ErrCredenciais
	}

	return u, nil
}

// Listar devolve o elenco de usuários.
func (s *Service) Listar(ctx context.Context) ([]Usuario, error) {
	return s.repo.Listar(ctx)
}

// BuscarPorID localiza usuário pelo id.
func (s *Service) BuscarPorID(ctx context.Context, id int64) (*Usuario, error) {
	return s.repo.BuscarPorID(ctx, id)
}

// CriarFeedback valida e registra um feedback de gestor.
func (s *Service) CriarFeedback(ctx context.Context, input CriarFeedbackInput) (*Feedback, error) {
	if input.FuncionarioID <= 0 {
		return nil, errors.New("funcionarioId obrigatório")
	}
	if strings.TrimSpace(input.Mensagem) == "" {
		return nil, errors.New("mensagem obrigatória")
	}
	if !TipoFeedbackValido(input.Tipo) {
		return nil, ErrTipoFeedback
	}
	if input.GestorID <= 0 {
		input.GestorID = GestorPadraoID
	}

	return s.repo.CriarFeedback(ctx, input)
}

// ListarFeedbacks lista feedbacks, opcionalmente de um funcionário.
func (s *Service) ListarFeedbacks(ctx context.Context, funcionarioID *int64) ([]Feedback, error) {
	return s.repo.ListarFeedbacks(ctx, funcionarioID)
}

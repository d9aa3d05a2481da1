package demanda

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaodemandas/plataforma/internal/auditoria"
)

const tabelaDemandas = "demandas"

// Armazenamento abstrai o repositório para permitir stubs em teste.
type Armazenamento interface {
	Criar(ctx context.Context, e Entrada, dataLimite *time.Time, criadoPor *int64) (*Demanda, error)
	Buscar(ctx context.Context, id int64) (*Demanda, error)
	Listar(ctx context.Context, filtro Filtro) ([]Demanda, error)
	Atualizar(ctx context.Context, alt Atualizacao) (*Demanda, error)
	Excluir(ctx context.Context, id int64) (*Demanda, error)
	Pesquisar(ctx context.Context, termo string, limit int) ([]Demanda, error)
	Estatisticas(ctx context.Context, desde time.Time) (*Estatisticas, error)
}

// Auditor registra eventos sem jamais falhar o fluxo principal.
type Auditor interface {
	Registrar(e auditoria.Entrada)
}

// Exportador dispara backups automáticos e sob demanda.
type Exportador interface {
	Disparar(motivo string)
	Exportar(ctx context.Context, motivo string) (string, error)
}

// Service reúne as regras de negócio das demandas.
type Service struct {
	repo       Armazenamento
	auditor    Auditor
	exportador Exportador
	logger     zerolog.Logger
}

// NewService cria uma nova instância do serviço.
func NewService(repo Armazenamento, auditor Auditor, exportador Exportador, logger zerolog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, exportador: exportador, logger: logger}
}

// Criar valida, normaliza e insere uma nova demanda.
func (s *Service) Criar(ctx context.Context, e Entrada, atorID *int64, ip string) (*Demanda, error) {
	if err := ValidarCriacao(e); err != nil {
		return nil, err
	}

	e = Normalizar(e)
	if strings.TrimSpace(e.Tag) == "" {
		e.Tag = GerarTag(time.Now())
	}

	limite, err := ParseDataLimite(e.DataLimite)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.Criar(ctx, e, &limite, atorID)
	if err != nil {
		return nil, err
	}

	s.auditar(auditoria.Entrada{
		Acao:       auditoria.AcaoCriacao,
		Tabela:     tabelaDemandas,
		RegistroID: d.ID,
		ValorNovo:  d,
		UsuarioID:  atorID,
		EnderecoIP: ip,
	})

	return d, nil
}

// Buscar recupera uma demanda pelo id.
func (s *Service) Buscar(ctx context.Context, id int64) (*Demanda, error) {
	return s.repo.Buscar(ctx, id)
}

// Listar aplica o filtro informado.
func (s *Service) Listar(ctx context.Context, filtro Filtro) ([]Demanda, error) {
	return s.repo.Listar(ctx, filtro)
}

// Atualizar aplica alteração parcial, audita e dispara backup quando o
// status transita para aprovada ou rejeitada.
func (s *Service) Atualizar(ctx context.Context, alt Atualizacao, ip string) (*Demanda, error) {
	anterior, err := s.repo.Buscar(ctx, alt.ID)
	if err != nil {
		return nil, err
	}

	if alt.Status != nil {
		novoStatus := strings.TrimSpace(*alt.Status)
		if novoStatus == StatusConcluida && anterior.ConcluidaEm == nil && alt.ConcluidaEm == nil {
			agora := time.Now()
			alt.ConcluidaEm = &agora
		}
	}

	atual, err := s.repo.Atualizar(ctx, alt)
	if err != nil {
		return nil, err
	}

	s.auditar(auditoria.Entrada{
		Acao:          auditoria.AcaoAtualizacao,
		Tabela:        tabelaDemandas,
		RegistroID:    atual.ID,
		ValorAnterior: anterior,
		ValorNovo:     atual,
		UsuarioID:     alt.ModificadoPor,
		EnderecoIP:    ip,
	})

	if s.exportador != nil && anterior.Status != atual.Status {
		switch atual.Status {
		case StatusAprovada:
			s.exportador.Disparar("aprovacao")
		case StatusRejeitada:
			s.exportador.Disparar("rejeicao")
		}
	}

	return atual, nil
}

// Excluir remove a demanda com backup prévio e trilha de auditoria.
func (s *Service) Excluir(ctx context.Context, id int64, atorID *int64, ip string) (*Demanda, error) {
	if _, err := s.repo.Buscar(ctx, id); err != nil {
		return nil, err
	}

	if s.exportador != nil {
		if _, err := s.exportador.Exportar(ctx, "pre-exclusao"); err != nil {
			s.logger.Error().Err(err).Int64("demanda", id).Msg("backup pré-exclusão falhou")
		}
	}

	removida, err := s.repo.Excluir(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditar(auditoria.Entrada{
		Acao:          auditoria.AcaoExclusao,
		Tabela:        tabelaDemandas,
		RegistroID:    removida.ID,
		ValorAnterior: removida,
		UsuarioID:     atorID,
		EnderecoIP:    ip,
	})

	return removida, nil
}

// Pesquisar busca substring em nome, descrição, tag e categoria.
func (s *Service) Pesquisar(ctx context.Context, termo string, limit int) ([]Demanda, error) {
	return s.repo.Pesquisar(ctx, termo, limit)
}

// Estatisticas agrega contagens desde a data informada.
func (s *Service) Estatisticas(ctx context.Context, desde time.Time) (*Estatisticas, error) {
	return s.repo.Estatisticas(ctx, desde)
}

func (s *Service) auditar(e auditoria.Entrada) {
	if s.auditor != nil {
		s.auditor.Registrar(e)
	}
}

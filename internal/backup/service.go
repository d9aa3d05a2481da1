package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaodemandas/plataforma/internal/config"
	"github.com/gestaodemandas/plataforma/internal/demanda"
	"github.com/gestaodemandas/plataforma/internal/storage"
)

const prefixoAutomatico = "backup-" + MotivoAutomatico + "-"

// FonteDemandas abstrai as operações de tabela usadas pelo exportador.
type FonteDemandas interface {
	ListarTodas(ctx context.Context) ([]demanda.Demanda, error)
	UpsertPorID(ctx context.Context, d demanda.Demanda) error
	AjustarSequencia(ctx context.Context) error
}

// Service exporta a tabela de demandas em JSON: por timer, sob demanda e em
// transições relevantes. Falhas nunca chegam à requisição originadora.
type Service struct {
	fonte    FonteDemandas
	cfg      config.BackupConfig
	uploader storage.Uploader
	logger   zerolog.Logger
	gatilhos chan string

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService cria o exportador e garante o diretório de destino.
func NewService(fonte FonteDemandas, cfg config.BackupConfig, uploader storage.Uploader, logger zerolog.Logger) (*Service, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("diretório de backup: %w", err)
	}

	return &Service{
		fonte:    fonte,
		cfg:      cfg,
		uploader: uploader,
		logger:   logger,
		gatilhos: make(chan string, 8),
		done:     make(chan struct{}),
	}, nil
}

// Start inicia os timers de exportação e retenção. Safe para chamar
// múltiplas vezes.
func (s *Service) Start(parent context.Context) {
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.cancel = cancel
		go s.loop(ctx)
	})
}

// Stop encerra os timers.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
	}
}

// Disparar agenda uma exportação assíncrona com o motivo informado.
func (s *Service) Disparar(motivo string) {
	select {
	case s.gatilhos <- motivo:
	default:
		s.logger.Warn().Str("motivo", motivo).Msg("backup: gatilho descartado, fila cheia")
	}
}

// Exportar grava um arquivo com a tabela inteira e devolve o nome gerado.
func (s *Service) Exportar(ctx context.Context, motivo string) (string, error) {
	arquivo, err := s.Snapshot(ctx, motivo)
	if err != nil {
		return "", err
	}

	conteudo, err := json.MarshalIndent(arquivo, "", "  ")
	if err != nil {
		return "", err
	}

	nome := fmt.Sprintf("backup-%s-%s.json", motivo, arquivo.Data.Format("20060102-150405"))
	caminho := filepath.Join(s.cfg.Dir, nome)
	if err := os.WriteFile(caminho, conteudo, 0o644); err != nil {
		return "", err
	}

	s.logger.Info().Str("arquivo", nome).Int("demandas", arquivo.TotalDemandas).Msg("backup gravado")

	if s.uploader != nil {
		if _, err := s.uploader.Upload(ctx, storage.UploadInput{
			Key:         "backups/" + nome,
			Body:        conteudo,
			ContentType: "application/json",
		}); err != nil {
			s.logger.Error().Err(err).Str("arquivo", nome).Msg("backup: cópia externa falhou")
		}
	}

	return nome, nil
}

// Snapshot monta o conteúdo da exportação sem gravar em disco.
func (s *Service) Snapshot(ctx context.Context, motivo string) (*Arquivo, error) {
	demandas, err := s.fonte.ListarTodas(ctx)
	if err != nil {
		return nil, err
	}
	if demandas == nil {
		demandas = []demanda.Demanda{}
	}

	return &Arquivo{
		Versao:        FormatoVersao,
		Data:          time.Now(),
		Tipo:          motivo,
		TotalDemandas: len(demandas),
		Demandas:      demandas,
	}, nil
}

// Restaurar aplica upsert por id, tolerando falhas parciais. A resposta só
// é montada depois que todas as escritas terminam.
func (s *Service) Restaurar(ctx context.Context, entradas []json.RawMessage) ResultadoRestauracao {
	resultado := ResultadoRestauracao{Erros: []string{}}

	for i, bruto := range entradas {
		if err := s.restaurarEntrada(ctx, bruto); err != nil {
			resultado.Falhas++
			if len(resultado.Erros) < 10 {
				resultado.Erros = append(resultado.Erros, fmt.Sprintf("registro %d: %v", i, err))
			}
			continue
		}
		resultado.Sucessos++
	}

	if resultado.Sucessos > 0 {
		if err := s.fonte.AjustarSequencia(ctx); err != nil {
			s.logger.Error().Err(err).Msg("restore: ajuste de sequência falhou")
		}
	}

	return resultado
}

func (s *Service) restaurarEntrada(ctx context.Context, bruto json.RawMessage) error {
	var e demanda.Entrada
	if err := json.Unmarshal(bruto, &e); err != nil {
		return fmt.Errorf("JSON inválido: %w", err)
	}
	if e.ID <= 0 {
		return fmt.Errorf("id ausente ou inválido")
	}

	e = demanda.Normalizar(e)

	criadaEm := time.Now()
	if t, err := time.Parse(time.RFC3339, e.CriadaEm); err == nil {
		criadaEm = t
	}

	var dataLimite *time.Time
	if strings.TrimSpace(e.DataLimite) != "" {
		if t, err := demanda.ParseDataLimite(e.DataLimite); err == nil {
			dataLimite = &t
		}
	}

	var concluidaEm *time.Time
	if strings.TrimSpace(e.ConcluidaEm) != "" {
		if t, err := time.Parse(time.RFC3339, e.ConcluidaEm); err == nil {
			concluidaEm = &t
		}
	}

	d := demanda.Demanda{
		ID:                 e.ID,
		Tag:                strings.TrimSpace(e.Tag),
		SolicitanteID:      e.SolicitanteID,
		SolicitanteNome:    e.SolicitanteNome,
		SolicitanteEmail:   e.SolicitanteEmail,
		Categoria:          e.Categoria,
		Prioridade:         e.Prioridade,
		Complexidade:       e.Complexidade,
		Nome:               e.Nome,
		Descricao:          e.Descricao,
		Local:              e.Local,
		Status:             e.Status,
		IsRotina:           bool(e.IsRotina),
		DiasSemana:         e.DiasSemana,
		Atribuidos:         e.Atribuidos,
		AnexosCriacao:      e.AnexosCriacao,
		AnexosResolucao:    e.AnexosResolucao,
		ComentarioGestor:   e.ComentarioGestor,
		ComentarioRejeicao: e.ComentarioRejeicao,
		CriadaEm:           criadaEm,
		DataLimite:         dataLimite,
		ConcluidaEm:        concluidaEm,
		CriadoPor:          e.CriadoPor,
		ModificadoPor:      e.ModificadoPor,
	}

	return s.fonte.UpsertPorID(ctx, d)
}

// Retencao mantém apenas os N arquivos automáticos mais recentes. Backups
// manuais, de desligamento e de emergência ficam fora da varredura.
func (s *Service) Retencao() {
	entradas, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		s.logger.Error().Err(err).Msg("retenção: leitura do diretório falhou")
		return
	}

	var automaticos []string
	for _, entrada := range entradas {
		nome := entrada.Name()
		if !entrada.IsDir() && strings.HasPrefix(nome, prefixoAutomatico) && strings.HasSuffix(nome, ".json") {
			automaticos = append(automaticos, nome)
		}
	}

	if len(automaticos) <= s.cfg.RetentionMax {
		return
	}

	// nome carrega o timestamp: ordem lexicográfica ≈ cronológica
	sort.Sort(sort.Reverse(sort.StringSlice(automaticos)))

	for _, nome := range automaticos[s.cfg.RetentionMax:] {
		if err := os.Remove(filepath.Join(s.cfg.Dir, nome)); err != nil {
			s.logger.Error().Err(err).Str("arquivo", nome).Msg("retenção: remoção falhou")
			continue
		}
		s.logger.Info().Str("arquivo", nome).Msg("retenção: backup antigo removido")
	}
}

func (s *Service) loop(ctx context.Context) {
	defer close(s.done)

	exportTicker := time.NewTicker(s.cfg.Interval)
	defer exportTicker.Stop()
	retencaoTicker := time.NewTicker(s.cfg.RetentionInterval)
	defer retencaoTicker.Stop()

	s.logger.Info().Dur("intervalo", s.cfg.Interval).Msg("backup: timers iniciados")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("backup: timers encerrados")
			return
		case <-exportTicker.C:
			s.exportarSeguro(MotivoAutomatico)
		case <-retencaoTicker.C:
			s.Retencao()
		case motivo := <-s.gatilhos:
			s.exportarSeguro(motivo)
		}
	}
}

func (s *Service) exportarSeguro(motivo string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.Exportar(ctx, motivo); err != nil {
		s.logger.Error().Err(err).Str("motivo", motivo).Msg("backup: exportação falhou")
	}
}

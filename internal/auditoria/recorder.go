package auditoria

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type inseridor interface {
	Inserir(ctx context.Context, e Entrada) error
}

// Recorder despacha eventos de auditoria de forma assíncrona. Falhas são
// apenas logadas: a trilha nunca derruba a requisição que a originou.
type Recorder struct {
	repo   inseridor
	logger zerolog.Logger
	fila   chan Entrada

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRecorder cria o gravador com fila limitada.
func NewRecorder(repo inseridor, logger zerolog.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
		fila:   make(chan Entrada, 256),
		done:   make(chan struct{}),
	}
}

// Start inicia o worker. Safe para chamar múltiplas vezes.
func (r *Recorder) Start(parent context.Context) {
	r.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		r.cancel = cancel
		go r.loop(ctx)
	})
}

// Stop drena a fila pendente e encerra o worker.
func (r *Recorder) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		r.logger.Warn().Msg("auditoria: drenagem expirou")
	}
}

// Registrar enfileira o evento sem bloquear o chamador. Com a fila cheia o
// evento é descartado e logado.
func (r *Recorder) Registrar(e Entrada) {
	select {
	case r.fila <- e:
	default:
		r.logger.Warn().Str("acao", e.Acao).Str("tabela", e.Tabela).
			Int64("registro", e.RegistroID).Msg("auditoria: fila cheia, evento descartado")
	}
}

func (r *Recorder) loop(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case e := <-r.fila:
			r.gravar(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-r.fila:
					r.gravar(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) gravar(e Entrada) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.repo.Inserir(ctx, e); err != nil {
		r.logger.Error().Err(err).Str("acao", e.Acao).Str("tabela", e.Tabela).
			Int64("registro", e.RegistroID).Msg("auditoria: falha ao gravar evento")
	}
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gestaodemandas/plataforma/internal/auditoria"
	"github.com/gestaodemandas/plataforma/internal/auth"
	"github.com/gestaodemandas/plataforma/internal/backup"
	"github.com/gestaodemandas/plataforma/internal/config"
	"github.com/gestaodemandas/plataforma/internal/demanda"
	httpmiddleware "github.com/gestaodemandas/plataforma/internal/http/middleware"
	"github.com/gestaodemandas/plataforma/internal/usuario"
)

// Contador expõe a contagem de demandas usada pelo health check.
type Contador interface {
	Contar(ctx context.Context) (int64, error)
}

// Auditor registra eventos da trilha sem bloquear o handler.
type Auditor interface {
	Registrar(e auditoria.Entrada)
}

// Handler concentra as dependências dos endpoints.
type Handler struct {
	cfg      *config.Config
	pool     *pgxpool.Pool
	redis    *redis.Client
	jwt      *auth.JWTManager
	demandas *demanda.Service
	usuarios *usuario.Service
	backups  *backup.Service
	auditor  Auditor
	trilha   *auditoria.Repository
	contagem Contador
	inicio   time.Time

	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado com toda a superfície HTTP.
func NewRouter(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	jwtManager *auth.JWTManager,
	demandaService *demanda.Service,
	usuarioService *usuario.Service,
	backupService *backup.Service,
	auditor *auditoria.Recorder,
	trilha *auditoria.Repository,
	contagem Contador,
) http.Handler {
	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		jwt:           jwtManager,
		demandas:      demandaService,
		usuarios:      usuarioService,
		backups:       backupService,
		auditor:       auditor,
		trilha:        trilha,
		contagem:      contagem,
		inicio:        time.Now(),
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover(cfg.IsProduction(), func() {
		backupService.Disparar(backup.MotivoEmergencia)
	}))
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/api", func(api chi.Router) {
			api.Route("/auth", func(a chi.Router) {
				a.Post("/login", h.Login)
				a.Post("/refresh", h.Refresh)
				a.Post("/reset-password", h.ResetPassword)
				a.Post("/register", h.Register)
			})

			api.Route("/demandas", func(d chi.Router) {
				d.Get("/", h.ListarDemandas)
				d.Post("/", h.CriarDemanda)
				d.Get("/estatisticas", h.EstatisticasDemandas)
				d.Get("/search", h.PesquisarDemandas)
				d.Get("/{id}", h.BuscarDemanda)
				d.Put("/{id}", h.AtualizarDemanda)
				d.Delete("/{id}", h.ExcluirDemanda)
			})

			api.Get("/usuarios", h.ListarUsuarios)

			api.Route("/feedbacks", func(f chi.Router) {
				f.Get("/", h.ListarFeedbacks)
				f.Post("/", h.CriarFeedback)
			})

			api.Post("/backup", h.CriarBackup)
			api.Get("/backup", h.BaixarBackup)
			api.Post("/restore", h.Restaurar)
		})
	})

	r.Group(func(gestor chi.Router) {
		gestor.Use(httpmiddleware.Auth(jwtManager))
		gestor.Use(httpmiddleware.UserRateLimit(h.authLimiter))
		gestor.Use(httpmiddleware.RequireGestor)

		gestor.Get("/api/auditoria", h.ListarAuditoria)
	})

	return r
}

func (h *Handler) subjectID(r *http.Request) *int64 {
	return httpmiddleware.GetSubjectID(r.Context())
}

func (h *Handler) auditar(e auditoria.Entrada) {
	if h.auditor != nil {
		h.auditor.Registrar(e)
	}
}

func clientIP(r *http.Request) string {
	return r.RemoteAddr
}

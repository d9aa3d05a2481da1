package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaodemandas/plataforma/internal/auditoria"
	"github.com/gestaodemandas/plataforma/internal/auth"
	"github.com/gestaodemandas/plataforma/internal/backup"
	"github.com/gestaodemandas/plataforma/internal/config"
	"github.com/gestaodemandas/plataforma/internal/db"
	"github.com/gestaodemandas/plataforma/internal/demanda"
	internalhttp "github.com/gestaodemandas/plataforma/internal/http"
	"github.com/gestaodemandas/plataforma/internal/storage"
	"github.com/gestaodemandas/plataforma/internal/usuario"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if err := db.Bootstrap(ctx, pool); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	usuarioRepo := usuario.NewRepository(pool)
	if err := usuarioRepo.SeedPadrao(ctx); err != nil {
		return fmt.Errorf("seed de usuários: %w", err)
	}

	demandaRepo := demanda.NewRepository(pool)
	auditoriaRepo := auditoria.NewRepository(pool)

	recorder := auditoria.NewRecorder(auditoriaRepo, log.With().Str("component", "auditoria").Logger())
	recorder.Start(ctx)
	defer recorder.Stop()

	uploader, err := montarUploader(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	backupService, err := backup.NewService(demandaRepo, cfg.Backup, uploader, log.With().Str("component", "backup").Logger())
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	backupService.Start(ctx)
	defer backupService.Stop()

	demandaService := demanda.NewService(demandaRepo, recorder, backupService, log.With().Str("component", "demandas").Logger())
	usuarioService := usuario.NewService(usuarioRepo)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	handler := internalhttp.NewRouter(cfg, pool, redisClient, jwtManager,
		demandaService, usuarioService, backupService, recorder, auditoriaRepo, demandaRepo)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
		// SIGINT ganha um backup de despedida; SIGTERM encerra direto.
		if sig == syscall.SIGINT {
			exportCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if _, err := backupService.Exportar(exportCtx, backup.MotivoDesligar); err != nil {
				log.Error().Err(err).Msg("backup de desligamento falhou")
			}
			cancel()
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func montarUploader(cfg config.StorageConfig) (storage.Uploader, error) {
	if cfg.Provider != "s3" {
		return nil, nil
	}
	return storage.NewS3Uploader(storage.S3Config{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		PublicDomain: cfg.S3PublicURL,
	})
}

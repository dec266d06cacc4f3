package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"eventapi/config"
	"eventapi/db"
	"eventapi/images"
	"eventapi/metrics"
	"eventapi/routes"
	"eventapi/services"
	"eventapi/utils"
)

func serveCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := setupLogger(os.Stdout, cfg.Env, cfg.Log.Level)
	log.Info("starting eventapi", slog.String("env", cfg.Env), slog.String("version", Version))

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	events, closeStore, err := db.OpenEventStore(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer closeStore()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// cache and quota fail open, so a cold redis is not fatal
			log.Warn("redis unreachable at startup", slog.String("addr", cfg.Redis.Addr), utils.ErrAttr(err))
		}
	} else {
		log.Info("redis disabled; no response cache or registration quota")
	}

	store, err := openImageStore(ctx, cfg.Upload)
	if err != nil {
		return err
	}

	passwordHash := cfg.Admin.PasswordHash
	if passwordHash == "" && cfg.Admin.Password != "" {
		if passwordHash, err = utils.HashPassword(cfg.Admin.Password); err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
	}
	if passwordHash == "" {
		log.Warn("no admin password configured; admin login is disabled")
	}

	m := metrics.New()
	opts := routes.Options{
		Log:             log,
		BasePath:        cfg.HTTP.BasePath,
		Admin:           services.NewEventAdmin(log, events, m),
		Registrar:       services.NewRegistrar(log, events, m),
		Images:          images.NewIntake(log, store, cfg.Upload.MaxBytes),
		Redis:           rdb,
		CacheTTL:        cfg.Redis.CacheTTL,
		Limits:          cfg.Limits,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		Metrics:         m,
		ImagePublicPath: cfg.Upload.PublicPath,
		Auth: routes.AdminAuth{
			PasswordHash: passwordHash,
			Secret:       []byte(cfg.Admin.JWTSecret),
			TokenTTL:     cfg.Admin.TokenTTL,
		},
	}
	if cfg.Upload.Backend == "disk" {
		opts.ImageDir = cfg.Upload.Dir
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           routes.NewServer(ctx, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("stopping eventapi")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", utils.ErrAttr(err))
		return err
	}
	log.Info("eventapi stopped")
	return nil
}

func openImageStore(ctx context.Context, cfg config.UploadConfig) (images.Store, error) {
	if cfg.Backend == "s3" {
		s, err := images.NewS3Store(ctx, images.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 image store: %w", err)
		}
		return s, nil
	}
	s, err := images.NewDiskStore(cfg.Dir, cfg.PublicPath)
	if err != nil {
		return nil, fmt.Errorf("open disk image store: %w", err)
	}
	return s, nil
}

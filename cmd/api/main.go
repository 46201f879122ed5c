package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/compliance-gateway/internal/application"
	appanalysis "github.com/bryanwahyu/compliance-gateway/internal/application/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/config"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/auth"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/compliance-gateway/internal/infra/db/mysql"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/db/postgres"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/engine/httpengine"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/engine/openai"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/httpserver"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/metrics"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/storage"
	"github.com/bryanwahyu/compliance-gateway/internal/middleware"
)

var cfgPath string

func main() {
	defaultPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}

	rootCmd := &cobra.Command{
		Use:   "compliance-gateway",
		Short: "Gateway analisis kepatuhan dokumen kegiatan",
		RunE:  runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultPath,
		"Path to config.yaml (default from CONFIG_PATH)")

	rootCmd.AddCommand(
		&cobra.Command{Use: "serve", Short: "Start the HTTP API", RunE: runServe},
		&cobra.Command{Use: "migrate", Short: "Create database tables", RunE: runMigrate},
		tokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup baca .env + config lalu siapkan logger
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config load: %w", err)
	}

	logger := newLogger(cfg)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn().Err(envErr).Msg("failed to load .env file")
	}
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return cfg, logger, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", "compliance-gateway").Logger()
}

// openDatabase return repo + failure repo sesuai driver. db nil untuk driver memory.
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, domain.Repository, domain.FailureRepository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return db, mysqlp.NewAnalysisRepository(db), mysqlp.NewFailureRepository(db), nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		return db, postgres.NewAnalysisRepository(db), postgres.NewFailureRepository(db), nil
	default:
		return nil, memory.NewAnalysisRepository(), &memory.FailureRepository{}, nil
	}
}

type checkedStore interface {
	domain.BlobStore
	Check(ctx context.Context) error
}

func openStorage(ctx context.Context, cfg *config.Config) (checkedStore, error) {
	if cfg.Storage.Driver == "local" {
		return storage.NewLocal(cfg.Storage.LocalPath)
	}
	return storage.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
}

func openEngine(cfg *config.Config, clock application.Clock) (domain.Engine, error) {
	if cfg.Engine.Provider == "openai" {
		return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, clock), nil
	}
	return httpengine.New(httpengine.Options{
		BaseURL:           cfg.Engine.BaseURL,
		AnalyzePath:       cfg.Engine.AnalyzePath,
		Timeout:           cfg.Engine.Timeout,
		OfflineSignatures: cfg.Engine.OfflineSignatures,
		Clock:             clock,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repo, failures, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}

	clock := application.SystemClock{}
	eng, err := openEngine(cfg, clock)
	if err != nil {
		return fmt.Errorf("engine init: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	svc := &appanalysis.Service{
		Intake: &appanalysis.Intake{
			Store:    store,
			Clock:    clock,
			MaxBytes: cfg.Server.MaxUploadBytes,
		},
		Engine:       eng,
		Repo:         repo,
		Failures:     failures,
		Clock:        clock,
		Metrics:      m,
		WriteTimeout: cfg.Database.WriteTimeout,
	}

	checkers := map[string]middleware.HealthChecker{
		"storage": middleware.CheckFunc(store.Check),
	}
	if db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	handler := httpserver.NewRouter(httpserver.Options{
		Service:        svc,
		Auth:           auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Logger:         &logger,
		Metrics:        m,
		MetricsHandler: promhttp.Handler(),
		HealthCheckers: checkers,
		ReadyCheckers:  checkers,
		RateLimiter:    middleware.NewRateLimiter(ctx, cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate),
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := httpserver.NewServer(addr, handler, cfg.Engine.Timeout)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("database", cfg.Database.Driver).
			Str("storage", cfg.Storage.Driver).
			Str("engine", cfg.Engine.Provider).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	db, _, _, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if db == nil {
		logger.Info().Msg("memory driver, nothing to migrate")
		return nil
	}
	defer db.Close()

	if cfg.Database.Driver == "postgres" {
		err = postgres.Migrate(ctx, db)
	} else {
		err = mysqlp.Migrate(ctx, db)
	}
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("migration done")
	return nil
}

// tokenCmd cetak access token untuk testing lokal
func tokenCmd() *cobra.Command {
	var (
		userID        int64
		institutionID int64
		role          string
		ttl           time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			svc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
			tok, err := svc.GenerateAccessToken(domain.Principal{
				UserID:        userID,
				InstitutionID: institutionID,
				Role:          role,
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 1, "user id")
	cmd.Flags().Int64Var(&institutionID, "institution", 0, "institution id")
	cmd.Flags().StringVar(&role, "role", domain.RoleAdmin, "role name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

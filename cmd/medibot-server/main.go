package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medibot/medibot/internal/config"
	"github.com/medibot/medibot/internal/domain/chat"
	"github.com/medibot/medibot/internal/domain/disease"
	"github.com/medibot/medibot/internal/domain/plan"
	"github.com/medibot/medibot/internal/domain/usage"
	"github.com/medibot/medibot/internal/domain/user"
	"github.com/medibot/medibot/internal/platform/db"
	"github.com/medibot/medibot/internal/platform/i18n"
	"github.com/medibot/medibot/internal/platform/middleware"
	"github.com/medibot/medibot/internal/platform/seed"
	"github.com/medibot/medibot/internal/platform/session"
	"github.com/medibot/medibot/internal/platform/telemetry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medibot-server",
		Short: "MediBot symptom checker API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MediBot API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load disease corpus and subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataDir == "" {
				dataDir = cfg.DataDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			seeder := seed.New(disease.NewRepoPG(pool), plan.NewRepoPG(pool), logger)
			if err := seeder.Run(ctx, dataDir); err != nil {
				return err
			}
			fmt.Println("Seed data loaded successfully.")
			return nil
		},
	}
	cmd.Flags().String("data-dir", "", "Directory containing diseases.json and plans.json")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Session secret: required in production, generated in development.
	sessionSecret := []byte(cfg.SessionSecret)
	if len(sessionSecret) == 0 {
		sessionSecret = make([]byte, 32)
		if _, err := crypto_rand.Read(sessionSecret); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate session secret")
		}
		logger.Warn().Msg("SESSION_SECRET not set; using a random secret, sessions will not survive restarts")
	}
	sessionMgr := session.NewManager(sessionSecret, cfg.SessionTTLDuration())

	// Localization catalog
	catalog := i18n.Load(cfg.LanguagesFile, logger)

	// Telemetry
	tel := telemetry.NewProvider(telemetry.Config{
		ServiceName: "medibot-server",
		Environment: cfg.Env,
	})

	// Repositories
	diseaseRepo := disease.NewRepoPG(pool)
	planRepo := plan.NewRepoPG(pool)
	userRepo := user.NewRepoPG(pool)
	usageRepo := usage.NewRepoPG(pool)
	sessionRepo := chat.NewSessionRepoPG(pool)
	messageRepo := chat.NewMessageRepoPG(pool)

	// Services
	diseaseSvc := disease.NewService(diseaseRepo)
	planSvc := plan.NewService(planRepo)
	userSvc := user.NewService(userRepo, planRepo)
	usageSvc := usage.NewService(usageRepo)
	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.InTx(ctx, pool, fn)
	}
	chatSvc := chat.NewService(userSvc, usageSvc, sessionRepo, messageRepo, diseaseRepo, catalog, tel, txRunner, logger)

	// Build the symptom matcher from the disease table.
	if err := chatSvc.ReloadMatcher(ctx); err != nil {
		logger.Error().Err(err).Msg("initial matcher build failed; corpus may be empty")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Timeout(30 * time.Second))
	e.Use(middleware.BodyLimit(64 * 1024))
	e.Use(tel.MetricsMiddleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(sessionMgr.Middleware())

	// API group with rate limiting. Redis keeps the limit consistent across
	// instances; without REDIS_URL each instance enforces its own bucket.
	api := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		api.Use(middleware.RedisRateLimit(rdb, int(cfg.RateLimitRPS), time.Second, logger))
		logger.Info().Msg("redis rate limiting enabled")
	} else {
		api.Use(middleware.RateLimit(rateLimitCfg))
	}

	// Domain routes
	disease.NewHandler(diseaseSvc).RegisterRoutes(api)
	plan.NewHandler(planSvc).RegisterRoutes(api)
	user.NewHandler(userSvc).RegisterRoutes(api)
	chat.NewHandler(chatSvc).RegisterRoutes(api)

	// Corpus reload endpoint: rebuilds the matcher after disease edits.
	api.POST("/diseases/reload", func(c echo.Context) error {
		if err := chatSvc.ReloadMatcher(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "matcher reload failed")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "success"})
	})

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", tel.PrometheusHandler())

	// Keep pool gauges fresh for the metrics endpoint.
	poolStatsCtx, poolStatsCancel := context.WithCancel(ctx)
	defer poolStatsCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-poolStatsCtx.Done():
				return
			case <-ticker.C:
				stats := db.GetPoolStats(pool)
				tel.SetDBPoolActive(int64(stats.AcquiredConns))
				tel.SetDBPoolIdle(int64(stats.IdleConns))
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

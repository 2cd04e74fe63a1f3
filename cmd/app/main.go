// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/config"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/adapter"
	pg "github.com/Shadow6402/ASTT-Esport/internal/infra/db/postgres"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/logging"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/mailer"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/metrics"
	red "github.com/Shadow6402/ASTT-Esport/internal/infra/redis"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/sched"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/spreadsheet"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/web"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/worker"
	"github.com/Shadow6402/ASTT-Esport/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed auth)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Redis (stats cache + login rate limiting; degraded when down) ----
	var statsCache usecase.DashboardCache
	var loginLimiter usecase.LoginRateLimiter
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, running without cache and rate limiting")
	} else {
		defer redisClient.Close()
		statsCache = red.NewStatsCache(redisClient, cfg.Redis.TTL)
		loginLimiter = red.NewRateLimiter(redisClient)
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	batchRepo := pg.NewCodeBatchRepo(pool)
	codeRepo := pg.NewAccessCodeRepo(pool)
	membershipRepo := pg.NewMembershipRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Mailer ----
	var mail adapter.Mailer
	if cfg.SMTP.Enabled && !cfg.Runtime.Dev {
		smtp, err := mailer.NewSMTPMailer(&cfg.SMTP, logger)
		if err != nil {
			log.Fatalf("smtp: %v", err)
		}
		mail = smtp
	} else {
		mail = mailer.NewNoopMailer(logger)
	}

	// ---- Background job pool ----
	jobPool := worker.NewPool(0, logger)
	jobPool.Start(ctx)
	defer jobPool.Stop()

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, codeRepo, batchRepo, txManager, loginLimiter, logger)
	importUC := usecase.NewImportUseCase(spreadsheet.NewXLSXReader(), batchRepo, codeRepo, txManager, statsCache, logger)
	assignUC := usecase.NewAssignUseCase(userRepo, batchRepo, codeRepo, txManager, statsCache, logger)
	codeUC := usecase.NewCodeUseCase(userRepo, batchRepo, codeRepo, txManager, statsCache, logger)
	batchUC := usecase.NewBatchUseCase(batchRepo, codeRepo, txManager, statsCache, logger)
	membershipUC := usecase.NewMembershipUseCase(membershipRepo, userRepo, statsCache, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, membershipRepo, codeRepo, statsCache, logger)
	notifyUC := usecase.NewNotificationUseCase(userRepo, batchRepo, codeRepo, membershipRepo, mail, logger)

	// ---- HTTP server ----
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		logger.Warn().Msg("auth.jwt_secret not set; falling back to dev secret (INSECURE)")
		jwtSecret = "astt-dev-secret-do-not-use-in-prod"
	}
	authMgr := web.NewAuthManager(jwtSecret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.TokenTTL)
	server := web.NewServer(userUC, importUC, assignUC, codeUC, batchUC,
		membershipUC, statsUC, notifyUC, authMgr, jobPool, logger)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Background workers ----
	expiryWorker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, membershipUC, logger)
	go func() { _ = expiryWorker.Run(ctx) }()

	reminderWindow := time.Duration(cfg.Scheduler.ReminderWindowDays) * 24 * time.Hour
	reminderWorker := sched.NewReminderWorker(cfg.Scheduler.ExpiryInterval, reminderWindow, notifyUC, logger)
	go func() { _ = reminderWorker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	cancel()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/syncup/internal/cache"
	memcache "github.com/dropDatabas3/syncup/internal/cache/memory"
	rediscache "github.com/dropDatabas3/syncup/internal/cache/redis"
	"github.com/dropDatabas3/syncup/internal/config"
	"github.com/dropDatabas3/syncup/internal/email"
	authctrl "github.com/dropDatabas3/syncup/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/syncup/internal/http/controllers/health"
	mw "github.com/dropDatabas3/syncup/internal/http/middlewares"
	"github.com/dropDatabas3/syncup/internal/http/router"
	authsvc "github.com/dropDatabas3/syncup/internal/http/services/auth"
	"github.com/dropDatabas3/syncup/internal/metrics"
	"github.com/dropDatabas3/syncup/internal/observability/logger"
	"github.com/dropDatabas3/syncup/internal/rate"
	"github.com/dropDatabas3/syncup/internal/store"
	memstore "github.com/dropDatabas3/syncup/internal/store/memory"
	pgstore "github.com/dropDatabas3/syncup/internal/store/pg"
	"github.com/dropDatabas3/syncup/internal/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env si existe; en prod las vars vienen del entorno
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "ruta del YAML de configuración")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "syncup",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if err := metrics.Register(nil); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── Store ───
	var repo store.Repository
	if cfg.Storage.DSN != "" {
		pg, err := pgstore.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		repo = pg
		log.Info("postgres store ready")
	} else {
		repo = memstore.New()
		log.Warn("no storage.dsn configured, using in-memory store")
	}
	defer repo.Close()

	// ─── Cache y rate limiter ───
	var (
		userCache cache.Cache
		limiter   rate.Limiter
	)
	rateWindow := config.MustDuration(cfg.Rate.MagicSend.Window, "10m")
	switch cfg.Cache.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		userCache = rediscache.New(client)
		if cfg.Rate.Enabled {
			limiter = rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix+"rl:", cfg.Rate.MagicSend.Limit, rateWindow)
		}
		log.Info("redis cache ready", logger.String("addr", cfg.Cache.Redis.Addr))
	default:
		userCache = memcache.New(config.MustDuration(cfg.Cache.Memory.DefaultTTL, "2m"))
		if cfg.Rate.Enabled {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MagicSend.Limit, rateWindow)
		}
	}

	// ─── Email ───
	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = &email.SMTPSender{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			From:               cfg.SMTP.From,
			User:               cfg.SMTP.User,
			Pass:               cfg.SMTP.Pass,
			TLSMode:            cfg.SMTP.TLSMode,
			InsecureSkipVerify: cfg.SMTP.SkipCerts,
		}
	} else {
		sender = email.LogSender{}
		log.Warn("no smtp.host configured, emails go to the log")
	}
	mailer := &email.MagicLinkMailer{
		Sender:      sender,
		AppName:     "Syncup",
		FrontendURL: cfg.URLs.Frontend,
	}

	// ─── Servicios y controllers ───
	tokenCfg := token.Config{Secret: cfg.Auth.Secret, Algorithm: cfg.Auth.Algorithm}
	sessionTTL := config.MustDuration(cfg.Auth.AccessTTL, "24h")

	magicSvc := authsvc.NewMagicLinkService(authsvc.MagicLinkDeps{
		Repo:       repo,
		Mailer:     mailer,
		Token:      tokenCfg,
		LinkTTL:    config.MustDuration(cfg.Auth.MagicLinkTTL, "15m"),
		SessionTTL: sessionTTL,
		BackendURL: cfg.URLs.Backend,
	})
	identitySvc := authsvc.NewIdentityService(repo, userCache, config.MustDuration(cfg.Cache.Memory.DefaultTTL, "2m"))

	handler := router.New(router.Deps{
		Auth: mw.NewAuthConfig(tokenCfg, cfg.Auth.Session.CookieName),
		MagicLink: authctrl.NewMagicLinkController(magicSvc, authctrl.SessionCookie{
			Name:     cfg.Auth.Session.CookieName,
			Domain:   cfg.Auth.Session.Domain,
			SameSite: cfg.Auth.Session.SameSite,
			Secure:   cfg.Auth.Session.Secure,
		}, cfg.URLs.Frontend),
		Me:          authctrl.NewMeController(identitySvc),
		Health:      healthctrl.NewController(repo),
		SendLimiter: limiter,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.MustDuration(cfg.Server.ReadTimeout, "10s"),
		WriteTimeout: config.MustDuration(cfg.Server.WriteTimeout, "30s"),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

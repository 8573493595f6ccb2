package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/studyboard/internal/config"
	"github.com/adanyl0v/studyboard/internal/delivery/http/v1"
	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/generator"
	"github.com/adanyl0v/studyboard/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP
	bus := events.NewBus()

	router := gin.New()
	router.ContextWithFallback = true
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router, bus)

	stopScheduler := mustStartScheduler(bus)

	server := &http.Server{
		Addr:              net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:           router,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter, bus *events.Bus) {
	cfg := config.Global()

	tasks := services.NewTaskService(Logger("tasks"), globalPostgresPool)
	laps := services.NewLapService(Logger("laps"), globalPostgresPool, bus)
	preferences := services.NewPreferenceService(Logger("preferences"), globalPostgresPool)

	gen, err := generator.New(Logger("generator"), generator.Options{
		APIURL:    cfg.Generator.APIURL,
		APIKey:    cfg.Generator.APIKey,
		Model:     cfg.Generator.Model,
		MaxTokens: cfg.Generator.MaxTokens,
		Timeout:   cfg.Generator.Timeout,
	})
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to init task generator")
		panic(err)
	}
	if !gen.Enabled() {
		globalLogger.Warn().Msg("task generation disabled, set GENERATOR_API_KEY and GENERATOR_MODEL")
	}

	v1Handler := v1.New(Logger("http"), v1.Services{
		Auth: services.NewAuthService(Logger("auth"), globalPostgresPool, services.AuthOptions{
			JWTIssuer:          cfg.JWT.Issuer,
			JWTSigningKey:      []byte(cfg.JWT.SigningKey),
			JWTAccessTokenTTL:  cfg.JWT.AccessTokenTTL,
			JWTRefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
			AuthCodeTTL:        cfg.Auth.CodeTTL,
		}),
		Sessions:    services.NewSessionService(Logger("sessions"), globalPostgresPool),
		Tasks:       tasks,
		Laps:        laps,
		Workspaces:  services.NewWorkspaceService(Logger("workspaces"), globalPostgresPool),
		Preferences: preferences,
		Board:       services.NewBoardService(Logger("board"), tasks, preferences),
		Stats:       services.NewStatsService(Logger("stats"), laps, tasks, cfg.Stats.MonthlyGoalMinutes),
	}, v1.Options{
		Generator:   gen,
		Events:      bus,
		Pinger:      globalPostgresPool,
		RedirectURL: cfg.Auth.RedirectURL,
	})

	v1.RegisterRoutes(router, v1Handler)
}

// Command server runs the SF6 bot: it opens the SQLite store, wires the
// command dispatcher to both chat gateways, starts the match cleanup loop,
// and serves the webhook endpoints until interrupted.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AsilenceBTF/sf6bot/internal/bot"
	"github.com/AsilenceBTF/sf6bot/internal/command"
	"github.com/AsilenceBTF/sf6bot/internal/config"
	"github.com/AsilenceBTF/sf6bot/internal/gateway"
	httpapi "github.com/AsilenceBTF/sf6bot/internal/http"
	"github.com/AsilenceBTF/sf6bot/internal/observability"
	"github.com/AsilenceBTF/sf6bot/internal/repo"
	"github.com/AsilenceBTF/sf6bot/internal/services"
	"github.com/AsilenceBTF/sf6bot/internal/sysutil"
)

// version is stamped by the build (-ldflags "-X main.version=...").
var version = "dev"

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	tokens := &gateway.AppTokenSource{
		AppID:     cfg.QQ.AppID,
		AppSecret: cfg.QQ.AppSecret,
		AuthURL:   cfg.QQ.AuthURL,
	}
	replies := &gateway.Router{
		QQ:      &gateway.QQSender{APIURL: cfg.QQ.APIURL, Tokens: tokens},
		OneBot:  &gateway.OneBotSender{URL: cfg.OneBot.URL, Token: cfg.OneBot.Token},
		Timeout: cfg.SendTimeout,
		Log:     log.With().Str("component", "gateway").Logger(),
	}

	dispatcher := &bot.Dispatcher{
		Parser:  command.Parser{BotUserID: cfg.OneBot.BotUserID},
		Query:   &services.QueryService{DB: db},
		Match:   &services.MatchService{DB: db},
		Replies: replies,
		Log:     log.With().Str("component", "dispatcher").Logger(),
	}

	cleanup := &services.CleanupService{
		DB:       db,
		Interval: cfg.CleanupInterval,
		Log:      log.With().Str("component", "cleanup").Logger(),
	}
	cleanup.Start(ctx)

	engine := gin.New()
	httpapi.RegisterRoutes(engine, dispatcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

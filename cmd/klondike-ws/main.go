package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"

	"klondike/internal/app"
	"klondike/internal/config"
	"klondike/internal/ports/ws"
)

func main() {
	configPath := flag.String("config", "data/klondike_config.json", "game config file; missing means defaults")
	addr := flag.String("addr", "", "listen address, overrides listen_addr from the config")
	idle := flag.Duration("idle", 30*time.Minute, "drop tables nobody touched for this long")
	flag.Parse()

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	if err := config.LoadGameConfig(*configPath); err != nil {
		logger.Warn("using default config", "path", *configPath, "err", err)
	}
	cfg := config.GetGameConfig()

	var tokens *app.TokenService
	if secret := cfg.GetTokenSecret(); secret != "" {
		tokens = app.NewTokenService(secret, cfg.GetTokenIssuer(), cfg.GetTokenTTL())
	} else {
		logger.Warn("no token_secret configured, tables cannot be resumed")
	}

	listen := cfg.GetListenAddr()
	if *addr != "" {
		listen = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := ws.NewServer(cfg, tokens, logger)
	go s.RunSweeper(ctx, time.Minute, *idle)

	srv := &http.Server{Addr: listen, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	logger.Info("klondike table server listening", "addr", listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

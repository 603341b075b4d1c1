package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	html "github.com/gofiber/template/html/v2"

	"beanbrew/internal/config"
	"beanbrew/internal/http/handlers"
	applog "beanbrew/internal/log"
	"beanbrew/internal/repos"
	"beanbrew/internal/services"
)

func main() {
	if err := run(); err != nil {
		applog.Error(nil, "server.exit", err, nil)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closer, err := applog.Configure(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		// keep running with the defaults
		applog.Error(nil, "log.configure", err, map[string]any{"file": cfg.LogFile, "level": cfg.LogLevel})
	}
	if closer != nil {
		defer closer.Close()
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := repos.Seed(ctx, db, repos.SeedOptions{Demo: cfg.SeedDemo, AdminPassword: cfg.AdminPassword}); err != nil {
		return err
	}
	store := repos.NewStore(db)

	// Auth wiring
	authSvc := &services.AuthService{Users: store.Users}

	// Templates & app
	engine := html.New(cfg.TemplateDir, ".html")
	deps := handlers.NewDeps(store, loc, authSvc)
	app := handlers.NewApp(deps, handlers.AppOptions{Views: engine})

	errc := make(chan error, 1)
	go func() {
		applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	applog.Info(nil, "server.shutdown", nil)
	return app.ShutdownWithTimeout(10 * time.Second)
}

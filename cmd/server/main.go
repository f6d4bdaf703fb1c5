package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	httpadapter "resume-pdf-service/internal/adapter/http"
	repo "resume-pdf-service/internal/adapter/repository"
	"resume-pdf-service/internal/browser"
	"resume-pdf-service/internal/config"
	"resume-pdf-service/internal/infrastructure/migration"
	"resume-pdf-service/internal/usecase"
	infra "resume-pdf-service/pkg/infrastructure"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"
)

func main() {
	envFile := flag.String("env-file", "", "path to a .env file (default: ./.env if present)")
	port := flag.String("port", "", "listen port (overrides PORT)")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("failed to load env file %s: %v", *envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	ctx := context.Background()

	// infra setup
	pool, err := infra.NewRendersPool(ctx, cfg.RendersDatabaseURL)
	if err != nil {
		log.Printf("warning: render history DB not available: %v", err)
	}
	if pool != nil {
		if err := migration.RunMigrations(ctx, pool); err != nil {
			log.Printf("warning: migrations failed: %v", err)
		}
	}

	style, err := usecase.LoadPageStyle(cfg.PageStylePath)
	if err != nil {
		log.Fatalf("page style config: %v", err)
	}

	browsers := browser.NewManager(cfg)
	renderer := usecase.NewRenderer(browsers, cfg, style)
	history := repo.NewRendersRepo(pool)

	app := fiber.New(fiber.Config{
		AppName: "resume-pdf-service",
	})

	h := httpadapter.NewHandler(renderer, browsers, history)
	app.Get("/health", h.Health)
	app.Get("/generate-pdf", h.GeneratePDF)
	app.Get("/render-history", h.History)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Printf("warning: server shutdown: %v", err)
	}
	browsers.Shutdown()
	if pool != nil {
		pool.Close()
	}
}

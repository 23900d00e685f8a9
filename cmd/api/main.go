package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RajeshPuri/VaultFlow/docs"
	"github.com/RajeshPuri/VaultFlow/internal/config"
	"github.com/RajeshPuri/VaultFlow/internal/database"
	"github.com/RajeshPuri/VaultFlow/internal/database/migration"
	handlers "github.com/RajeshPuri/VaultFlow/internal/http/handler"
	"github.com/RajeshPuri/VaultFlow/internal/http/middleware"
	"github.com/RajeshPuri/VaultFlow/internal/mail"
	"github.com/RajeshPuri/VaultFlow/internal/otel"
	"github.com/RajeshPuri/VaultFlow/internal/repository/postgres"
	"github.com/RajeshPuri/VaultFlow/internal/service"
	"github.com/RajeshPuri/VaultFlow/internal/storage"
	"github.com/RajeshPuri/VaultFlow/internal/token"
	"github.com/RajeshPuri/VaultFlow/internal/ws"
)

// @title VaultFlow API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// PostgreSQL connection with pooling via database/sql
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	tokens, err := token.NewManager(cfg.JWT)
	if err != nil {
		log.Fatalf("failed to initialize token manager: %v", err)
	}

	mailer, err := mail.NewSMTP(cfg.SMTP)
	if err != nil {
		log.Fatalf("failed to initialize mailer: %v", err)
	}

	// Live snapshot hub; services publish mutations through it
	hub := ws.NewHub()
	go hub.Run()

	// Repositories and services
	userRepo := postgres.NewUserPostgres(db)
	folderRepo := postgres.NewFolderPostgres(db)
	fileRepo := postgres.NewFilePostgres(db)
	noteRepo := postgres.NewNotePostgres(db)
	memberRepo := postgres.NewMemberPostgres(db)

	svcs := handlers.Services{
		Auth:    service.NewAuthService(userRepo, tokens, mailer, cfg.BaseURL),
		Folders: service.NewFolderService(folderRepo, fileRepo, hub),
		Files:   service.NewFileService(objStore, fileRepo, folderRepo, hub, cfg.MaxFilesPerUser),
		Notes:   service.NewNoteService(noteRepo, hub),
		Members: service.NewMemberService(memberRepo, hub),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Global middleware: request ids, JSON request logs, traces, metrics
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMw, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, tokens, hub, svcs, cfg.UpgradeURL)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	flag "github.com/spf13/pflag"

	"flat-backend/internal/api"
	"flat-backend/internal/config"
	"flat-backend/internal/host"
	"flat-backend/internal/importer"
	"flat-backend/internal/storage"
	"flat-backend/internal/store"
	"flat-backend/internal/template"
)

func main() {
	configFile := flag.String("config", "", "path to the config file (default: app.yaml in . or ../..)")
	importOnly := flag.Bool("import", false, "run the import once and exit")
	flag.Parse()

	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db: %s, templates: %q)", cfg.Server.Port, cfg.Database.Driver, cfg.Flat.BaseDir())

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap host tables
	if cfg.Database.Bootstrap {
		if err := db.Bootstrap(ctx); err != nil {
			log.Fatalf("Failed to bootstrap host tables: %v", err)
		}
		log.Println("Host tables ready")
	}

	// 4. Register template and ready handlers
	d := buildDispatcher(cfg, db)

	// 5. Import-only mode
	if *importOnly {
		if !d.Ready(ctx) {
			db.Close()
			os.Exit(1)
		}
		return
	}

	// 6. Fire the ready event; a failed import leaves the server running
	if !d.Ready(ctx) {
		log.Println("ERROR: ready event failed, serving existing database content")
	}

	// 7. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 8. Routes; the import trigger requires an admin token
	api.RegisterRoutes(app, api.NewHandler(d), api.AuthMiddleware(cfg.JWTSecret), api.RequireAdmin())

	// 9. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func buildDispatcher(cfg *config.Config, db *store.Store) *host.Dispatcher {
	tpl := cfg.Flat.Templates
	forms := template.Table{Name: tpl.FormsTable, Column: tpl.FormsColumn}
	pages := template.Table{Name: tpl.PagesTable, Column: tpl.PagesColumn}

	d := host.NewDispatcher(template.NewResolver(nil, db.Tables(), forms, pages))

	if !cfg.Flat.Enabled() {
		log.Println("Flat templates disabled (no path configured)")
		return d
	}

	files := storage.NewLocalStorage(cfg.Flat.BaseDir())
	d.HandleTemplates(template.NewResolver(files, db.Tables(), forms, pages))
	log.Printf("Flat templates enabled from %s", files.BasePath())

	if !cfg.Flat.ImportEnabled() {
		log.Printf("Flat import disabled (production status %s)", cfg.Flat.ProductionStatus)
		return d
	}

	im := importer.New(db, files, importer.StrategiesFromConfig(cfg.Flat)...)
	im.Atomic = cfg.Flat.Atomic
	for _, s := range im.Strategies() {
		log.Printf("Flat import: %s -> %s (panel %s)", s.Dir(), s.Table(), s.Panel())
	}
	d.HandleReady(host.LogReady("flat import", im))
	return d
}

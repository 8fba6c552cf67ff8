package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"

	"floorplan-editor/internal/common/config"
	"floorplan-editor/internal/common/middleware"
	"floorplan-editor/internal/editor/handlers"
	"floorplan-editor/internal/editor/persistence"
	"floorplan-editor/internal/editor/service"
	"floorplan-editor/internal/editor/session"
)

type configLoader func() (*config.Config, error)

// openPlans opens the plan database and applies migrations. The caller
// closes the returned db.
func openPlans(ctx context.Context, cfg *config.Config) (*service.PlanService, *sql.DB, error) {
	db, err := persistence.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	repo := persistence.New(db)
	if err := repo.Init(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init db: %w", err)
	}
	return service.NewPlanService(repo, persistence.NewFileStorage(cfg.ExportDir)), db, nil
}

func newServeCommand(load configLoader) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	plans, db, err := openPlans(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := session.NewManager(service.WithMaxHistorySize(cfg.MaxHistorySize))
	editorHandler := handlers.NewEditorHandler(sessions, plans)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
		AppName:      "Floor Plan Editor",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Routes
	// ============================================================

	handlers.RegisterDocs(app)
	handlers.RegisterHealth(app, func() error {
		return db.PingContext(ctx)
	})
	editorHandler.Register(app.Group("/api"))

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		<-ctx.Done()
		log.Printf("Shutting down editor (%d open sessions)", sessions.Len())
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Floor Plan Editor on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Plans stored in %s, exports in %s", cfg.DBPath, cfg.ExportDir)

	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mapsync/core/config"
	"mapsync/core/database"
	"mapsync/core/journal"
	"mapsync/core/loader"
	"mapsync/core/logger"
	"mapsync/core/middleware/auth"
	"mapsync/core/middleware/rayid"
	"mapsync/core/snapshot"
	"mapsync/core/storage"

	"mapsync/feature/inspector"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the mapsync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if !cfg.Server.SurfaceSizeValid() {
			logg.Fatal("Surface dimensions must be positive",
				zap.Float64("width", cfg.Server.SurfaceWidth),
				zap.Float64("height", cfg.Server.SurfaceHeight),
			)
		}

		// 3. Connect to Database (Optional, journal only)
		var recorder *journal.Recorder
		if cfg.Journal.Enabled {
			if conn, err := database.Connect(cfg.Database); err != nil {
				logg.Warn("Journal database connection failed, journalling disabled", zap.Error(err))
			} else {
				recorder = journal.NewRecorder(conn, cfg.Journal)
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := recorder.Migrate(ctx); err != nil {
					logg.Warn("Journal migration failed, journalling disabled", zap.Error(err))
					recorder = nil
				}
				cancel()
			}
		}

		// 4. Initialize Snapshot Store (Optional)
		var snapshots *snapshot.Store
		if cfg.Snapshot.Enabled {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			snapshots = snapshot.NewStore(store, cfg.Storage.Bucket, cfg.Snapshot)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := snapshots.EnsureBucket(ctx); err != nil {
				logg.Fatal("Failed to ensure snapshot bucket", zap.Error(err))
			}
			cancel()
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager(logg)

		insp := inspector.NewFeature(logg, cfg.Server.SurfaceWidth, cfg.Server.SurfaceHeight, snapshots, recorder)
		mgr.Register(insp)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		if err := insp.Service().Close(); err != nil {
			logg.Error("Surface teardown incomplete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

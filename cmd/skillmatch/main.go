package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-skillmatch/api"
	"github.com/gcbaptista/go-skillmatch/config"
	"github.com/gcbaptista/go-skillmatch/internal/engine"
	"github.com/gcbaptista/go-skillmatch/internal/jobs"
	"github.com/gcbaptista/go-skillmatch/internal/snapshot"
)

const shutdownTimeout = 15 * time.Second

func newLogger(settings *config.Settings) (*zap.Logger, error) {
	if settings.Log.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newSnapshotStores(settings *config.Settings, logger *zap.Logger, lc fx.Lifecycle) ([]snapshot.Store, error) {
	var stores []snapshot.Store

	if settings.Snapshot.Dir != "" {
		stores = append(stores, snapshot.NewFileStore(settings.Snapshot.Dir))
		logger.Info("Model snapshots on disk", zap.String("dir", settings.Snapshot.Dir))
	}

	if settings.Redis.URL != "" {
		redisStore, err := snapshot.NewRedisStore(settings.Redis.URL, settings.Redis.TTL)
		if err != nil {
			return nil, err
		}
		stores = append(stores, redisStore)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				// an unreachable redis only costs refits
				if err := redisStore.Ping(ctx); err != nil {
					logger.Warn("Redis snapshot store unreachable", zap.Error(err))
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return redisStore.Close()
			},
		})
	}

	return stores, nil
}

func newJobManager(settings *config.Settings, logger *zap.Logger, lc fx.Lifecycle) *jobs.Manager {
	manager := jobs.NewManager(settings.Jobs.MaxWorkers, logger.Named("jobs"))
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			manager.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			manager.Stop()
			return nil
		},
	})
	return manager
}

func newEngine(settings *config.Settings, logger *zap.Logger, manager *jobs.Manager, stores []snapshot.Store) *engine.Engine {
	return engine.NewEngine(settings, logger.Named("engine"), manager, stores...)
}

func newRouter(eng *engine.Engine, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	return api.NewRouter(eng, logger)
}

func newHTTPServer(lc fx.Lifecycle, settings *config.Settings, router *gin.Engine, eng *engine.Engine, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              settings.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// the server comes up without a corpus; POST /corpus/reload retries
			if err := eng.Load(ctx); err != nil {
				logger.Error("Initial corpus load failed", zap.String("data_path", settings.DataPath), zap.Error(err))
			}

			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}

func appOptions(configPath string) fx.Option {
	return fx.Options(
		fx.Provide(
			func() (*config.Settings, error) {
				return config.Load(configPath)
			},
			newLogger,
			newSnapshotStores,
			newJobManager,
			newEngine,
			newRouter,
			newHTTPServer,
		),
		fx.Invoke(func(*http.Server) {}),
		fx.NopLogger,
	)
}

func main() {
	var (
		help       = flag.Bool("help", false, "Show help message")
		version    = flag.Bool("version", false, "Show version information")
		configPath = flag.String("config", "", "Path to a YAML settings file")
	)

	flag.Parse()

	if *help {
		fmt.Printf("SkillMatch - job recommendations from a CSV of postings\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment:\n")
		fmt.Printf("  %s, %s, %s, %s\n", config.EnvDataPath, config.EnvPort, config.EnvRedisURL, config.EnvSnapshotDir)
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s --config skillmatch.yaml\n", os.Args[0])
		fmt.Printf("  %s=data/jobs.csv %s\n", config.EnvDataPath, os.Args[0])
		return
	}

	if *version {
		fmt.Printf("SkillMatch v1.0.0\n")
		return
	}

	app := fx.New(appOptions(*configPath))

	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	httpHandler "github.com/anthanhphan/olfactory-dashboard/internal/api/adapter/inbound/http"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/adapter/outbound/backend"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/config"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/service"
	"github.com/anthanhphan/olfactory-dashboard/pkg/idgen"
	"github.com/anthanhphan/olfactory-dashboard/pkg/resilience"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg         *config.Config
	server      *httpHandler.Server
	workspaces  *service.WorkspaceRegistry
	redisClient *redis.Client
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Initialize Redis and Snowflake IDGen
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	redisClock := idgen.NewRedisClock(redisClient, cfg.Redis.Timeout())
	idGen, err := idgen.New(cfg.App.NodeID, redisClock)
	if err != nil {
		return nil, fmt.Errorf("failed to init snowflake: %w", err)
	}

	// 4. Workspaces
	workspaces := service.NewWorkspaceRegistry(idGen, cfg.App.WorkspaceTTL(), cfg.App.SweepInterval())

	// 5. Backend adapter
	backendClient := backend.NewClient(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout(),
		Breaker: resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.Backend.FailureThreshold,
			OpenTimeout:      cfg.Backend.OpenTimeout(),
		},
	})

	// 6. Services
	registration := service.NewRegistrationWorkflow(backendClient, service.RegistrationOptions{
		Modalities:  cfg.App.Modalities,
		PixelSizeUm: cfg.App.PixelSizeUm,
	})
	catalog := service.NewCatalogService(backendClient, cfg.App.OverviewWorkers)
	charts := service.NewChartService(backendClient)

	// 7. HTTP Server
	httpServer := httpHandler.NewServer(cfg, httpHandler.Services{
		Workspaces:   workspaces,
		Registration: registration,
		Catalog:      catalog,
		Charts:       charts,
		Backend:      backendClient,
		Modalities:   registration.Modalities(),
	})

	return &App{
		cfg:         cfg,
		server:      httpServer,
		workspaces:  workspaces,
		redisClient: redisClient,
	}, nil
}

func (a *App) Run() error {
	// Start workspace eviction
	go a.workspaces.Start(context.Background())

	// Start HTTP
	logger.Infow("Dashboard gateway starting", "addr", a.cfg.Server.Addr, "backend", a.cfg.Backend.BaseURL)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		runErr = fmt.Errorf("http server failed: %w", err)
		logger.Errorw("Dashboard gateway exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down dashboard gateway")
	a.workspaces.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Stop(ctx); err != nil {
		logger.Errorw("HTTP shutdown error", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	if err := a.redisClient.Close(); err != nil {
		logger.Warnw("Redis close error", "error", err.Error())
	}

	return runErr
}

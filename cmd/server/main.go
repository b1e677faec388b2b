// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/planemanager/internal/api"
	"github.com/tomtom215/planemanager/internal/cache"
	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/events"
	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/mcp"
	"github.com/tomtom215/planemanager/internal/persistence"
	"github.com/tomtom215/planemanager/internal/store"
	"github.com/tomtom215/planemanager/internal/supervisor"
	"github.com/tomtom215/planemanager/internal/supervisor/services"
	"github.com/tomtom215/planemanager/internal/sync"
	ws "github.com/tomtom215/planemanager/internal/websocket"
)

// planeComponents groups everything that needs a Plane connection. All
// fields are nil when Plane is not configured.
type planeComponents struct {
	client    *sync.PlaneClient
	engine    *sync.Engine
	progress  *sync.ProgressSyncer
	refresher *sync.ProjectRefresher
}

func (p *planeComponents) close() {
	if p.engine != nil {
		p.engine.Close()
	}
	if p.refresher != nil {
		p.refresher.Close()
	}
	if p.client != nil {
		p.client.Close()
	}
}

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("persistence_mode", cfg.Persistence.Mode).
		Bool("plane_configured", cfg.Plane.Configured()).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Bool("mcp_enabled", cfg.MCP.Enabled).
		Msg("Starting Plane Project Manager")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway, err := persistence.New(&cfg.Persistence)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create persistence gateway")
	}

	var storeOpts []store.Option
	if cfg.Cache.Enabled {
		snapshots, err := cache.OpenSnapshotCache(cache.SnapshotCacheConfig{
			Path:     cfg.Cache.Path,
			InMemory: cfg.Cache.InMemory,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open snapshot cache")
		}
		defer func() {
			if err := snapshots.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing snapshot cache")
			}
		}()
		storeOpts = append(storeOpts, store.WithCache(snapshots))
	}

	st := store.New(gateway, storeOpts...)
	if err := st.Bootstrap(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load data")
	}

	bus := events.NewBus(events.DefaultConfig())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	stopBridge := events.BridgeStore(ctx, st, bus)
	defer stopBridge()

	plane := initPlane(cfg, st, events.NewNotifier(bus))
	defer plane.close()

	hub := ws.NewHub()

	deps := api.HandlerDeps{
		Store:   st,
		Gateway: gateway,
		Hub:     hub,
		Config:  cfg,
	}
	mcpDeps := mcp.Deps{Store: st}
	// Interface fields stay nil rather than holding typed nil pointers.
	if plane.engine != nil {
		deps.Engine = plane.engine
		deps.Progress = plane.progress
		deps.Refresher = plane.refresher
		mcpDeps.Engine = plane.engine
		mcpDeps.Progress = plane.progress
	}

	var routerOpts []api.RouterOption
	if cfg.MCP.Enabled {
		routerOpts = append(routerOpts, api.WithMCPHandler(mcp.NewHTTPHandler(mcp.NewServer(mcpDeps))))
		logging.Info().Msg("MCP endpoint enabled at /mcp")
	}
	router := api.NewRouter(api.NewHandler(deps), routerOpts...)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer
	tree.AddDataService(services.NewStoreFlushService(st, cfg.Server.ShutdownTimeout))

	// Messaging layer
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(events.NewForwarder(bus, hub))
	if plane.progress != nil && cfg.Sync.ProgressEnabled {
		tree.AddMessagingService(services.NewJobService("progress-sync", plane.progress))
	}
	if plane.refresher != nil && cfg.Sync.RefreshEnabled {
		tree.AddMessagingService(services.NewJobService("project-refresh", plane.refresher))
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// initPlane builds the Plane client and everything that depends on it.
// A missing Plane configuration is not fatal: the server then runs on
// local data only and the remote endpoints answer 503.
func initPlane(cfg *config.Config, st *store.Store, notifier sync.Notifier) *planeComponents {
	client, err := sync.NewPlaneClient(&cfg.Plane)
	if err != nil {
		var cfgErr *sync.ConfigError
		if errors.As(err, &cfgErr) {
			logging.Warn().Err(err).Msg("Plane is not configured, running without remote sync")
			return &planeComponents{}
		}
		logging.Fatal().Err(err).Msg("Failed to create Plane client")
	}

	logging.Info().
		Str("plane_url", cfg.Plane.URL).
		Str("workspace", cfg.Plane.WorkspaceSlug).
		Msg("Plane client initialized")

	return &planeComponents{
		client:    client,
		engine:    sync.NewEngine(st, client, sync.WithNotifier(notifier)),
		progress:  sync.NewProgressSyncer(st, client, cfg.Sync, sync.WithProgressNotifier(notifier)),
		refresher: sync.NewProjectRefresher(st, client, cfg.Sync),
	}
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"pose-runner/core/internal/hub"
	"pose-runner/core/internal/net/ws"
	"pose-runner/core/internal/telemetry"
	"pose-runner/core/logging"
	loggingsinks "pose-runner/core/logging/sinks"
)

// Run wires the logging router, hub, and HTTP surface together and serves
// until the context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := telemetry.WrapLogger(log.Default())

	tuning, err := LoadTuning(cfg.TuningPath)
	if err != nil {
		return err
	}
	if cfg.Seed != "" {
		tuning.Runner.Seed = cfg.Seed
	}
	if err := tuning.Validate(); err != nil {
		return err
	}

	router, jsonFile, err := buildRouter(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
		if jsonFile != nil {
			jsonFile.Close()
		}
	}()

	counters := hub.NewCounters()
	h := hub.NewHub(hub.Options{
		TickRate:  cfg.TickRate,
		Runner:    tuning.Runner,
		Gesture:   tuning.Gesture,
		Publisher: router,
		Logger:    logger,
		Counters:  counters,
	})
	defer h.Close()

	if cfg.DebugTelemetry {
		go reportTelemetry(ctx, logger, counters)
	}

	mux := http.NewServeMux()
	wsHandler := ws.NewHandler(h, logger)
	mux.HandleFunc("/ws", wsHandler.Handle)
	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(h.DiagnosticsSnapshot()); err != nil {
			logger.Printf("failed to encode diagnostics: %v", err)
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Printf("server listening on %s (tick rate %d)", cfg.Addr, cfg.TickRate)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

// buildRouter assembles the logging router from the configured sinks. The
// returned file, when non-nil, backs the json sink and must outlive the
// router.
func buildRouter(cfg Config) (*logging.Router, *os.File, error) {
	logCfg := logging.DefaultConfig()
	logCfg.EnabledSinks = cfg.LogSinks
	severity, ok := logging.ParseSeverity(cfg.LogMinSeverity)
	if !ok {
		return nil, nil, fmt.Errorf("unknown LOG_MIN_SEVERITY %q", cfg.LogMinSeverity)
	}
	logCfg.MinimumSeverity = severity

	var named []logging.NamedSink
	var jsonFile *os.File
	if cfg.hasSink("console") {
		named = append(named, logging.NamedSink{
			Name: "console",
			Sink: loggingsinks.NewConsoleSink(os.Stdout, logCfg.Console),
		})
	}
	if cfg.hasSink("json") {
		file, err := os.OpenFile(cfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		jsonFile = file
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: loggingsinks.NewJSON(file, logCfg.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(nil, logCfg, named)
	if err != nil {
		if jsonFile != nil {
			jsonFile.Close()
		}
		return nil, nil, fmt.Errorf("construct logging router: %w", err)
	}
	return router, jsonFile, nil
}

func reportTelemetry(ctx context.Context, logger telemetry.Logger, counters *hub.Counters) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := counters.Snapshot()
			logger.Printf(
				"[telemetry] ticks=%d broadcasts=%d bytes=%d poses=%d dropped=%d tickMs=%d",
				snap.Ticks, snap.Broadcasts, snap.BytesSent,
				snap.PosesReceived, snap.PosesDropped, snap.TickDurationMillis,
			)
		}
	}
}

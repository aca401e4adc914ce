package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"objectdetection/internal/config"
	"objectdetection/internal/logger"
	"objectdetection/internal/repository/sqlite"
	"objectdetection/internal/route"
	"objectdetection/internal/service/ai"
	"objectdetection/internal/service/detector"
	"objectdetection/internal/service/history"
	"objectdetection/internal/service/provision"
	"objectdetection/internal/service/storage"
	"objectdetection/internal/service/websocket"
	"objectdetection/internal/session"
)

type App struct {
	config      *config.Config
	logger      *logger.Logger
	provisioner *provision.Provisioner
	runStore    *storage.RunStore
}

func NewApp() *App {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	fetcher := provision.NewHTTPFetcher(cfg.DownloadTimeout, provision.TerminalProgress, log)
	provisioner := provision.NewProvisioner(cfg, fetcher, ai.Loader(cfg, log), os.Stdout, log)

	return &App{
		config:      cfg,
		logger:      log,
		provisioner: provisioner,
		runStore:    storage.NewRunStore(cfg, log),
	}
}

// Run provisions the model and serves the interactive menu until the user exits.
// A provisioning failure is returned before the menu is shown.
func (a *App) Run(ctx context.Context) error {
	detectionModel, err := a.provisioner.Ensure(ctx)
	if err != nil {
		provision.ReportError(os.Stdout, err)
		return err
	}
	defer detectionModel.Close()

	recorder, closeHistory := a.openHistory()
	defer closeHistory()

	observer, stopBroadcast := a.startBroadcast(ctx)
	defer stopBroadcast()

	images := detector.NewImageDetector(detectionModel, ai.Codec{}, a.runStore, ai.OpenWindow, detector.ImageOptions{
		Confidence: a.config.ImageConfidence,
		History:    recorder,
		Out:        os.Stdout,
	}, a.logger)

	streams := detector.NewStreamDetector(detectionModel, ai.OpenCamera, ai.OpenWindow, detector.StreamOptions{
		Device:     a.config.CameraDevice,
		Confidence: config.StreamConfidence,
		Observer:   observer,
		History:    recorder,
		Out:        os.Stdout,
	}, a.logger)

	fmt.Printf("\n--- YOLO Object Detection (%s) ---\n", a.config.ModelName)
	a.logger.Info("Session started with model %s", a.provisioner.Path())

	return session.New(images, streams, os.Stdin, os.Stdout, a.logger).Run(ctx)
}

// openHistory opens the history database when enabled. History is best effort:
// a database that cannot be opened disables recording instead of failing.
func (a *App) openHistory() (detector.History, func()) {
	if !a.config.HistoryEnabled {
		return nil, func() {}
	}

	db, err := sqlite.New(a.config.HistoryDatabase)
	if err != nil {
		a.logger.Warning("Detection history disabled: %v", err)
		return nil, func() {}
	}

	recorder := history.NewRecorder(sqlite.NewRunRepository(db), sqlite.NewDetectionRepository(db), a.logger)
	return recorder, func() {
		if err := db.Close(); err != nil {
			a.logger.Error("Failed to close history database: %v", err)
		}
	}
}

// startBroadcast serves the live detection feed when BROADCAST_ADDR is set.
func (a *App) startBroadcast(ctx context.Context) (detector.FrameObserver, func()) {
	if a.config.BroadcastAddr == "" {
		return nil, func() {}
	}

	hubCtx, cancel := context.WithCancel(ctx)
	hub := websocket.NewHubService(a.logger)
	go hub.Run(hubCtx)

	server := &http.Server{
		Addr:              a.config.BroadcastAddr,
		Handler:           route.SetupRoutes(hub, a.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Live feed server stopped: %v", err)
		}
	}()

	fmt.Printf("Live detection feed: ws://%s/ws\n", a.config.BroadcastAddr)
	a.logger.Info("Live detection feed listening on %s", a.config.BroadcastAddr)

	return hub.ObserveFrame, func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warning("Live feed shutdown: %v", err)
		}
		cancel()
	}
}

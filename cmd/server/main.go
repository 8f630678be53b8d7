package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfstruct/internal/analyze"
	"github.com/dgallion1/pdfstruct/internal/api"
	"github.com/dgallion1/pdfstruct/internal/config"
	"github.com/dgallion1/pdfstruct/internal/layout"
	"github.com/dgallion1/pdfstruct/internal/parser"
	"github.com/dgallion1/pdfstruct/internal/pathstore"
	"github.com/dgallion1/pdfstruct/internal/pipeline"
	"github.com/dgallion1/pdfstruct/internal/store"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	// Layout detection.
	var (
		detector   layout.Detector
		remote     *layout.RemoteDetector
		layoutMode = "heuristic"
	)
	if cfg.LayoutURL != "" {
		remote = layout.NewRemoteDetector(cfg.LayoutURL, cfg.LayoutAPIKey, cfg.LayoutSamplePages)
		detector = remote
		layoutMode = "remote"
	} else {
		detector = layout.NewHeuristicDetector(cfg.LayoutSamplePages)
	}
	layoutStats := layout.NewStats(time.Hour)

	an, err := analyze.New(analyze.Options{
		Parser:   parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		Detector: layout.WithStats(detector, layoutStats),
		Classifier: structure.Config{
			Zones: structure.ZoneRule{
				HeaderFraction: cfg.HeaderZone,
				FooterFraction: cfg.FooterZone,
			},
			FoldHeadingCase: cfg.FoldHeadingCase,
			MinParagraphLen: cfg.MinParagraphLen,
		},
		SamplePages: cfg.LayoutSamplePages,
		FileRoot:    cfg.MCPFileRoot,
	}, log)
	if err != nil {
		log.Error("failed to initialize analyzer", "error", err)
		os.Exit(1)
	}

	// Publishing is optional; the worker skips it when pub is nil.
	var (
		ps  *pathstore.Client
		pub pipeline.Publisher
	)
	if cfg.PathstoreURL != "" {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		pub = ps
	}

	orch := pipeline.NewOrchestrator(cfg, an, st, pub, log)
	orch.Start(ctx)

	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Analyzer:     an,
		Store:        st,
		Pathstore:    ps,
		LayoutStats:  layoutStats,
		LayoutMode:   layoutMode,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if remote != nil {
			remote.Close()
		}
		if ps != nil {
			ps.Close()
		}
		st.Close()
	}()

	log.Info("starting pdfstruct", "port", cfg.Port, "layout", layoutMode, "ui", cfg.UIEnabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ytt/backend/internal/config"
	"ytt/backend/internal/db"
	"ytt/backend/internal/handler"
	transport "ytt/backend/internal/http"
	"ytt/backend/internal/logger"
	"ytt/backend/internal/network"
	"ytt/backend/internal/repository"
	"ytt/backend/internal/scheduler"
	"ytt/backend/internal/service"
	"ytt/backend/internal/service/translator"
	"ytt/backend/internal/service/youtube"
	"ytt/backend/internal/snowflake"
)

// @title YTT API
// @version 1.0
// @description Translate text, documents and YouTube transcripts, and keep a deduplicated translation history.
// @BasePath /api
func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "YTT translation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		newHistoryCmd(),
	)
	return root
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Maintain the translation history",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dedupe",
		Short: "Merge duplicate transcript entries",
		Long: `Collapse transcript entries that share a video and language pair, keeping
the most complete one, and fold pasted-text translations into untranslated
transcripts with the same text. The previous history is kept as
history.json.backup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			entries, err := repository.NewEntryRepository(cfg.HistoryPath())
			if err != nil {
				return err
			}
			report, err := service.NewHistoryService(entries).Dedupe(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reduced %d entries to %d entries\n", report.Before, report.After)
			return nil
		},
	})
	return cmd
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	logger.Init(logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := snowflake.Init(1); err != nil {
		return fmt.Errorf("init snowflake: %w", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer dbConn.Close()

	ctx := context.Background()

	settingsService := service.NewSettingsService(repository.NewSettingsRepository(dbConn))
	if _, err := settingsService.ImportLegacyFile(ctx, cfg.LegacySettingsPath()); err != nil {
		logger.Warn("legacy settings import failed", "module", "main", "action", "import", "resource", "settings", "result", "failed", "error", err)
	}

	entryRepo, err := repository.NewEntryRepository(cfg.HistoryPath())
	if err != nil {
		return err
	}
	artifactRepo, err := repository.NewArtifactRepository(cfg.TranscriptDir())
	if err != nil {
		return err
	}

	clientFactory := network.NewClientFactory(settingsService)
	libre := translator.NewLibreTranslate(cfg.LibreTranslateURL, cfg.LibreTranslateAPIKey, clientFactory)
	pipeline := translator.NewPipeline(cfg.ChunkSize, translator.NewRateLimiter(cfg.TranslateRateLimit))

	reconcileService := service.NewReconcileService(entryRepo)
	historyService := service.NewHistoryService(entryRepo)
	transcriptService := service.NewTranscriptService(
		youtube.NewClient(cfg.YtDlpPath, nil),
		entryRepo,
		artifactRepo,
		reconcileService,
		pipeline,
		libre,
	)
	translateService := service.NewTranslateService(
		libre,
		pipeline,
		settingsService,
		reconcileService,
		entryRepo,
		artifactRepo,
		service.TranslateLimits{
			MaxTextLength: cfg.MaxTextLength,
			MaxFileSize:   cfg.MaxFileSize(),
			UploadDir:     cfg.UploadDir(),
		},
	)

	router := transport.NewRouter(transport.Handlers{
		Translate: handler.NewTranslateHandler(translateService),
		History:   handler.NewHistoryHandler(historyService),
		YouTube:   handler.NewYouTubeHandler(transcriptService),
		Settings:  handler.NewSettingsHandler(settingsService, clientFactory, libre.URL()+"/languages"),
	}, cfg)

	sched := scheduler.New(settingsService, historyService, cfg.RetentionInterval)
	sched.Start()
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "module", "main", "action", "start", "resource", "http", "result", "ok", "addr", cfg.Addr, "data_dir", cfg.DataDir)
		if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-sigCh:
	}

	logger.Info("shutting down", "module", "main", "action", "stop", "resource", "http", "result", "ok")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return router.Shutdown(shutdownCtx)
}

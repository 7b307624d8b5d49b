package app

import (
	"context"

	"github.com/alimgiray/bizscope/internal/llm"
	"github.com/alimgiray/bizscope/internal/metrics"
	"github.com/alimgiray/bizscope/internal/repositories"
	"github.com/alimgiray/bizscope/internal/services"
	"github.com/alimgiray/bizscope/internal/workers"
	"github.com/alimgiray/bizscope/pkg/config"
)

// App holds the wired services shared by the HTTP server and the CLI
type App struct {
	Config   *config.Config
	Metrics  *metrics.Collector
	Projects *services.ProjectService
	Export   *services.ExportService
	Sweeper  *services.SweeperService
	Workers  *workers.WorkerManager

	closeStore func() error
}

// New opens storage and builds every service. Workers are created but not started.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, closeStore, err := repositories.NewDocumentStore(ctx, repositories.StoreOptions{
		Driver:        cfg.Storage.Driver,
		DataDir:       cfg.Storage.DataDir,
		DBPath:        cfg.Storage.DBPath,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
	})
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector("bizscope")
	projectRepo := repositories.NewProjectRepository(store)

	client := llm.NewClient(llm.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		Timeout:   cfg.LLM.Timeout,
		RateLimit: cfg.LLM.RateLimit,
		Burst:     cfg.LLM.Burst,
	}, collector)
	analysisService := services.NewAnalysisService(client, services.AnalysisOptions{
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
		MaxTokens:        cfg.LLM.MaxTokens,
		SectionMaxTokens: cfg.LLM.SectionMaxTokens,
	})

	workerManager := workers.NewWorkerManager(cfg.Generation.Workers, cfg.Generation.QueueSize)

	return &App{
		Config:     cfg,
		Metrics:    collector,
		Projects:   services.NewProjectService(projectRepo, analysisService, workerManager, collector),
		Export:     services.NewExportService(),
		Sweeper:    services.NewSweeperService(projectRepo, cfg.Sweeper.StaleAfter, collector),
		Workers:    workerManager,
		closeStore: closeStore,
	}, nil
}

// Close stops the workers and the sweeper, then releases storage
func (a *App) Close() error {
	a.Sweeper.Stop()
	if err := a.Workers.StopAll(); err != nil {
		return err
	}
	return a.closeStore()
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"lifestream/internal/gateway/config"
	"lifestream/internal/gateway/handler"
	"lifestream/internal/gateway/server"
	reportsvc "lifestream/internal/gateway/service/report"
	llmclient "lifestream/internal/llm/client"
	"lifestream/internal/pipeline"
)

type App struct {
	cfg     *config.Config
	handler http.Handler
	server  *server.Server
	llm     llmclient.ChatClient
	stores  *gatewayStores
}

// New wires stores, the LLM chain, the summarizer and the report service from
// cfg. The returned App owns every resource it opened.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	stores, err := initStores(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init stores: %w", err)
	}
	chat, err := newChatClient(cfg, log.Default())
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("failed to init llm: %w", err)
	}

	summarizer := pipeline.NewSummarizer(chat, pipelineConfig(cfg), log.Default())
	svc := reportsvc.New(reportsvc.Deps{
		Reports:    stores.reports,
		Logs:       stores.logs,
		Archive:    stores.archive,
		Summarizer: summarizer,
		Location:   cfg.Location(),
	})
	reportHandler := handler.NewReportHandler(svc, handler.Identity{
		Header:      cfg.Server.UserHeader,
		DefaultUser: cfg.Server.DefaultUser,
	})

	mux := server.NewMux(reportHandler, stores.ping)
	return &App{
		cfg:     cfg,
		handler: mux,
		server:  server.New(cfg.Server.Addr, mux),
		llm:     chat,
		stores:  stores,
	}, nil
}

func pipelineConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		DirectThreshold:    cfg.Pipeline.DirectThresholdChars,
		ChunkBudget:        cfg.Pipeline.ChunkBudgetChars,
		EntryOverhead:      cfg.Pipeline.EntryOverheadChars,
		MapConcurrency:     cfg.Pipeline.MapConcurrency,
		ReportTemperature:  cfg.ReportTemperature(),
		SummaryTemperature: cfg.Pipeline.SummaryTemperature,
		Location:           cfg.Location(),
	}
}

// Handler is the full HTTP surface, useful for tests.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx, a.cfg.Server.ShutdownTimeout)
}

func (a *App) Close() error {
	return errors.Join(a.llm.Close(), a.stores.Close())
}

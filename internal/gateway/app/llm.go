package app

import (
	"fmt"
	"log"

	"lifestream/internal/gateway/config"
	"lifestream/internal/llm"
	llmclient "lifestream/internal/llm/client"
)

// newChatClient builds the configured backend and its middleware chain.
// Only the selected backend's section is read.
func newChatClient(cfg *config.Config, logger *log.Logger) (llmclient.ChatClient, error) {
	var (
		base llmclient.ChatClient
		err  error
	)
	switch cfg.LLM.Backend {
	case config.BackendLlamaCpp:
		base, err = llmclient.NewLlamaCppClient(llmclient.LlamaCppConfig{
			BaseURL: cfg.LlamaCpp.BaseURL,
			Model:   cfg.LlamaCpp.Model,
			APIKey:  cfg.LlamaCpp.APIKey,
			Timeout: cfg.LLM.Timeout,
		})
	case config.BackendProvider:
		base, err = llmclient.NewProviderClient(llmclient.ProviderConfig{
			BaseURL: cfg.Provider.BaseURL,
			ModelID: cfg.Provider.ModelID,
			APIKey:  cfg.Provider.APIKey,
			Timeout: cfg.LLM.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.LLM.Backend)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("llm backend: %s", base.Name())

	return llm.Wrap(base,
		llm.WithLogging(logger),
		llm.WithHooks(),
		llm.Retry(cfg.LLM.MaxAttempts, cfg.LLM.RetryBackoff, logger),
		llm.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
		llm.WithTimeout(cfg.LLM.Timeout),
	), nil
}

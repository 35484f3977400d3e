package commands

import (
	"fmt"

	"github.com/petal-labs/halo/cli/config"
	"github.com/petal-labs/halo/core"
	"github.com/petal-labs/halo/providers"
	"github.com/petal-labs/halo/providers/openrouter"
)

func defaultProviderFactory() ProviderFactory {
	return func(providerID, apiKey string, cfg *config.Config) (core.Provider, error) {
		if providerID == "openrouter" {
			var opts []openrouter.Option
			if pc := providerConfig(cfg, providerID); pc != nil {
				if pc.BaseURL != "" {
					opts = append(opts, openrouter.WithBaseURL(pc.BaseURL))
				}
				if pc.Referer != "" {
					opts = append(opts, openrouter.WithReferer(pc.Referer))
				}
				if pc.AppTitle != "" {
					opts = append(opts, openrouter.WithAppTitle(pc.AppTitle))
				}
			}
			return openrouter.New(apiKey, opts...), nil
		}

		// Fall back to the registry for externally-registered providers.
		if providers.IsRegistered(providerID) {
			return providers.Create(providerID, apiKey)
		}

		return nil, fmt.Errorf("unsupported provider: %s (available: %v)", providerID, providers.List())
	}
}

func providerConfig(cfg *config.Config, providerID string) *config.ProviderConfig {
	if cfg == nil {
		return nil
	}
	return cfg.GetProvider(providerID)
}

package openrouter

import (
	"github.com/petal-labs/halo/core"
	"github.com/petal-labs/halo/providers"
)

func init() {
	providers.Register("openrouter", func(apiKey string) core.Provider {
		return New(apiKey)
	})
}

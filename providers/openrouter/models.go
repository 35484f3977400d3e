package openrouter

import "github.com/petal-labs/halo/core"

// chatCapabilities is the capability set shared by the catalog models.
var chatCapabilities = []core.Feature{
	core.FeatureChat,
	core.FeatureChatStreaming,
	core.FeatureToolCalling,
}

// models is the static catalog of commonly used OpenRouter models. The API
// routes many more; any fully-qualified "vendor/model" ID passes through
// unchanged.
var models = []core.ModelInfo{
	{ID: "openai/gpt-4o", DisplayName: "GPT-4o", Capabilities: chatCapabilities},
	{ID: "openai/gpt-4o-mini", DisplayName: "GPT-4o mini", Capabilities: chatCapabilities},
	{ID: "anthropic/claude-sonnet-4", DisplayName: "Claude Sonnet 4", Capabilities: chatCapabilities},
	{ID: "anthropic/claude-3.5-haiku", DisplayName: "Claude 3.5 Haiku", Capabilities: chatCapabilities},
	{ID: "google/gemini-2.0-flash-001", DisplayName: "Gemini 2.0 Flash", Capabilities: chatCapabilities},
	{ID: "meta-llama/llama-3.3-70b-instruct", DisplayName: "Llama 3.3 70B Instruct", Capabilities: chatCapabilities},
	{ID: "mistralai/mistral-large-2411", DisplayName: "Mistral Large", Capabilities: chatCapabilities},
	{ID: "deepseek/deepseek-chat", DisplayName: "DeepSeek V3", Capabilities: chatCapabilities},
}

// aliases maps short model names to fully-qualified OpenRouter IDs, for
// callers who don't want to remember vendor prefixes.
var aliases = map[core.ModelID]core.ModelID{
	"gpt-4o":        "openai/gpt-4o",
	"gpt-4o-mini":   "openai/gpt-4o-mini",
	"claude-sonnet": "anthropic/claude-sonnet-4",
	"claude-haiku":  "anthropic/claude-3.5-haiku",
	"gemini-flash":  "google/gemini-2.0-flash-001",
	"llama-70b":     "meta-llama/llama-3.3-70b-instruct",
	"mistral-large": "mistralai/mistral-large-2411",
	"deepseek":      "deepseek/deepseek-chat",
}

// ResolveModel maps a model alias to its fully-qualified OpenRouter ID.
// Unknown IDs are returned unchanged, so fully-qualified IDs always work.
func ResolveModel(id core.ModelID) core.ModelID {
	if resolved, ok := aliases[id]; ok {
		return resolved
	}
	return id
}

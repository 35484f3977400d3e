package openrouter

import "github.com/petal-labs/halo/core"

// Named generation-parameter presets. Apply with ChatBuilder.Preset; values
// already set on the builder win over the preset.
var (
	// PresetCreative favors varied, exploratory output.
	PresetCreative = core.Preset{
		Temperature: ptr[float32](1.0),
		TopP:        ptr[float32](0.95),
	}

	// PresetPrecise favors focused, low-variance output.
	PresetPrecise = core.Preset{
		Temperature: ptr[float32](0.2),
		TopP:        ptr[float32](0.8),
	}

	// PresetDeterministic minimizes sampling variance. Combine with
	// ChatBuilder.Seed for reproducible output on supporting models.
	PresetDeterministic = core.Preset{
		Temperature: ptr[float32](0.0),
		TopK:        ptr(1),
	}

	// PresetBalanced is a middle-ground default for chat.
	PresetBalanced = core.Preset{
		Temperature: ptr[float32](0.7),
		TopP:        ptr[float32](0.9),
	}
)

func ptr[T any](v T) *T {
	return &v
}

package core

import "time"

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, or tracing.
//
// Event types never include sensitive data: API keys are stored separately
// as core.Secret, and neither prompt content nor model output appears on
// any event. Only operational metadata (provider, model, timing, token
// counts) is exposed, so telemetry can be logged or exported safely.
// If extending this interface, maintain these properties.
type TelemetryHook interface {
	// OnRequestStart is called when a request to a provider begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a request to a provider completes.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Provider string    // Provider identifier (e.g., "openrouter")
	Model    ModelID   // Model being called
	Start    time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	Provider string
	Model    ModelID
	Start    time.Time
	End      time.Time
	Usage    TokenUsage
	Err      error
}

// Duration returns the wall-clock duration of the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a TelemetryHook that does nothing.
// It is the default hook for new clients.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(e RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(e RequestEndEvent) {}

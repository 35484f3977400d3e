package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petal-labs/halo/cli/keystore"
	"github.com/petal-labs/halo/core"
	"github.com/petal-labs/halo/providers/openrouter"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitProvider   = 2
	ExitNetwork    = 3
)

// presets maps the --preset flag values to generation parameter sets.
var presets = map[string]core.Preset{
	"creative":      openrouter.PresetCreative,
	"balanced":      openrouter.PresetBalanced,
	"precise":       openrouter.PresetPrecise,
	"deterministic": openrouter.PresetDeterministic,
}

func (a *App) newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat completion request",
		Long: `Send a chat completion request, or start an interactive session.

Examples:
  halo chat --model gpt-4o --prompt "Hello"
  halo chat --prompt "Hello" --stream
  halo chat --model claude-sonnet --interactive`,
		RunE: a.runChat,
	}

	cmd.Flags().StringVar(&a.chatPrompt, "prompt", "", "User message")
	cmd.Flags().StringVar(&a.chatSystem, "system", "", "System message")
	cmd.Flags().Float32Var(&a.chatTemperature, "temperature", 0, "Temperature (0 = use default)")
	cmd.Flags().IntVar(&a.chatMaxTokens, "max-tokens", 0, "Max tokens (0 = use default)")
	cmd.Flags().BoolVar(&a.chatStream, "stream", false, "Enable streaming output")
	cmd.Flags().BoolVarP(&a.chatInteractive, "interactive", "i", false, "Start an interactive session")

	return cmd
}

func (a *App) runChat(cmd *cobra.Command, args []string) error {
	if a.chatPrompt == "" && !a.chatInteractive {
		return exitWithCode(ExitValidation, fmt.Errorf("prompt required: use --prompt or --interactive"))
	}

	if a.model == "" {
		return exitWithCode(ExitValidation, fmt.Errorf("model required: use --model flag or set default_model in config"))
	}

	apiKey, err := a.resolveAPIKey()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	provider, err := a.createProvider(a.provider, apiKey, a.cfg)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	client := core.NewClient(provider)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if a.chatInteractive {
		return a.runInteractiveChat(ctx, client)
	}

	builder := a.buildChat(client).User(a.chatPrompt)

	if a.chatStream {
		return a.runStreamingChat(ctx, builder)
	}
	return a.runNonStreamingChat(ctx, builder)
}

// resolveAPIKey looks up the provider's key in the keystore, falling back
// to OPENROUTER_API_KEY for the default provider.
func (a *App) resolveAPIKey() (string, error) {
	keyRef := a.provider
	if a.cfg != nil {
		if pc := a.cfg.GetProvider(a.provider); pc != nil && pc.APIKeyRef != "" {
			keyRef = pc.APIKeyRef
		}
	}

	ks, err := a.newKeystore()
	if err != nil {
		return "", fmt.Errorf("failed to open keystore: %w", err)
	}

	apiKey, err := ks.Get(keyRef)
	if err == nil {
		return apiKey, nil
	}

	var notFound *keystore.ErrKeyNotFound
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("failed to get API key: %w", err)
	}

	if a.provider == "openrouter" {
		if envKey := os.Getenv(openrouter.DefaultAPIKeyEnvVar); envKey != "" {
			return envKey, nil
		}
	}

	return "", fmt.Errorf("no API key for %s: run 'halo keys set %s' first", a.provider, keyRef)
}

// buildChat creates a request builder with the shared flag-derived settings.
func (a *App) buildChat(client *core.Client) *core.ChatBuilder {
	builder := client.Chat(core.ModelID(a.model))

	if a.chatSystem != "" {
		builder = builder.System(a.chatSystem)
	}
	if p, ok := presets[a.preset]; ok {
		builder = builder.Preset(p)
	}
	if a.chatTemperature > 0 {
		builder = builder.Temperature(a.chatTemperature)
	}
	if a.chatMaxTokens > 0 {
		builder = builder.MaxTokens(a.chatMaxTokens)
	}

	return builder
}

func (a *App) runNonStreamingChat(ctx context.Context, builder *core.ChatBuilder) error {
	resp, err := builder.GetResponse(ctx)
	if err != nil {
		return a.handleChatError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(resp)
	}

	fmt.Fprintf(a.stdout, "> %s\n", a.chatPrompt)
	fmt.Fprintln(a.stdout, resp.Output)
	a.printUsage(resp)
	return nil
}

func (a *App) runStreamingChat(ctx context.Context, builder *core.ChatBuilder) error {
	chatStream, err := builder.Stream(ctx)
	if err != nil {
		return a.handleChatError(err)
	}

	if a.jsonOutput {
		// Accumulate for JSON output
		resp, err := core.DrainStream(ctx, chatStream)
		if err != nil {
			return a.handleChatError(err)
		}
		return a.outputJSON(resp)
	}

	fmt.Fprintf(a.stdout, "> %s\n", a.chatPrompt)

	for chunk := range chatStream.Ch {
		fmt.Fprint(a.stdout, chunk.Delta)
	}
	fmt.Fprintln(a.stdout)

	if err := <-chatStream.Err; err != nil {
		return a.handleChatError(err)
	}

	a.printUsage(<-chatStream.Final)
	return nil
}

// runInteractiveChat runs a REPL-style session with conversation history.
func (a *App) runInteractiveChat(ctx context.Context, client *core.Client) error {
	conv := core.NewConversation(client, core.ModelID(a.model))
	if a.chatSystem != "" {
		conv = core.NewConversation(client, core.ModelID(a.model),
			core.WithSystemMessage(a.chatSystem))
	}

	fmt.Fprintf(a.stdout, "Chatting with %s. Type 'exit' to quit.\n", a.model)

	scanner := bufio.NewScanner(a.stdin)
	for {
		fmt.Fprint(a.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		_, err := conv.SendStream(ctx, line, func(chunk core.ChatChunk) bool {
			fmt.Fprint(a.stdout, chunk.Delta)
			return true
		})
		fmt.Fprintln(a.stdout)
		if err != nil {
			// Report and keep the session alive; the failed turn's user
			// message stays in history
			a.printChatError(err)
		}
	}

	return scanner.Err()
}

func (a *App) handleChatError(err error) error {
	a.printChatError(err)

	switch {
	case errors.Is(err, core.ErrNetwork):
		return exitWithCode(ExitNetwork, err)
	case errors.Is(err, core.ErrModelRequired), errors.Is(err, core.ErrNoMessages):
		return exitWithCode(ExitValidation, err)
	default:
		return exitWithCode(ExitProvider, err)
	}
}

func (a *App) printChatError(err error) {
	var provErr *core.ProviderError
	if errors.As(err, &provErr) {
		if a.jsonOutput {
			a.outputErrorJSON(provErr)
			return
		}
		fmt.Fprintf(a.stderr, "Error: %s\n", provErr.Message)
		if provErr.RequestID != "" {
			fmt.Fprintf(a.stderr, "  Provider: %s, Request ID: %s\n", provErr.Provider, provErr.RequestID)
		}
		return
	}

	if a.jsonOutput {
		errType := "error"
		switch {
		case errors.Is(err, core.ErrNetwork):
			errType = "network_error"
		case errors.Is(err, core.ErrModelRequired), errors.Is(err, core.ErrNoMessages):
			errType = "validation_error"
		}
		a.outputSimpleErrorJSON(errType, err.Error())
		return
	}

	fmt.Fprintf(a.stderr, "Error: %v\n", err)
}

func (a *App) printUsage(resp *core.ChatResponse) {
	if !a.verbose || resp == nil {
		return
	}
	fmt.Fprintf(a.stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
		resp.Usage.PromptTokens,
		resp.Usage.CompletionTokens,
		resp.Usage.TotalTokens)
}

func (a *App) outputJSON(resp *core.ChatResponse) error {
	output := map[string]interface{}{
		"id":            resp.ID,
		"model":         resp.Model,
		"output":        resp.Output,
		"finish_reason": resp.FinishReason,
		"usage": map[string]int{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func (a *App) outputErrorJSON(provErr *core.ProviderError) {
	output := map[string]interface{}{
		"error": map[string]interface{}{
			"type":       provErr.Code,
			"message":    provErr.Message,
			"provider":   provErr.Provider,
			"request_id": provErr.RequestID,
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

func (a *App) outputSimpleErrorJSON(errType, message string) {
	output := map[string]interface{}{
		"error": map[string]interface{}{
			"type":    errType,
			"message": message,
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) ExitCode() int {
	return e.code
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

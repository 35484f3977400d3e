package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/halo/core"
	"github.com/petal-labs/halo/providers/openrouter"
)

func (a *App) newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known models",
		Long: `List the catalog of known models and their aliases.

Any fully-qualified "vendor/model" ID is accepted by the chat command
even when it is not in the catalog.`,
		RunE: a.runModels,
	}
}

func (a *App) runModels(cmd *cobra.Command, args []string) error {
	models := openrouter.New("").Models()

	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}

	fmt.Fprintln(a.stdout, "Models:")
	for _, m := range models {
		fmt.Fprintf(a.stdout, "  %-40s %s\n", m.ID, m.DisplayName)
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "Aliases:")
	for _, alias := range []core.ModelID{
		"gpt-4o", "gpt-4o-mini", "claude-sonnet", "claude-haiku",
		"gemini-flash", "llama-70b", "mistral-large", "deepseek",
	} {
		fmt.Fprintf(a.stdout, "  %-16s -> %s\n", alias, openrouter.ResolveModel(alias))
	}

	return nil
}

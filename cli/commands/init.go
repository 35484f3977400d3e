package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
)

func (a *App) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <project-name>",
		Short: "Initialize a new Halo project",
		Long: `Initialize a new Halo project with a standard directory structure.

Creates a project directory with:
  - main.go: A starter Go file using the Halo SDK
  - halo.yaml: Project configuration
  - tools/: Directory for custom tools

Example:
  halo init myagent
  halo init myagent --model claude-sonnet`,
		Args: cobra.ExactArgs(1),
		RunE: a.runInit,
	}

	cmd.Flags().StringVar(&a.initProvider, "provider", "openrouter", "Default provider for generated code")

	return cmd
}

func (a *App) runInit(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	projectName := filepath.Base(projectPath)

	// Validate project name (just the base name, not full path)
	if err := validateProjectName(projectName); err != nil {
		return err
	}

	// Check if directory already exists
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("directory %q already exists", projectPath)
	}

	// Create directory structure
	dirs := []string{
		projectPath,
		filepath.Join(projectPath, "tools"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Create .gitkeep files in empty directories
	gitkeepDirs := []string{
		filepath.Join(projectPath, "tools"),
	}

	for _, dir := range gitkeepDirs {
		path := filepath.Join(dir, ".gitkeep")
		if err := os.WriteFile(path, []byte{}, 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
	}

	data := templateData{
		Provider: a.initProvider,
		Model:    a.model,
	}
	if data.Model == "" {
		data.Model = "gpt-4o"
	}

	// Generate main.go
	mainPath := filepath.Join(projectPath, "main.go")
	if err := generateFile(mainPath, mainGoTemplate, data); err != nil {
		return fmt.Errorf("failed to create main.go: %w", err)
	}

	// Generate halo.yaml
	configPath := filepath.Join(projectPath, "halo.yaml")
	if err := generateFile(configPath, haloYamlTemplate, data); err != nil {
		return fmt.Errorf("failed to create halo.yaml: %w", err)
	}

	// Print success message
	fmt.Fprintf(a.stdout, "Created Halo project: %s\n\n", projectName)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintf(a.stdout, "  cd %s\n", projectPath)
	fmt.Fprintf(a.stdout, "  export %s=<your-key>\n", envVarForProvider(a.initProvider))
	fmt.Fprintln(a.stdout, "  go run main.go")

	return nil
}

func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	// Check for invalid characters
	validName := regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, underscores, and hyphens", name)
	}

	// Check for reserved names
	reserved := []string{".", "..", "halo"}
	for _, r := range reserved {
		if name == r {
			return fmt.Errorf("invalid project name %q: reserved name", name)
		}
	}

	return nil
}

type templateData struct {
	Provider string
	Model    string
}

var templateFuncs = template.FuncMap{
	"envVar": envVarForProvider,
}

func generateFile(path string, tmplContent string, data templateData) error {
	tmpl, err := template.New("file").Funcs(templateFuncs).Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

func envVarForProvider(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// Templates

var mainGoTemplate = `package main

import (
	"context"
	"fmt"
	"os"

	"github.com/petal-labs/halo/core"
	"github.com/petal-labs/halo/providers/{{.Provider}}"
)

func main() {
	p, err := {{.Provider}}.NewFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	c := core.NewClient(p)

	resp, err := c.Chat("{{.Model}}").
		User("Hello, world!").
		GetResponse(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Println(resp.Output)
}
`

var haloYamlTemplate = `# Halo project configuration
default_provider: {{.Provider}}
default_model: {{.Model}}

# Provider configurations
# API keys should be set via 'halo keys set <name>' or environment variables
providers:
  {{.Provider}}:
    api_key_ref: {{.Provider}}
`

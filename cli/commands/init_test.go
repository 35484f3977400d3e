package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "myagent", false},
		{"valid with numbers", "agent123", false},
		{"valid with underscore", "my_agent", false},
		{"valid with hyphen", "my-agent", false},
		{"empty", "", true},
		{"starts with number", "123agent", true},
		{"starts with hyphen", "-agent", true},
		{"contains space", "my agent", true},
		{"contains dot", "my.agent", true},
		{"reserved dot", ".", true},
		{"reserved dotdot", "..", true},
		{"reserved halo", "halo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestEnvVarForProvider(t *testing.T) {
	if got := envVarForProvider("openrouter"); got != "OPENROUTER_API_KEY" {
		t.Errorf("envVarForProvider(openrouter) = %q, want OPENROUTER_API_KEY", got)
	}
}

func TestInitCreatesProject(t *testing.T) {
	tmpDir := t.TempDir()
	projectPath := filepath.Join(tmpDir, "myagent")

	var stdout strings.Builder
	a := newTestApp(WithIO(strings.NewReader(""), &stdout, &strings.Builder{}))

	a.root.SetArgs([]string{"init", projectPath})
	if err := a.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// Generated files exist
	for _, f := range []string{"main.go", "halo.yaml", filepath.Join("tools", ".gitkeep")} {
		if _, err := os.Stat(filepath.Join(projectPath, f)); err != nil {
			t.Errorf("expected file %s: %v", f, err)
		}
	}

	// main.go references the SDK
	mainGo, err := os.ReadFile(filepath.Join(projectPath, "main.go"))
	if err != nil {
		t.Fatalf("ReadFile(main.go) error = %v", err)
	}
	if !strings.Contains(string(mainGo), "github.com/petal-labs/halo/core") {
		t.Error("generated main.go does not import the SDK")
	}
	if !strings.Contains(string(mainGo), "providers/openrouter") {
		t.Error("generated main.go does not import the default provider")
	}

	if !strings.Contains(stdout.String(), "Created Halo project") {
		t.Errorf("stdout = %q, want success message", stdout.String())
	}
}

func TestInitRefusesExistingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	projectPath := filepath.Join(tmpDir, "existing")
	if err := os.MkdirAll(projectPath, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	a := newTestApp()
	a.root.SetArgs([]string{"init", projectPath})
	if err := a.Execute(); err == nil {
		t.Error("Execute() error = nil, want error for existing directory")
	}
}

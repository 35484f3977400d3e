//go:build integration

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLI_Version(t *testing.T) {
	result := runCLI(t, nil, "version")

	if result.ExitCode != 0 {
		t.Errorf("Exit code = %d, want 0\nStderr: %s", result.ExitCode, result.Stderr)
	}
	if !strings.Contains(result.Stdout, "halo") {
		t.Errorf("Stdout should mention halo, got: %s", result.Stdout)
	}
}

func TestCLI_Models(t *testing.T) {
	result := runCLI(t, nil, "models")

	if result.ExitCode != 0 {
		t.Errorf("Exit code = %d, want 0\nStderr: %s", result.ExitCode, result.Stderr)
	}
	if !strings.Contains(result.Stdout, "openai/gpt-4o") {
		t.Errorf("Stdout should list the catalog, got: %s", result.Stdout)
	}
}

func TestCLI_Keys_Roundtrip(t *testing.T) {
	env := isolatedHome(t)

	// Set a key via piped stdin
	result := runCLIWithStdin(t, env, "sk-or-test-key\n", "keys", "set", "openrouter")
	if result.ExitCode != 0 {
		t.Fatalf("keys set exit code = %d\nStderr: %s", result.ExitCode, result.Stderr)
	}

	// List shows the name, never the value
	result = runCLI(t, env, "keys", "list")
	if result.ExitCode != 0 {
		t.Fatalf("keys list exit code = %d\nStderr: %s", result.ExitCode, result.Stderr)
	}
	if !strings.Contains(result.Stdout, "openrouter") {
		t.Errorf("keys list should show 'openrouter', got: %s", result.Stdout)
	}
	if strings.Contains(result.Stdout, "sk-or-test-key") {
		t.Error("keys list leaked the key value")
	}

	// Delete
	result = runCLI(t, env, "keys", "delete", "openrouter")
	if result.ExitCode != 0 {
		t.Fatalf("keys delete exit code = %d\nStderr: %s", result.ExitCode, result.Stderr)
	}

	result = runCLI(t, env, "keys", "list")
	if strings.Contains(result.Stdout, "openrouter") {
		t.Errorf("keys list should be empty after delete, got: %s", result.Stdout)
	}
}

func TestCLI_Chat_MissingModel(t *testing.T) {
	result := runCLI(t, isolatedHome(t), "chat", "--prompt", "Hello")

	if result.ExitCode != 1 {
		t.Errorf("Exit code = %d, want 1 for missing model", result.ExitCode)
	}
	if !strings.Contains(result.Stderr, "model") {
		t.Errorf("Stderr should mention model, got: %s", result.Stderr)
	}
}

func TestCLI_Chat_MissingPrompt(t *testing.T) {
	result := runCLI(t, isolatedHome(t), "chat", "--model", "gpt-4o-mini")

	if result.ExitCode != 1 {
		t.Errorf("Exit code = %d, want 1 for missing prompt", result.ExitCode)
	}
}

func TestCLI_Chat(t *testing.T) {
	skipIfNoAPIKey(t)

	// Key comes from OPENROUTER_API_KEY in the inherited environment
	result := runCLI(t, isolatedHome(t), "chat",
		"--model", "gpt-4o-mini",
		"--prompt", "Say 'hello' and nothing else.")

	if result.ExitCode != 0 {
		t.Errorf("Exit code = %d, want 0\nStderr: %s", result.ExitCode, result.Stderr)
	}
	if result.Stdout == "" {
		t.Error("Stdout is empty")
	}

	t.Logf("Output: %s", result.Stdout)
}

func TestCLI_Chat_Streaming(t *testing.T) {
	skipIfNoAPIKey(t)

	result := runCLI(t, isolatedHome(t), "chat",
		"--model", "gpt-4o-mini",
		"--prompt", "Count from 1 to 3.",
		"--stream")

	if result.ExitCode != 0 {
		t.Errorf("Exit code = %d, want 0\nStderr: %s", result.ExitCode, result.Stderr)
	}
	if result.Stdout == "" {
		t.Error("Stdout is empty")
	}

	t.Logf("Output: %s", result.Stdout)
}

func TestCLI_Chat_JSON(t *testing.T) {
	skipIfNoAPIKey(t)

	result := runCLI(t, isolatedHome(t), "chat",
		"--model", "gpt-4o-mini",
		"--prompt", "Say hello.",
		"--json")

	if result.ExitCode != 0 {
		t.Errorf("Exit code = %d, want 0\nStderr: %s", result.ExitCode, result.Stderr)
	}

	// Verify valid JSON
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &output); err != nil {
		t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, result.Stdout)
	}

	// Verify expected fields
	if _, ok := output["output"]; !ok {
		t.Error("JSON output missing 'output' field")
	}
	if _, ok := output["usage"]; !ok {
		t.Error("JSON output missing 'usage' field")
	}

	t.Logf("JSON Output: %s", result.Stdout)
}

func TestCLI_Init(t *testing.T) {
	tmpDir := t.TempDir()
	projectPath := filepath.Join(tmpDir, "testproject")

	result := runCLI(t, isolatedHome(t), "init", projectPath)

	if result.ExitCode != 0 {
		t.Errorf("Exit code = %d, want 0\nStderr: %s", result.ExitCode, result.Stderr)
	}

	// Verify directory and files created
	for _, f := range []string{"main.go", "halo.yaml"} {
		if _, err := os.Stat(filepath.Join(projectPath, f)); err != nil {
			t.Errorf("expected file %s: %v", f, err)
		}
	}
}

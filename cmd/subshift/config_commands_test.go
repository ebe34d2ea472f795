package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Errorf("output does not mention target path:\n%s", output)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read generated config: %v", err)
	}
	for _, section := range []string{"[transcription]", "[alignment]", "[sampling]", "[backup]"} {
		if !strings.Contains(string(data), section) {
			t.Errorf("generated config missing %s section", section)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatalf("write existing config: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}

	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite error: %v", err)
	}
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	configPath := writeCLIConfig(t)
	t.Setenv("SUBSHIFT_API_KEY", "super-secret-key")

	output, err := runCommand(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if strings.Contains(output, "super-secret-key") {
		t.Error("config show leaked the api key")
	}
	if !strings.Contains(output, "[alignment]") {
		t.Errorf("config show output missing sections:\n%s", output)
	}
}

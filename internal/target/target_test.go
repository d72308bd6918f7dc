package target_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spvlower/internal/target"
)

func TestDefaultAllowsStandardVectorWidths(t *testing.T) {
	env := target.Default()
	for _, w := range []uint32{1, 2, 3, 4, 8, 16} {
		if !env.AllowsVectorWidth(w) {
			t.Errorf("width %d should be allowed", w)
		}
	}
	for _, w := range []uint32{0, 5, 6, 7, 9, 32} {
		if env.AllowsVectorWidth(w) {
			t.Errorf("width %d should not be allowed", w)
		}
	}
	if !env.HasCapability("Kernel") {
		t.Fatal("default target must declare Kernel")
	}
	if env.HasCapability("Shader") {
		t.Fatal("default target must not declare Shader")
	}
}

func TestAllowsVectorWidthFallsBackToDefaults(t *testing.T) {
	env := &target.Env{}
	if !env.AllowsVectorWidth(4) {
		t.Fatal("empty allow-list must fall back to the default widths")
	}
}

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write toml: %v", err)
	}
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeTOML(t, `
[target]
version = "1.0"
addressing_bits = 32
vector_widths = [1, 2, 4]
capabilities = ["Kernel"]
`)
	env, err := target.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if env.Version != "1.0" {
		t.Fatalf("version %q, want 1.0", env.Version)
	}
	if env.AddressingBits != 32 {
		t.Fatalf("addressing bits %d, want 32", env.AddressingBits)
	}
	if env.AllowsVectorWidth(8) {
		t.Fatal("width 8 should be excluded by the override")
	}
	if !env.AllowsVectorWidth(2) {
		t.Fatal("width 2 should be allowed")
	}
}

func TestLoadFileRejectsBadAddressing(t *testing.T) {
	path := writeTOML(t, "[target]\naddressing_bits = 48\n")
	_, err := target.LoadFile(path)
	if err == nil {
		t.Fatal("expected addressing_bits error, got nil")
	}
	if !strings.Contains(err.Error(), "addressing_bits") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFileRequiresTargetSection(t *testing.T) {
	path := writeTOML(t, "version = \"1.0\"\n")
	_, err := target.LoadFile(path)
	if err == nil {
		t.Fatal("expected missing-section error, got nil")
	}
	if !strings.Contains(err.Error(), "[target]") {
		t.Fatalf("unexpected error: %v", err)
	}
}

package morph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()
	if c.Duration != 650*time.Millisecond {
		t.Errorf("Duration = %v", c.Duration)
	}
	assertNear(t, "flow.multiplier", c.Flow.Multiplier, 0.3)
	assertNear(t, "flow.entry_scaling", c.Flow.EntryScaling, 0.8)
	assertNear(t, "shadow.opacity", c.Shadow.Opacity, 0.6)
	assertNear(t, "shadow.radius", c.Shadow.Radius, 60)
	assertNear(t, "exit_fade.duration", c.ExitFade.Duration, 0.3)
}

func TestValidateCombinesErrors(t *testing.T) {
	c := DefaultConfig()
	c.Duration = -time.Second
	c.Shadow.Opacity = 2
	c.ExitFade = Window{Start: 0.9, Duration: 0.5}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	if n := len(multierr.Errors(err)); n != 3 {
		t.Errorf("got %d errors, want 3: %v", n, err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "morph.yaml", `
duration: 800ms
flow:
  multiplier: 0.5
  apply_to_leaves: true
exit_fade:
  start: 0
  duration: 0.5
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Duration != 800*time.Millisecond {
		t.Errorf("Duration = %v", c.Duration)
	}
	assertNear(t, "multiplier", c.Flow.Multiplier, 0.5)
	if !c.Flow.ApplyToLeaves {
		t.Error("apply_to_leaves not read")
	}
	assertNear(t, "exit_fade", c.ExitFade.Duration, 0.5)
	// untouched values keep their defaults
	assertNear(t, "entry_scaling", c.Flow.EntryScaling, 0.8)
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "morph.toml", `
duration = "1s"
blur_radius = 20

[shadow]
opacity = 0.4
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Duration != time.Second || c.BlurRadius != 20 {
		t.Errorf("Duration = %v BlurRadius = %d", c.Duration, c.BlurRadius)
	}
	assertNear(t, "shadow.opacity", c.Shadow.Opacity, 0.4)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", "shadow:\n  opacity: 3\n")
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "shadow.opacity") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadConfigUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "morph.json", "{}")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for .json")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

package morph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"
)

// Window is a keyframe window expressed as fractions of a timeline's
// duration: it begins at Start and lasts Duration.
type Window struct {
	Start    float64 `yaml:"start" toml:"start"`
	Duration float64 `yaml:"duration" toml:"duration"`
}

// progress maps timeline progress t in [0, 1] to the window's own progress,
// clamped to [0, 1].
func (w Window) progress(t float64) float64 {
	if w.Duration <= 0 {
		if t >= w.Start {
			return 1
		}
		return 0
	}
	return clamp01((t - w.Start) / w.Duration)
}

func (w Window) validate(name string) error {
	var err error
	if w.Start < 0 || w.Start > 1 {
		err = multierr.Append(err, fmt.Errorf("%s.start %g outside [0, 1]", name, w.Start))
	}
	if w.Duration < 0 || w.Start+w.Duration > 1+1e-9 {
		err = multierr.Append(err, fmt.Errorf("%s.duration %g does not fit in the timeline", name, w.Duration))
	}
	return err
}

// FlowConfig tunes the motion given to elements without a counterpart.
type FlowConfig struct {
	// Multiplier damps the dominant motion before it is applied as flow.
	Multiplier float64 `yaml:"multiplier" toml:"multiplier"`
	// EntryScaling is the scale of the entering group at the start and of
	// the exiting group at the end.
	EntryScaling float64 `yaml:"entry_scaling" toml:"entry_scaling"`
	// ApplyToLeaves offsets individual exiting/entering leaves by the flow
	// in addition to their group.
	ApplyToLeaves bool `yaml:"apply_to_leaves" toml:"apply_to_leaves"`
}

// ShadowConfig styles the shadow pulsed around a growing or shrinking portal.
type ShadowConfig struct {
	Color   Color   `yaml:"color" toml:"color"`
	Opacity float64 `yaml:"opacity" toml:"opacity"`
	OffsetX float64 `yaml:"offset_x" toml:"offset_x"`
	OffsetY float64 `yaml:"offset_y" toml:"offset_y"`
	Radius  float64 `yaml:"radius" toml:"radius"`
	FadeIn  Window  `yaml:"fade_in" toml:"fade_in"`
	FadeOut Window  `yaml:"fade_out" toml:"fade_out"`
}

// TimingConfig defines the shared timing curve: a cubic bezier with control
// points (X1, Y1) and (X2, Y2) followed by a spring with the given damping
// ratio.
type TimingConfig struct {
	X1      float64 `yaml:"x1" toml:"x1"`
	Y1      float64 `yaml:"y1" toml:"y1"`
	X2      float64 `yaml:"x2" toml:"x2"`
	Y2      float64 `yaml:"y2" toml:"y2"`
	Damping float64 `yaml:"damping" toml:"damping"`
}

// Config holds every tuning constant of a transition.
type Config struct {
	Duration   time.Duration `yaml:"duration" toml:"duration"`
	Flow       FlowConfig    `yaml:"flow" toml:"flow"`
	Shadow     ShadowConfig  `yaml:"shadow" toml:"shadow"`
	BlurRadius int           `yaml:"blur_radius" toml:"blur_radius"`
	ExitFade   Window        `yaml:"exit_fade" toml:"exit_fade"`
	EnterFade  Window        `yaml:"enter_fade" toml:"enter_fade"`
	Timing     TimingConfig  `yaml:"timing" toml:"timing"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Duration: 650 * time.Millisecond,
		Flow: FlowConfig{
			Multiplier:   0.3,
			EntryScaling: 0.8,
		},
		Shadow: ShadowConfig{
			Color:   ColorBlack,
			Opacity: 0.6,
			Radius:  60,
			FadeIn:  Window{Start: 0, Duration: 0.33},
			FadeOut: Window{Start: 0.66, Duration: 0.33},
		},
		BlurRadius: 12,
		ExitFade:   Window{Start: 0, Duration: 0.3},
		EnterFade:  Window{Start: 0, Duration: 1},
		Timing: TimingConfig{
			X1: 0.46, Y1: 0.02,
			X2: 0, Y2: 1,
			Damping: 1,
		},
	}
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var err error
	if c.Duration <= 0 {
		err = multierr.Append(err, fmt.Errorf("duration %v must be positive", c.Duration))
	}
	if c.Flow.Multiplier < 0 || c.Flow.Multiplier > 1 {
		err = multierr.Append(err, fmt.Errorf("flow.multiplier %g outside [0, 1]", c.Flow.Multiplier))
	}
	if c.Flow.EntryScaling <= 0 {
		err = multierr.Append(err, fmt.Errorf("flow.entry_scaling %g must be positive", c.Flow.EntryScaling))
	}
	if c.Shadow.Opacity < 0 || c.Shadow.Opacity > 1 {
		err = multierr.Append(err, fmt.Errorf("shadow.opacity %g outside [0, 1]", c.Shadow.Opacity))
	}
	if c.Shadow.Radius < 0 {
		err = multierr.Append(err, fmt.Errorf("shadow.radius %g is negative", c.Shadow.Radius))
	}
	if c.BlurRadius < 0 {
		err = multierr.Append(err, fmt.Errorf("blur_radius %d is negative", c.BlurRadius))
	}
	if c.Timing.X1 < 0 || c.Timing.X1 > 1 || c.Timing.X2 < 0 || c.Timing.X2 > 1 {
		err = multierr.Append(err, fmt.Errorf("timing control point x values must lie in [0, 1]"))
	}
	if c.Timing.Damping <= 0 {
		err = multierr.Append(err, fmt.Errorf("timing.damping %g must be positive", c.Timing.Damping))
	}
	err = multierr.Append(err, c.Shadow.FadeIn.validate("shadow.fade_in"))
	err = multierr.Append(err, c.Shadow.FadeOut.validate("shadow.fade_out"))
	err = multierr.Append(err, c.ExitFade.validate("exit_fade"))
	err = multierr.Append(err, c.EnterFade.validate("enter_fade"))
	return err
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) file on top of
// DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

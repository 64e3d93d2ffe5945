package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/morph"
)

// sceneFile is the YAML description of one transition:
//
//	stage: {width: 400, height: 800}
//	from:
//	  name: grid
//	  fill: "#202020"
//	  children:
//	    - {name: cell, frame: [0, 0, 50, 50], fill: "#ff0000"}
//	to:
//	  name: detail
//	views:
//	  from: {card: cell}
//	  to: {card: hero}
//	portals: {from: cell}
//	direction: forward
//	duration: 500ms
type sceneFile struct {
	Stage     sizeSpec      `yaml:"stage"`
	From      elementSpec   `yaml:"from"`
	To        elementSpec   `yaml:"to"`
	Views     viewsSpec     `yaml:"views"`
	Portals   portalsSpec   `yaml:"portals"`
	Direction string        `yaml:"direction"`
	Duration  time.Duration `yaml:"duration"`
	Key       string        `yaml:"key"`
	Guidance  guidanceSpec  `yaml:"guidance"`

	dir string // directory image paths are relative to
}

type sizeSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// elementSpec describes one element and its subtree. A base without a frame
// covers the stage.
type elementSpec struct {
	Name         string        `yaml:"name"`
	Frame        []float64     `yaml:"frame"` // x, y, width, height
	Hidden       bool          `yaml:"hidden"`
	Clip         bool          `yaml:"clip"`
	CornerRadius float64       `yaml:"corner_radius"`
	Alpha        *float64      `yaml:"alpha"`
	Fill         string        `yaml:"fill"`  // #rrggbb or #rrggbbaa
	Image        string        `yaml:"image"` // path to a PNG, JPEG, GIF, TIFF or BMP
	Children     []elementSpec `yaml:"children"`
}

// viewsSpec maps transition keys to element names on each side.
type viewsSpec struct {
	From map[string]string `yaml:"from"`
	To   map[string]string `yaml:"to"`
}

type portalsSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type guidanceSpec struct {
	Timing        float64  `yaml:"timing"` // duration multiplier, 0 for none
	Remove        []string `yaml:"remove"`
	CornerRadius  *float64 `yaml:"corner_radius"`
	DisableShadow bool     `yaml:"disable_shadow"`
}

var errSceneFile = errors.New("invalid scene file")

// loadSceneFile reads and decodes a scene file.
func loadSceneFile(path string) (*sceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	sf, err := parseSceneFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sf.dir = filepath.Dir(path)
	return sf, nil
}

func parseSceneFile(data []byte) (*sceneFile, error) {
	var sf sceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if sf.Stage.Width <= 0 || sf.Stage.Height <= 0 {
		return nil, fmt.Errorf("stage size %gx%g must be positive: %w", sf.Stage.Width, sf.Stage.Height, errSceneFile)
	}
	if sf.From.Name == "" {
		sf.From.Name = "from"
	}
	if sf.To.Name == "" {
		sf.To.Name = "to"
	}
	return &sf, nil
}

// builtScene is a scene file turned into live elements.
type builtScene struct {
	stage   *morph.Element
	request morph.SceneRequest
}

// build creates the stage with both scene roots attached and resolves every
// name the file refers to. Unknown names are reported together.
func (sf *sceneFile) build() (*builtScene, error) {
	stageFrame := morph.Rect{Width: sf.Stage.Width, Height: sf.Stage.Height}
	stage := morph.NewContainer("stage", stageFrame)

	var errs error
	bases := morph.NewPair(
		sf.element(sf.From, stageFrame, &errs),
		sf.element(sf.To, stageFrame, &errs),
	)
	if errs != nil {
		return nil, errs
	}
	stage.AddChild(bases.From)
	stage.AddChild(bases.To)

	dir, err := parseDirection(sf.Direction)
	errs = multierr.Append(errs, err)

	lookup := func(side morph.Side, name string) *morph.Element {
		if name == "" {
			return nil
		}
		e := bases.At(side).Find(name)
		if e == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: no element named %q: %w", side, name, errSceneFile))
		}
		return e
	}
	views := func(side morph.Side, m map[string]string) map[string]*morph.Element {
		out := make(map[string]*morph.Element, len(m))
		for key, name := range m {
			if e := lookup(side, name); e != nil {
				out[key] = e
			}
		}
		return out
	}
	sources := morph.NewPair[morph.ViewSource](
		morph.StaticSource{Views: views(morph.SideFrom, sf.Views.From), Portal: lookup(morph.SideFrom, sf.Portals.From)},
		morph.StaticSource{Views: views(morph.SideTo, sf.Views.To), Portal: lookup(morph.SideTo, sf.Portals.To)},
	)
	if errs != nil {
		return nil, errs
	}

	return &builtScene{
		stage: stage,
		request: morph.SceneRequest{
			Sources:   sources,
			Bases:     bases,
			Stage:     stage,
			Direction: dir,
			Duration:  sf.Duration,
			Key:       morph.TransitionKey(sf.Key),
			Guidance:  sf.Guidance.list(),
		},
	}, nil
}

// element builds spec and its subtree. Failures are appended to errs and
// the offending content is skipped.
func (sf *sceneFile) element(spec elementSpec, defaultFrame morph.Rect, errs *error) *morph.Element {
	frame := defaultFrame
	switch len(spec.Frame) {
	case 0:
	case 4:
		frame = morph.Rect{X: spec.Frame[0], Y: spec.Frame[1], Width: spec.Frame[2], Height: spec.Frame[3]}
	default:
		*errs = multierr.Append(*errs, fmt.Errorf("%q: frame needs 4 values, got %d: %w", spec.Name, len(spec.Frame), errSceneFile))
	}

	e := morph.NewContainer(spec.Name, frame)
	e.Hidden = spec.Hidden
	e.Clip = spec.Clip
	e.CornerRadius = spec.CornerRadius
	if spec.Alpha != nil {
		e.Alpha = *spec.Alpha
	}
	if spec.Fill != "" {
		c, err := parseHexColor(spec.Fill)
		if err != nil {
			*errs = multierr.Append(*errs, fmt.Errorf("%q: %w", spec.Name, err))
		}
		e.Fill = c
	}
	if spec.Image != "" {
		path := spec.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(sf.dir, path)
		}
		img, err := imaging.Open(path)
		if err != nil {
			*errs = multierr.Append(*errs, fmt.Errorf("%q: open image: %w", spec.Name, err))
		} else {
			e.Kind = morph.ElementImage
			e.Source = img
		}
	}
	for _, c := range spec.Children {
		e.AddChild(sf.element(c, morph.Rect{}, errs))
	}
	return e
}

func (g guidanceSpec) list() []morph.TransitionGuidance {
	var out []morph.TransitionGuidance
	if g.Timing != 0 {
		out = append(out, morph.TimingGuidance{Multiplier: g.Timing})
	}
	if len(g.Remove) > 0 {
		var kr morph.KeyRemapGuidance
		for _, k := range g.Remove {
			kr.Remove = append(kr.Remove, morph.KeyRemoval{Key: k})
		}
		out = append(out, kr)
	}
	if g.CornerRadius != nil || g.DisableShadow {
		pg := morph.PortalGuidance{DisableShadow: g.DisableShadow}
		if g.CornerRadius != nil {
			pg.CornerRadius = *g.CornerRadius
		}
		out = append(out, pg)
	}
	return out
}

func parseDirection(s string) (morph.Direction, error) {
	switch strings.ToLower(s) {
	case "", "forward":
		return morph.Forward, nil
	case "reverse":
		return morph.Reverse, nil
	default:
		return morph.Forward, fmt.Errorf("direction %q: want forward or reverse: %w", s, errSceneFile)
	}
}

// parseHexColor parses "#rrggbb" or "#rrggbbaa".
func parseHexColor(s string) (morph.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return morph.Color{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa: %w", s, errSceneFile)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return morph.Color{}, fmt.Errorf("color %q: %w", s, errSceneFile)
	}
	channel := func(shift uint) float64 { return float64((v>>shift)&0xff) / 255 }
	return morph.Color{R: channel(24), G: channel(16), B: channel(8), A: channel(0)}, nil
}

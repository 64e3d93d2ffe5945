package morph

import (
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Stage is the top-level object of an ebiten game using morph. It owns the
// root element that host scenes are attached to and transitions compose
// over, drives running animators once per tick and draws the tree.
type Stage struct {
	root      *Element
	debug     bool
	animators []*Animator
	comp      compositor
	log       *log.Logger
}

// NewStage creates a stage whose root container covers width x height.
func NewStage(width, height float64) *Stage {
	return &Stage{
		root: NewContainer("stage", Rect{Width: width, Height: height}),
		log:  defaultLogger(),
	}
}

// Root returns the stage's root container.
func (s *Stage) Root() *Element {
	return s.root
}

// SetLogger replaces the logger used for per-frame diagnostics.
func (s *Stage) SetLogger(l *log.Logger) {
	if l != nil {
		s.log = l
	}
}

// SetDebugMode enables or disables debug mode. When enabled, tree operations
// on disposed elements panic, tree depth and child count warnings are
// logged and draw timings are logged at debug level.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	if enabled {
		debugLogger = newLogger(os.Stderr, log.DebugLevel)
	} else {
		debugLogger = newLogger(os.Stderr, log.WarnLevel)
	}
}

// Transition builds a scene from req over this stage, composes an animator
// for it and starts it. The animator is advanced by Update until it has
// cleaned up.
func (s *Stage) Transition(req SceneRequest, opts Options) (*Animator, error) {
	if req.Stage == nil {
		req.Stage = s.root
	}
	scene, err := BuildScene(req)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = s.log
	}
	a, err := NewAnimator(scene, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Play(a); err != nil {
		a.Cleanup()
		return nil, err
	}
	return a, nil
}

// Play runs a if it has not been run and adds it to the animators advanced
// by Update.
func (s *Stage) Play(a *Animator) error {
	if a.State() < StateRunning {
		if err := a.Run(); err != nil {
			return err
		}
	}
	if !a.Done() && !slices.Contains(s.animators, a) {
		s.animators = append(s.animators, a)
	}
	return nil
}

// Animating reports whether any animator is still running.
func (s *Stage) Animating() bool {
	return len(s.animators) > 0
}

// Update advances every running animator by one tick (1/TPS seconds) and
// drops those that have cleaned up.
func (s *Stage) Update() {
	s.Advance(1.0 / float64(ebiten.TPS()))
}

// Advance advances every running animator by dt seconds.
func (s *Stage) Advance(dt float64) {
	for _, a := range s.animators {
		a.Update(dt)
	}
	s.animators = slices.DeleteFunc(s.animators, (*Animator).Done)
}

// Draw renders the stage tree to screen.
func (s *Stage) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	s.comp.draw(screen, s.root, identityTransform)
	if s.debug {
		s.log.Debug("frame drawn", "elapsed", time.Since(t0), "animators", len(s.animators))
	}
}

// Dispose interrupts running animators and releases the stage's offscreen
// images. The element tree is left to its owner.
func (s *Stage) Dispose() {
	for _, a := range s.animators {
		a.Interrupt()
	}
	s.animators = nil
	s.comp.dispose()
}

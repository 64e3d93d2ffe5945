package morph

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// AnimatorState is the lifecycle stage of an Animator.
type AnimatorState uint8

const (
	StateBuilt     AnimatorState = iota // graph composed, stage untouched
	StatePrepared                       // graph attached and laid out
	StateScheduled                      // timelines created
	StateRunning                        // timelines advancing
	StateCompleted                      // master reached its end value
	StateCancelled                      // master was interrupted
	StateCleanedUp                      // graph detached, callbacks invoked
)

func (s AnimatorState) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StatePrepared:
		return "prepared"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateCleanedUp:
		return "cleaned up"
	default:
		return fmt.Sprintf("AnimatorState(%d)", s)
	}
}

// Options configures NewAnimator. The zero value is usable.
type Options struct {
	// Config overrides DefaultConfig.
	Config *Config
	// Snapshotter captures replicas. Defaults to an ImageSnapshotter.
	Snapshotter Snapshotter
	// Logger receives lifecycle logs. Defaults to the standard logger with
	// a "morph" prefix.
	Logger *log.Logger
}

// Animator composes and drives one transition. It is owned by a single
// goroutine; none of its methods are safe for concurrent use.
type Animator struct {
	// ID correlates the log lines of one transition.
	ID uuid.UUID

	scene    *Scene
	cfg      Config
	log      *log.Logger
	layout   *Layout
	g        *graph
	curve    *TimingCurve
	duration time.Duration

	state     AnimatorState
	master    *Timeline
	timelines []*Timeline // master last

	completions []func(Position)
	final       Position
	fromHidden  bool
}

// NewAnimator composes the transient graph for scene: it computes every
// node's geometry and takes every snapshot. The stage is not modified; on
// error nothing needs to be undone.
func NewAnimator(scene *Scene, opts Options) (*Animator, error) {
	if scene == nil || scene.Stage == nil || scene.Bases.From == nil || scene.Bases.To == nil {
		return nil, &CompositionError{Node: "scene", Err: ErrMissingBase}
	}
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	snap := opts.Snapshotter
	if snap == nil {
		snap = NewImageSnapshotter(1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	a := &Animator{
		ID:     uuid.New(),
		scene:  scene,
		cfg:    cfg,
		layout: NewLayout(),
		curve:  NewTimingCurve(cfg.Timing),
		final:  PositionStart,
	}
	a.log = logger.With("transition", a.ID.String())
	a.duration = scene.durationOr(cfg.Duration)

	g, err := compose(scene, cfg, snap, a.layout)
	if err != nil {
		a.log.Error("compose transition", "err", err)
		return nil, err
	}
	a.g = g
	a.describe()
	return a, nil
}

// describe logs the scene geometry at debug level.
func (a *Animator) describe() {
	if a.log.GetLevel() > log.DebugLevel {
		return
	}
	portal := a.g.node(a.g.portal)
	end, _ := portal.EndPlacement()
	a.log.Debug("scene",
		"stage", a.scene.Stage.Bounds(),
		"from", a.g.node(a.g.bases.From).start,
		"to", a.g.node(a.g.bases.To).start,
		"portalFrom", portal.start,
		"portalTo", end,
		"growth", a.g.growth,
		"flow", a.g.flow,
		"direction", a.scene.Direction,
		"duration", a.duration,
		"morphing", len(a.g.morphing),
		"exiting", len(a.g.exiting),
		"entering", len(a.g.entering),
	)
}

// State returns the lifecycle stage.
func (a *Animator) State() AnimatorState { return a.state }

// Scene returns the scene being animated.
func (a *Animator) Scene() *Scene { return a.scene }

// Growth returns how the portal changes size.
func (a *Animator) Growth() Growth { return a.g.growth }

// Flow returns the transition's flow.
func (a *Animator) Flow() Flow { return a.g.flow }

// Duration returns the duration shared by every timeline.
func (a *Animator) Duration() time.Duration { return a.duration }

// Layout returns the resolver that positions the transient nodes.
func (a *Animator) Layout() *Layout { return a.layout }

// Nodes returns every node in composition order. The returned slice MUST NOT
// be mutated by the caller.
func (a *Animator) Nodes() []*Node { return a.g.nodes }

// Node returns the node with the given ID, or nil.
func (a *Animator) Node(id NodeID) *Node { return a.g.node(id) }

// NodesOf returns the nodes of kind k in composition order.
func (a *Animator) NodesOf(k NodeKind) []*Node {
	var out []*Node
	for _, n := range a.g.nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// Portal returns the portal node.
func (a *Animator) Portal() *Node { return a.g.node(a.g.portal) }

// Base returns the base node for side s.
func (a *Animator) Base(s Side) *Node { return a.g.node(a.g.bases.At(s)) }

// Acetate returns the group carrying the exiting (SideFrom) or entering
// (SideTo) leaves.
func (a *Animator) Acetate(s Side) *Node { return a.g.node(a.g.acetates.At(s)) }

// Shadow returns the portal shadow node, or nil.
func (a *Animator) Shadow() *Node { return a.g.node(a.g.shadow) }

// Effect returns the blur node, or nil.
func (a *Animator) Effect() *Node { return a.g.node(a.g.effect) }

// Master returns the timeline whose completion ends the transition, or nil
// before scheduling.
func (a *Animator) Master() *Timeline { return a.master }

// Timelines returns every scheduled timeline, master last.
func (a *Animator) Timelines() []*Timeline { return a.timelines }

// OnCompletion registers fn to run once the transition has been torn down.
// Callbacks run in registration order and receive PositionEnd when the
// master finished, PositionCurrent when it was interrupted and PositionStart
// when the animator was cleaned up without running. Registering after
// cleanup runs fn immediately.
func (a *Animator) OnCompletion(fn func(Position)) {
	if fn == nil {
		return
	}
	if a.state == StateCleanedUp {
		fn(a.final)
		return
	}
	a.completions = append(a.completions, fn)
}

// Prepare activates every constraint, applies start values, attaches the
// graph to the stage in paint order, hides the real scene roots and runs one
// layout pass.
func (a *Animator) Prepare() error {
	if a.state != StateBuilt {
		return fmt.Errorf("prepare in state %s: %w", a.state, ErrInvalidState)
	}
	g := a.g
	stage := a.scene.Stage

	for _, n := range g.nodes {
		n.constraint.Activate()
		for _, f := range []*Element{n.faces.From, n.faces.To} {
			if f == nil {
				continue
			}
			if h := a.layout.Handle(f); h != nil {
				h.Activate()
			}
		}
		n.applyStart()
	}

	portal := g.node(g.portal)
	attach := func(parent *Element, id NodeID) {
		if n := g.node(id); n != nil {
			parent.AddChild(n.content)
		}
	}
	switch g.growth {
	case GrowthStatic:
		attach(stage, g.bases.From)
		attach(stage, g.portal)
		attach(portal.content, g.bases.To)
	case GrowthExpanding:
		attach(stage, g.bases.From)
		attach(stage, g.effect)
		attach(stage, g.shadow)
		attach(stage, g.portal)
		attach(portal.content, g.bases.To)
	case GrowthContracting:
		attach(stage, g.bases.To)
		attach(stage, g.effect)
		attach(stage, g.shadow)
		attach(stage, g.portal)
		attach(portal.content, g.bases.From)
	}
	if a.scene.Direction == Forward {
		attach(stage, g.acetates.From)
		attach(portal.content, g.acetates.To)
	} else {
		attach(stage, g.acetates.To)
		attach(portal.content, g.acetates.From)
	}
	exiting := g.node(g.acetates.From).content
	for _, id := range g.exiting {
		attach(exiting, id)
	}
	for _, id := range g.morphing {
		attach(portal.content, id)
	}
	entering := g.node(g.acetates.To).content
	for _, id := range g.entering {
		attach(entering, id)
	}

	a.fromHidden = a.scene.Bases.From.Hidden
	a.scene.Bases.From.Hidden = true
	a.scene.Bases.To.Hidden = true

	a.layout.Resolve(stage)
	for _, side := range []Side{SideFrom, SideTo} {
		n := g.node(g.acetates.At(side))
		origin, _ := n.content.layoutOrigin(stage)
		n.content.SetAnchor(Vec2{n.Focus.X - origin.X, n.Focus.Y - origin.Y})
	}

	a.state = StatePrepared
	a.log.Debug("prepared", "nodes", len(g.nodes), "bound", a.layout.Len())
	return nil
}

// Schedule creates one timeline per moving node and designates the master:
// the portal's timeline when the portal changes size, otherwise the incoming
// base's.
func (a *Animator) Schedule() error {
	if a.state != StatePrepared {
		return fmt.Errorf("schedule in state %s: %w", a.state, ErrInvalidState)
	}
	g := a.g
	fn := a.curve.Ease()
	var timelines []*Timeline
	timeline := func(n *Node) *Timeline {
		tl := NewTimeline(n.Name, a.duration, fn)
		n.timeline = tl
		timelines = append(timelines, tl)
		return tl
	}
	move := func(n *Node, tl *Timeline) {
		if n.end != nil {
			tl.AddTrack(func(p float64) { n.constraint.SetPlacement(n.placementAt(p)) })
		}
	}
	fade := func(n *Node, tl *Timeline, w Window) {
		tl.AddKeyframe(w, func(p float64) { n.content.Alpha = lerp(n.Opacity.Start, n.Opacity.End, p) })
	}

	if from := g.node(g.bases.From); a.scene.Direction == Reverse {
		fade(from, timeline(from), Window{0, 1})
	}
	to := g.node(g.bases.To)
	toTimeline := timeline(to)
	fade(to, toTimeline, Window{0, 1})
	move(to, toTimeline)

	portal := g.node(g.portal)
	portalTimeline := timeline(portal)
	move(portal, portalTimeline)

	if shadow := g.node(g.shadow); shadow != nil {
		in, out := a.cfg.Shadow.FadeIn, a.cfg.Shadow.FadeOut
		timeline(shadow).AddTrack(func(p float64) {
			shadow.content.Alpha = in.progress(p) * (1 - out.progress(p))
		})
	}
	if effect := g.node(g.effect); effect != nil {
		from, to := boolAmount(effect.Active.Start), boolAmount(effect.Active.End)
		timeline(effect).AddTrack(func(p float64) {
			effect.content.BlurAmount = clamp01(lerp(from, to, p))
		})
	}
	for _, side := range []Side{SideTo, SideFrom} {
		ac := g.node(g.acetates.At(side))
		timeline(ac).AddTrack(func(p float64) {
			ac.content.Group = ac.Group.Start.Lerp(ac.Group.End, p)
		})
	}
	for _, id := range g.morphing {
		n := g.node(id)
		tl := timeline(n)
		move(n, tl)
		tl.AddTrack(func(p float64) {
			n.faces.From.Alpha = 1 - clamp01(p)
			n.faces.To.Alpha = clamp01(p)
		})
	}
	for _, id := range g.exiting {
		n := g.node(id)
		tl := timeline(n)
		move(n, tl)
		fade(n, tl, a.cfg.ExitFade)
	}
	for _, id := range g.entering {
		n := g.node(id)
		tl := timeline(n)
		move(n, tl)
		fade(n, tl, a.cfg.EnterFade)
	}

	a.master = toTimeline
	if g.growth != GrowthStatic {
		a.master = portalTimeline
	}
	a.timelines = a.timelines[:0]
	for _, tl := range timelines {
		if tl != a.master {
			a.timelines = append(a.timelines, tl)
		}
	}
	a.timelines = append(a.timelines, a.master)
	a.master.OnComplete(a.masterDone)

	a.state = StateScheduled
	a.log.Debug("scheduled", "timelines", len(a.timelines), "master", a.master.Name, "duration", a.duration)
	return nil
}

// Run prepares and schedules the transition if needed, then starts every
// timeline together. Running an animator twice returns ErrInvalidState.
func (a *Animator) Run() error {
	if a.state == StateBuilt {
		if err := a.Prepare(); err != nil {
			return err
		}
	}
	if a.state == StatePrepared {
		if err := a.Schedule(); err != nil {
			return err
		}
	}
	if a.state != StateScheduled {
		return fmt.Errorf("run in state %s: %w", a.state, ErrInvalidState)
	}
	a.state = StateRunning
	a.log.Info("transition started", "growth", a.g.growth, "direction", a.scene.Direction, "timelines", len(a.timelines))
	for _, tl := range a.timelines {
		tl.Start()
	}
	if a.state == StateRunning {
		a.layout.Resolve(a.scene.Stage)
	}
	return nil
}

// Update advances every running timeline by dt seconds, master last, then
// lays out the graph.
func (a *Animator) Update(dt float64) {
	if a.state != StateRunning {
		return
	}
	for _, tl := range a.timelines {
		tl.Update(float32(dt))
		if a.state != StateRunning {
			return
		}
	}
	a.layout.Resolve(a.scene.Stage)
}

// Interrupt stops the transition where it is: every timeline freezes at its
// current value and the graph is torn down.
func (a *Animator) Interrupt() {
	if a.state != StateRunning {
		return
	}
	a.master.Interrupt()
}

// Done reports whether the transition has been torn down.
func (a *Animator) Done() bool { return a.state == StateCleanedUp }

// Play runs the transition, calling Update tps times per second until it
// completes. Cancelling ctx interrupts the transition and returns ctx.Err().
func (a *Animator) Play(ctx context.Context, tps int) error {
	if tps <= 0 {
		tps = 60
	}
	if a.state < StateRunning {
		if err := a.Run(); err != nil {
			return err
		}
	}
	if a.state != StateRunning {
		return nil
	}
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.Interrupt()
			return ctx.Err()
		case now := <-ticker.C:
			a.Update(now.Sub(last).Seconds())
			last = now
			if a.state != StateRunning {
				return nil
			}
		}
	}
}

// Cleanup tears the transition down immediately. A running transition is
// interrupted; an animator that never ran releases its replicas. Calling
// Cleanup again has no effect.
func (a *Animator) Cleanup() {
	switch a.state {
	case StateCleanedUp:
		return
	case StateRunning:
		a.Interrupt()
	default:
		for _, tl := range a.timelines {
			tl.Stop()
		}
		a.cleanup(PositionStart)
	}
}

// masterDone runs when the master timeline completes or is interrupted.
func (a *Animator) masterDone(pos Position) {
	if pos == PositionEnd {
		a.state = StateCompleted
		for _, tl := range a.timelines {
			if tl == a.master {
				continue
			}
			if tl.State() == TimelineRunning && tl.Progress() < 1 {
				a.log.Warn("timeline drifted from master", "timeline", tl.Name, "progress", tl.Progress())
			}
			// Snap to the end; the graph is detached right after this.
			tl.Finish()
		}
	} else {
		a.state = StateCancelled
		for _, tl := range a.timelines {
			tl.Stop()
		}
	}
	a.cleanup(pos)
}

// cleanup detaches and disposes the graph, restores the incoming scene and
// fires the completion callbacks. It runs at most once.
func (a *Animator) cleanup(pos Position) {
	if a.state == StateCleanedUp {
		return
	}
	prev := a.state
	for _, n := range a.g.nodes {
		a.layout.Unbind(n.content)
		for _, f := range []*Element{n.faces.From, n.faces.To} {
			if f != nil {
				a.layout.Unbind(f)
			}
		}
	}
	for _, n := range a.g.nodes {
		n.content.Dispose()
	}
	if prev != StateBuilt {
		// Hosts hide the incoming root before running; it is always shown
		// afterwards. The outgoing root stays hidden unless nothing moved.
		a.scene.Bases.To.Hidden = false
		if pos == PositionStart {
			a.scene.Bases.From.Hidden = a.fromHidden
		}
	}
	a.scene.Bases.To.Alpha = 1

	a.final = pos
	a.state = StateCleanedUp
	a.log.Info("transition finished", "from", prev, "position", pos)

	callbacks := a.completions
	a.completions = nil
	for _, fn := range callbacks {
		fn(pos)
	}
}

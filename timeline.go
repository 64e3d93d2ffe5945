package morph

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TimelineState is the lifecycle stage of a Timeline.
type TimelineState uint8

const (
	TimelineIdle     TimelineState = iota // created, not started
	TimelineRunning                       // advancing on Update
	TimelineStopped                       // frozen at its current value
	TimelineFinished                      // reached its end value
)

func (s TimelineState) String() string {
	switch s {
	case TimelineRunning:
		return "running"
	case TimelineStopped:
		return "stopped"
	case TimelineFinished:
		return "finished"
	default:
		return "idle"
	}
}

// track applies one animated property at a given progress.
type track struct {
	window Window
	apply  func(p float64)
}

// Timeline drives every animated property of one node. A single gween tween
// produces eased progress from 0 to 1; each track maps that progress through
// its keyframe window onto its property.
//
// There is no global animation manager: the owner calls Update each frame.
type Timeline struct {
	Name string

	duration time.Duration
	tween    *gween.Tween
	tracks   []track
	progress float64
	state    TimelineState

	onComplete func(Position)
}

// NewTimeline creates an idle timeline of the given duration using easing fn.
func NewTimeline(name string, duration time.Duration, fn ease.TweenFunc) *Timeline {
	if fn == nil {
		fn = ease.Linear
	}
	return &Timeline{
		Name:     name,
		duration: duration,
		tween:    gween.New(0, 1, float32(duration.Seconds()), fn),
	}
}

// AddTrack animates a property over the whole timeline. apply receives
// eased progress.
func (tl *Timeline) AddTrack(apply func(p float64)) {
	tl.tracks = append(tl.tracks, track{window: Window{Start: 0, Duration: 1}, apply: apply})
}

// AddKeyframe animates a property only within w; before the window apply
// receives 0 and after it 1.
func (tl *Timeline) AddKeyframe(w Window, apply func(p float64)) {
	tl.tracks = append(tl.tracks, track{window: w, apply: apply})
}

// OnComplete registers the single completion callback, replacing any
// previous one. It receives PositionEnd on natural completion and
// PositionCurrent on interruption.
func (tl *Timeline) OnComplete(fn func(Position)) {
	tl.onComplete = fn
}

// Duration returns the configured duration.
func (tl *Timeline) Duration() time.Duration { return tl.duration }

// Progress returns the current eased progress.
func (tl *Timeline) Progress() float64 { return tl.progress }

// State returns the lifecycle stage.
func (tl *Timeline) State() TimelineState { return tl.state }

// NumTracks returns how many properties the timeline animates.
func (tl *Timeline) NumTracks() int { return len(tl.tracks) }

// Start begins playback from progress 0. Starting a timeline that is not
// idle has no effect.
func (tl *Timeline) Start() {
	if tl.state != TimelineIdle {
		return
	}
	tl.state = TimelineRunning
	tl.apply(0)
	if tl.duration <= 0 {
		tl.complete()
	}
}

// Update advances the timeline by dt seconds and applies every track. It
// reports whether the timeline finished during this call.
func (tl *Timeline) Update(dt float32) bool {
	if tl.state != TimelineRunning {
		return false
	}
	v, done := tl.tween.Update(dt)
	if done {
		tl.complete()
		return true
	}
	tl.apply(float64(v))
	return false
}

// Stop freezes the timeline at its current value without notifying.
func (tl *Timeline) Stop() {
	if tl.state == TimelineRunning || tl.state == TimelineIdle {
		tl.state = TimelineStopped
	}
}

// Interrupt freezes the timeline at its current value and notifies the
// completion callback with PositionCurrent.
func (tl *Timeline) Interrupt() {
	if tl.state != TimelineRunning {
		return
	}
	tl.state = TimelineStopped
	if tl.onComplete != nil {
		tl.onComplete(PositionCurrent)
	}
}

// Finish snaps every track to its end value without notifying.
func (tl *Timeline) Finish() {
	if tl.state == TimelineFinished {
		return
	}
	tl.apply(1)
	tl.state = TimelineFinished
}

func (tl *Timeline) complete() {
	tl.apply(1)
	tl.state = TimelineFinished
	if tl.onComplete != nil {
		tl.onComplete(PositionEnd)
	}
}

func (tl *Timeline) apply(p float64) {
	tl.progress = p
	for _, tr := range tl.tracks {
		tr.apply(tr.window.progress(p))
	}
}

// Package morph composes and drives layered transitions between two scenes
// of an element tree rendered with [Ebitengine].
//
// A transition starts from two scene roots that live on the same stage: the
// outgoing scene and the incoming scene. Each side names the elements that
// take part. Elements named on both sides morph from their outgoing frame
// to their incoming one; elements named on one side only exit or enter,
// travelling along the transition's aggregate motion (its [Flow]). Whole
// scenes are replaced by snapshots for the duration, a portal element
// clips the incoming content while it grows or shrinks, and a shadow and a
// blur follow the portal when its size changes.
//
// # Quick start
//
//	stage := morph.NewStage(640, 480)
//	stage.Root().AddChild(grid)   // outgoing scene root
//	stage.Root().AddChild(detail) // incoming scene root
//
//	a, err := stage.Transition(morph.SceneRequest{
//		Sources: morph.NewPair[morph.ViewSource](gridViews, detailViews),
//		Bases:   morph.NewPair(grid, detail),
//	}, morph.Options{})
//	if err != nil {
//		return err
//	}
//	a.OnCompletion(func(pos morph.Position) { ... })
//
// [Stage.Update] advances running transitions once per tick and
// [Stage.Draw] renders the tree. Without a game loop, build the pieces
// directly: [BuildScene] classifies the named elements, [NewAnimator]
// composes the transient node graph and takes every snapshot, and
// [Animator.Run] attaches the graph and starts its timelines. Drive it with
// [Animator.Update] or the blocking [Animator.Play].
//
// # Elements
//
// Every visual element is an [Element]. Elements form a tree; frames are
// in the parent's coordinate space with the origin at the top-left. An
// element's [GroupTransform] translates and scales its subtree about its
// anchor without affecting layout.
//
// # Lifecycle
//
// An [Animator] moves through Built, Prepared, Scheduled and Running, ends
// either Completed or Cancelled, and is finally CleanedUp. Cleanup removes
// every transient node, disposes every replica, restores the real scene
// roots and invokes completion callbacks exactly once, in registration
// order. [Animator.Interrupt] freezes the transition where it is.
//
// # Configuration
//
// Tuning constants live in [Config]; [DefaultConfig] returns the standard
// values and [LoadConfig] reads overrides from YAML or TOML.
//
// [Ebitengine]: https://ebitengine.org
package morph

package cli

import (
	"context"
	"fmt"

	"github.com/phanxgames/morph"
)

// transition is a composed animator together with the stage it plays on.
type transition struct {
	stage    *morph.Element
	animator *morph.Animator
}

// composeTransition loads the scene file at path and composes its animator
// with the configured tuning. Snapshots are rasterized on the CPU so no
// window is needed.
func composeTransition(ctx context.Context, opts *rootOpts, path string) (*transition, error) {
	logger := loggerFromContext(ctx)

	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	sf, err := loadSceneFile(path)
	if err != nil {
		return nil, err
	}
	built, err := sf.build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	scene, err := morph.BuildScene(built.request)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	logger.Debug("scene built",
		"morphing", len(scene.Morphing),
		"exiting", len(scene.Exiting),
		"entering", len(scene.Entering),
		"direction", scene.Direction)

	a, err := morph.NewAnimator(scene, morph.Options{
		Config:      &cfg,
		Snapshotter: morph.NewImageSnapshotter(1),
		Logger:      logger.WithPrefix("morph"),
	})
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	return &transition{stage: built.stage, animator: a}, nil
}

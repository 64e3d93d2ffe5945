package cli

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/morph"
)

const defaultTPS = 60

// playOpts holds the command-line flags for the play command.
type playOpts struct {
	tps      int  // updates per simulated second
	realtime bool // pace updates with the wall clock
}

// newPlayCmd creates the play command, which runs a transition headless.
// By default the transition is stepped as fast as possible with a fixed
// timestep; --realtime paces it with a ticker instead.
func newPlayCmd(opts *rootOpts) *cobra.Command {
	po := playOpts{tps: defaultTPS}

	cmd := &cobra.Command{
		Use:   "play [scene.yaml]",
		Short: "Run a transition headless and report how it finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if po.tps <= 0 {
				return fmt.Errorf("--tps must be positive, got %d", po.tps)
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			t, err := composeTransition(ctx, opts, args[0])
			if err != nil {
				return err
			}
			a := t.animator
			defer a.Cleanup()

			var final morph.Position
			a.OnCompletion(func(p morph.Position) { final = p })

			prog := newProgress(logger)
			frames := 0
			if po.realtime {
				err = a.Play(ctx, po.tps)
			} else {
				frames, err = step(ctx, a, po.tps, logger)
			}
			if err != nil {
				return err
			}
			if po.realtime {
				prog.done(fmt.Sprintf("Transition finished at %s", final))
			} else {
				prog.done(fmt.Sprintf("Transition finished at %s after %d frames", final, frames))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", a.ID, final, frames)
			return err
		},
	}

	cmd.Flags().IntVar(&po.tps, "tps", po.tps, "updates per second")
	cmd.Flags().BoolVar(&po.realtime, "realtime", false, "pace updates with the wall clock")
	return cmd
}

// step runs a with a fixed timestep of 1/tps seconds until it cleans up and
// returns the number of updates. A transition still running a second past
// its duration is interrupted.
func step(ctx context.Context, a *morph.Animator, tps int, logger *log.Logger) (int, error) {
	if err := a.Run(); err != nil {
		return 0, err
	}
	dt := 1 / float64(tps)
	expected := max(1, int(math.Ceil(a.Duration().Seconds()*float64(tps))))
	limit := expected + tps

	frames := 0
	quarter := 1
	for !a.Done() {
		if err := ctx.Err(); err != nil {
			a.Interrupt()
			return frames, err
		}
		if frames >= limit {
			a.Interrupt()
			return frames, fmt.Errorf("transition still %s after %d frames", a.State(), frames)
		}
		a.Update(dt)
		frames++
		if !a.Done() {
			logger.Debug("frame", "n", frames, "progress", a.Master().Progress())
		}
		if frames*4 >= expected*quarter && quarter < 4 {
			logger.Info("playing", "elapsed", fmt.Sprintf("%d%%", quarter*25), "state", a.State())
			quarter++
		}
	}
	return frames, nil
}

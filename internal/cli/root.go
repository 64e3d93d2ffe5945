package cli

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/morph"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version. It is
// called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOpts holds the persistent flags shared by every command.
type rootOpts struct {
	verbose    bool
	configPath string // YAML or TOML tuning file, see morph.LoadConfig
}

// config returns the tuning to compose transitions with: the file named by
// --config on top of the defaults, or the defaults alone.
func (o *rootOpts) config() (morph.Config, error) {
	if o.configPath == "" {
		return morph.DefaultConfig(), nil
	}
	return morph.LoadConfig(o.configPath)
}

// logLevel is the level for both the CLI and the engine loggers.
func (o *rootOpts) logLevel() charmlog.Level {
	if o.verbose {
		return charmlog.DebugLevel
	}
	return charmlog.InfoLevel
}

// NewRootCommand builds the morphctl command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, including the engine's lifecycle logs
func NewRootCommand() *cobra.Command {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "morphctl",
		Short:        "morphctl composes and plays morph transitions",
		Long:         `morphctl loads a transition between two element trees from a YAML scene file, composes the layered node graph the morph engine would animate and reports or plays it without a window.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(cmd.ErrOrStderr(), opts.logLevel())))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("morphctl %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "transition tuning file (.yaml, .yml or .toml)")

	root.AddCommand(newPlanCmd(opts))
	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newGraphCmd(opts))

	return root
}

// Execute runs the morphctl CLI with ctx and returns an error if any
// command fails.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// Command vivid generates accessible descriptions of videos from the terminal
// and manages the saved profiles and theme shared with the web app.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/app"
	"github.com/markdave123-py/Vivid/internal/config"
	"github.com/markdave123-py/Vivid/internal/core"
	"github.com/markdave123-py/Vivid/internal/logging"
)

// cli carries what the subcommands share once PersistentPreRunE has run.
type cli struct {
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger

	// openProvider is swapped out in tests.
	openProvider app.ProviderOpener
}

func newRootCmd() *cobra.Command {
	return (&cli{openProvider: app.OpenProvider}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vivid",
		Short: "Accessible video descriptions powered by Gemini",
		Long: `vivid sends a video to Gemini and prints a description written for
blind and low-vision audiences. The description can then be refined in a
follow-up conversation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.cfg = config.LoadConfig()
			level := "warn"
			if c.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, false)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(c.describeCmd(), c.profilesCmd(), c.themeCmd())
	return root
}

// openKV opens only the key-value store; profile and theme commands need no model.
func (c *cli) openKV(ctx context.Context) (core.KVStore, error) {
	return app.OpenKV(ctx, c.cfg)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

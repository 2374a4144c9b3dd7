// Package cli provides the command-line interface for the activity feed.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ActivityFeed/internal/app"
	"ActivityFeed/internal/config"
	"ActivityFeed/internal/domain"
	"ActivityFeed/internal/logging"
	"ActivityFeed/internal/usecase"
)

// Exit codes returned by Execute.
const (
	ExitSuccess         = 0
	ExitInvalid         = 1
	ExitUnauthenticated = 2
	ExitUpstream        = 3
	ExitInternal        = 4
)

// Opener builds the application for a loaded config.
type Opener func(cfg config.Config) (*app.Application, error)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	out     io.Writer
	errOut  io.Writer
	open    Opener
	app     *app.Application

	// Global flags
	viewer    string
	limit     int
	scanLimit int
	mode      string
}

// Option customizes a CLI.
type Option func(*CLI)

// WithOutput redirects stdout and stderr.
func WithOutput(out, errOut io.Writer) Option {
	return func(c *CLI) {
		c.out = out
		c.errOut = errOut
	}
}

// WithOpener replaces the Postgres-backed application.
func WithOpener(open Opener) Option {
	return func(c *CLI) { c.open = open }
}

// New creates a new CLI instance.
func New(opts ...Option) *CLI {
	c := &CLI{
		out:    os.Stdout,
		errOut: os.Stderr,
		open: func(cfg config.Config) (*app.Application, error) {
			logger := logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
			return app.Open(cfg, logger)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rootCmd = c.newRootCmd()
	return c
}

// Execute runs the CLI with args and returns the process exit code.
func (c *CLI) Execute(ctx context.Context, args []string) int {
	c.rootCmd.SetArgs(args)
	err := c.rootCmd.ExecuteContext(ctx)
	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(c.errOut, "activityfeed: %v\n", err)
	return exitCode(err)
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "activityfeed",
		Short:         "Ranked, moderated activity feed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(config.Load())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&c.viewer, "viewer", "", "member id the feed is built for")
	cmd.PersistentFlags().IntVar(&c.limit, "limit", 0, "page size (default from config)")
	cmd.PersistentFlags().IntVar(&c.scanLimit, "scan-limit", 0, "events scanned per ranking pass (default from config)")
	cmd.PersistentFlags().StringVar(&c.mode, "mode", "", "moderation mode: hide or placeholder")

	cmd.AddCommand(c.newFeedCmd())
	cmd.AddCommand(c.newReactCmd())
	cmd.AddCommand(c.newCommentCmd())
	cmd.AddCommand(c.newBlockCmd())
	cmd.AddCommand(c.newUnblockCmd())
	cmd.AddCommand(c.newReportCmd())

	return cmd
}

func (c *CLI) ctx(cmd *cobra.Command) context.Context {
	return usecase.WithViewer(cmd.Context(), c.viewer)
}

func (c *CLI) options() usecase.Options {
	return usecase.Options{
		Limit:     c.limit,
		ScanLimit: c.scanLimit,
		Mode:      domain.ModerationMode(c.mode),
	}
}

func (c *CLI) outputJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitCode(err error) int {
	failure, ok := usecase.AsFailure(err)
	if !ok {
		return ExitInternal
	}
	switch failure.Code {
	case domain.KindInvalidInput, domain.KindInvalidCursor:
		return ExitInvalid
	case domain.KindUnauthenticated:
		return ExitUnauthenticated
	case domain.KindUpstreamRead, domain.KindUpstreamWrite:
		return ExitUpstream
	default:
		return ExitInternal
	}
}

// Command gitchest is a terminal client for the Git Chest backend.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitchest/gitchest/internal/client"
)

type rootOptions struct {
	api     string
	timeout time.Duration
	json    bool
	verbose bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "gitchest",
		Short:         "CLI client for the Git Chest backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	defaultAPI := os.Getenv("GITCHEST_API")
	if defaultAPI == "" {
		defaultAPI = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVarP(&opts.api, "api", "a", defaultAPI, "Git Chest backend base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(
		newUserCmd(opts),
		newProfileCmd(opts),
		newToastCmd(opts),
		newLayoutCmd(opts),
	)
	return root
}

func (o *rootOptions) client() *client.Client {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return client.New(client.Options{BaseURL: o.api, Timeout: o.timeout}, logger)
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gitchest/gitchest/internal/toast"
)

func newToastCmd(opts *rootOptions) *cobra.Command {
	toastCmd := &cobra.Command{Use: "toast", Short: "Toast notifications"}

	var (
		description string
		level       string
	)
	sendCmd := &cobra.Command{
		Use:   "send TITLE",
		Short: "Emit a toast on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := toast.ParseLevel(level)
			if err != nil {
				return err
			}
			t := toast.New().Title(args[0]).WithLevel(l)
			if description != "" {
				t = t.Description(description)
			}
			return opts.client().SendToast(cmd.Context(), t.Build())
		},
	}
	sendCmd.Flags().StringVarP(&description, "description", "d", "", "Toast description")
	sendCmd.Flags().StringVarP(&level, "level", "l", string(toast.LevelInfo), "info, success, warning or error")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List visible toasts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := opts.client().ListToasts(cmd.Context())
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), msgs)
			}
			for _, m := range msgs {
				writeToast(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}

	dismissCmd := &cobra.Command{
		Use:   "dismiss TOAST_ID",
		Short: "Dismiss a toast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.client().DismissToast(cmd.Context(), args[0])
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print toasts as the backend emits them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchToasts(ctx, opts, cmd.OutOrStdout())
		},
	}

	toastCmd.AddCommand(sendCmd, listCmd, dismissCmd, watchCmd)
	return toastCmd
}

// watchToasts mounts a local feed on the backend's event stream and prints
// every toast added to it until ctx is done.
func watchToasts(ctx context.Context, opts *rootOptions, w io.Writer) error {
	store := toast.NewStore(toast.StoreOptions{})
	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	feed := toast.NewFeed(opts.client(), store, slog.New(slog.DiscardHandler), nil)
	if err := feed.Mount(ctx); err != nil {
		return err
	}
	defer feed.Unmount()

	seen := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil
		case list := <-updates:
			for _, m := range list {
				if seen[m.ID] {
					continue
				}
				seen[m.ID] = true
				writeToast(w, m)
			}
		}
	}
}

func writeToast(w io.Writer, m toast.Message) {
	if m.Description != nil {
		fmt.Fprintf(w, "[%s] %s: %s (%s)\n", m.Type, m.Title, *m.Description, m.ID)
		return
	}
	fmt.Fprintf(w, "[%s] %s (%s)\n", m.Type, m.Title, m.ID)
}

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitchest/gitchest/internal/assets"
	"github.com/gitchest/gitchest/internal/profile"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile USER_ID",
		Short: "Show the profile card of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			convert := assets.Converter{BaseURL: c.BaseURL()}.Convert

			view := profile.NewView(c, slog.New(slog.DiscardHandler))
			defer view.Close()

			if !view.SelectParam(cmd.Context(), args[0]) {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			view.Wait()

			state := view.State()
			if state.Err != "" {
				return fmt.Errorf("load user %s: %s", args[0], state.Err)
			}
			if opts.json && state.User != nil {
				return printJSON(cmd.OutOrStdout(), profile.Render(state.User, time.Now(), convert))
			}
			return profile.WriteState(cmd.OutOrStdout(), state, time.Now(), convert)
		},
	}
}

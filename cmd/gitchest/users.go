package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/timefmt"
	"github.com/gitchest/gitchest/internal/units"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	userCmd := &cobra.Command{Use: "user", Short: "Tracked user operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := opts.client().ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), users)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSER\tPLATFORM\tLAST SYNCED")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s ago\n", u.ID, u.User, u.Platform, timefmt.Elapsed(u.UpdatedAt))
			}
			return tw.Flush()
		},
	}

	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Print the stored record of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := opts.client().GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}

	var platform string
	addCmd := &cobra.Command{
		Use:   "add LOGIN",
		Short: "Add a user from a platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.client().AddUser(cmd.Context(), args[0], platform)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (id %d)\n", user.User, user.ID)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&platform, "platform", "p", string(model.PlatformGitHub), "Platform the user belongs to")

	existsCmd := &cobra.Command{
		Use:   "exists LOGIN",
		Short: "Report whether a login is stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, err := opts.client().UserExists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), exists)
			return nil
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh USER_ID",
		Short: "Re-sync a user from its platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := opts.client().RefreshUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed %s\n", user.User)
			return nil
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Re-sync every stored user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			users, err := c.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			failed := 0
			for i, u := range users {
				status := "ok"
				if _, err := c.RefreshUser(cmd.Context(), u.ID); err != nil {
					status = err.Error()
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s: %s\n", units.ProgressPercentage(i, len(users)), u.User, status)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d users failed to sync", failed, len(users))
			}
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm USER_ID",
		Aliases: []string{"remove"},
		Short:   "Remove a user with its profile and avatar",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := opts.client().RemoveUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed user %d\n", id)
			return nil
		},
	}

	userCmd.AddCommand(listCmd, getCmd, addCmd, existsCmd, refreshCmd, syncCmd, rmCmd)
	return userCmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

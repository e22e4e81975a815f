package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layout [PATH]",
		Short: "Show the sidebar for a page path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			sidebar, err := opts.client().Layout(cmd.Context(), path)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), sidebar)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sidebar.Title)
			for _, l := range sidebar.Links {
				marker := " "
				if l.Active {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s\n", marker, l.Title, l.Href)
			}
			return nil
		},
	}
}

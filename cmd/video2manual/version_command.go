package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/video2manual/internal/manual"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "video2manual", manual.AppVersion)
		},
	}
}

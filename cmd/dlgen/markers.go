package main

import (
	"github.com/spf13/cobra"

	"github.com/darklink/dlgen/internal/emit"
)

var markersCmd = &cobra.Command{
	Use:   "markers [package-name]",
	Short: "Print the marker declarations for a package",
	Long:  `Print the file dlgen adds to every package so the //dl: directives resolve. Useful with --emit-markers=never`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "main"
		if len(args) == 1 {
			name = args[0]
		}
		src, err := emit.Markers(name)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(src)
		return err
	},
}

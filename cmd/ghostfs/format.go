package main

import (
	"github.com/spf13/cobra"

	"github.com/mukadr/ghostfs/ghostfs"
)

var formatCmd = &cobra.Command{
	Use:   "format COVER",
	Short: "Lay out a fresh, empty GhostFS volume inside COVER",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ghostfs.Format(args[0])
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
}

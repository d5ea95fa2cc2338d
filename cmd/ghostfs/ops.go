package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mukadr/ghostfs/ghostfs"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir COVER PATH",
	Short: "Create a directory at PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVolume(args[0], func(v *ghostfs.Volume) error {
			return v.Mkdir(args[1])
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create COVER PATH",
	Short: "Create an empty file at PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVolume(args[0], func(v *ghostfs.Volume) error {
			return v.Create(args[1])
		})
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink COVER PATH",
	Short: "Remove the file at PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVolume(args[0], func(v *ghostfs.Volume) error {
			return v.Unlink(args[1])
		})
	},
}

var rmdirCmd = &cobra.Command{
	Use:   "rmdir COVER PATH",
	Short: "Remove the empty directory at PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVolume(args[0], func(v *ghostfs.Volume) error {
			return v.Rmdir(args[1])
		})
	},
}

var truncateCmd = &cobra.Command{
	Use:   "truncate COVER PATH SIZE",
	Short: "Set the file at PATH to exactly SIZE bytes",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var size int64
		if _, err := fmt.Sscanf(args[2], "%d", &size); err != nil {
			return err
		}
		return withVolume(args[0], func(v *ghostfs.Volume) error {
			return v.Truncate(args[1], size)
		})
	},
}

func init() {
	rootCmd.AddCommand(mkdirCmd, createCmd, unlinkCmd, rmdirCmd, truncateCmd)
}

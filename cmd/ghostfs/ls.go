package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mukadr/ghostfs/ghostfs"
)

var lsCmd = &cobra.Command{
	Use:   "ls COVER PATH",
	Short: "List the entries of the directory at PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVolume(args[0], func(v *ghostfs.Volume) error {
			entries, err := v.ReadDir(args[1])
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.IsDir {
					fmt.Printf("%s/\n", e.Name)
				} else {
					fmt.Printf("%s\t%d\n", e.Name, e.Size)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

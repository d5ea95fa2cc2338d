package main

import (
	"github.com/spf13/cobra"

	"github.com/mukadr/ghostfs/ghostfs"
)

var writeCmd = &cobra.Command{
	Use:   "write COVER PATH DATA",
	Short: "Overwrite the file at PATH with DATA, growing it if needed",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := []byte(args[2])
		return withVolume(args[0], func(v *ghostfs.Volume) error {
			if err := v.Truncate(args[1], int64(len(data))); err != nil {
				return err
			}
			h, err := v.Open(args[1])
			if err != nil {
				return err
			}
			defer h.Release()
			_, err = v.Write(h, data, 0)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}

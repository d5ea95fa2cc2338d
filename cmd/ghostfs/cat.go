package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mukadr/ghostfs/ghostfs"
)

var catCmd = &cobra.Command{
	Use:   "cat COVER PATH",
	Short: "Print the contents of the file at PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVolume(args[0], func(v *ghostfs.Volume) error {
			h, err := v.Open(args[1])
			if err != nil {
				return err
			}
			defer h.Release()

			entries, err := v.ReadDir(parentPath(args[1]))
			if err != nil {
				return err
			}
			var size int64
			name := baseName(args[1])
			for _, e := range entries {
				if e.Name == name {
					size = int64(e.Size)
				}
			}

			buf := make([]byte, size)
			if _, err := v.Read(h, buf, 0); err != nil {
				return err
			}
			_, err = os.Stdout.Write(buf)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}

func parentPath(path string) string {
	i := lastSlashIdx(path)
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

func baseName(path string) string {
	i := lastSlashIdx(path)
	return path[i+1:]
}

func lastSlashIdx(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}

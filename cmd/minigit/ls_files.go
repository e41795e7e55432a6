package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLsFilesCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "show the contents of the staging index",
		Args:  cobra.NoArgs,
	}

	debug := cmd.Flags().Bool("debug", false, "show extended stat information for every entry")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsFilesCmd(cmd.OutOrStdout(), cfg, *debug)
	}
	return cmd
}

func lsFilesCmd(out io.Writer, cfg *globalFlags, debug bool) error {
	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}

	for _, e := range idx.Entries {
		fprintln(out, e.Path)
		if debug {
			fmt.Fprintf(out, "  ctime: %d:%d\n", e.CtimeSec, e.CtimeNano)
			fmt.Fprintf(out, "  mtime: %d:%d\n", e.MtimeSec, e.MtimeNano)
			fmt.Fprintf(out, "  dev: %d\tino: %d\n", e.Dev, e.Ino)
			fmt.Fprintf(out, "  uid: %d\tgid: %d\n", e.UID, e.GID)
			fmt.Fprintf(out, "  size: %d\tmode: %o\n", e.Size, e.Mode)
			fmt.Fprintf(out, "  stage: %d\n", e.Stage)
		}
	}
	return nil
}

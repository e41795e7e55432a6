package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newWriteTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-tree",
		Short: "write the current staging index as a tree, printing its oid",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return writeTreeCmd(cmd.OutOrStdout(), cfg)
	}
	return cmd
}

func writeTreeCmd(out io.Writer, cfg *globalFlags) error {
	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}

	oid, err := r.WriteTree(idx)
	if err != nil {
		return err
	}

	fprintln(out, oid.String())
	return nil
}

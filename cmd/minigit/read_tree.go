package main

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newReadTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read-tree TREE",
		Short: "replace the staging index with the contents of a tree",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return readTreeCmd(cmd.OutOrStdout(), cfg, args[0])
	}
	return cmd
}

func readTreeCmd(out io.Writer, cfg *globalFlags, treeName string) error {
	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	oid, err := r.ResolveOid(treeName)
	if err != nil {
		return xerrors.Errorf("not a valid object name %s: %w", treeName, err)
	}

	idx, err := r.ReadTree(oid)
	if err != nil {
		return err
	}

	return r.StoreIndex(idx)
}

package main

import (
	"io"
	"io/ioutil"

	"github.com/sankantsu/minigit/ginternals"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCommitTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-tree TREE",
		Short: "create a commit from a tree and print its oid; the message is read from stdin",
		Args:  cobra.ExactArgs(1),
	}

	parents := cmd.Flags().StringArrayP("parent", "p", nil, "id of a parent commit (may be repeated)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitTreeCmd(cmd.InOrStdin(), cmd.OutOrStdout(), cfg, args[0], *parents)
	}
	return cmd
}

func commitTreeCmd(in io.Reader, out io.Writer, cfg *globalFlags, treeName string, parentNames []string) error {
	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	treeOID, err := r.ResolveOid(treeName)
	if err != nil {
		return xerrors.Errorf("not a valid object name %s: %w", treeName, err)
	}

	parents := make([]ginternals.Oid, 0, len(parentNames))
	for _, p := range parentNames {
		oid, err := r.ResolveOid(p)
		if err != nil {
			return xerrors.Errorf("not a valid parent %s: %w", p, err)
		}
		parents = append(parents, oid)
	}

	message, err := ioutil.ReadAll(in)
	if err != nil {
		return xerrors.Errorf("could not read commit message from stdin: %w", err)
	}

	oid, err := r.CommitTree(treeOID, parents, string(message))
	if err != nil {
		return err
	}

	fprintln(out, oid.String())
	return nil
}

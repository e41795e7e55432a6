package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/sankantsu/minigit/ginternals/object"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCatFileCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat-file {-t|-p} OBJECT",
		Short: "show the type or the pretty-printed content of an object",
		Args:  cobra.ExactArgs(1),
	}

	typeOnly := cmd.Flags().BoolP("t", "t", false, "show the object's type")
	prettyPrint := cmd.Flags().BoolP("p", "p", false, "pretty-print the object's content")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return catFileCmd(cmd.OutOrStdout(), cfg, args[0], *typeOnly, *prettyPrint)
	}
	return cmd
}

func catFileCmd(out io.Writer, cfg *globalFlags, objectName string, typeOnly, prettyPrint bool) error {
	if typeOnly == prettyPrint {
		return errors.New("exactly one of -t or -p must be given")
	}

	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	oid, err := r.ResolveOid(objectName)
	if err != nil {
		return xerrors.Errorf("not a valid object name %s: %w", objectName, err)
	}

	o, err := r.GetObject(oid)
	if err != nil {
		return err
	}

	if typeOnly {
		fprintln(out, o.Type().String())
		return nil
	}

	switch o.Type() {
	case object.TypeCommit:
		c, err := o.AsCommit()
		if err != nil {
			return xerrors.Errorf("could not parse commit: %w", err)
		}
		fmt.Fprintf(out, "tree %s\n", c.TreeID().String())
		for _, id := range c.ParentIDs() {
			fmt.Fprintf(out, "parent %s\n", id.String())
		}
		fmt.Fprintf(out, "author %s\n", c.Author().String())
		fmt.Fprintf(out, "committer %s\n", c.Committer().String())
		fmt.Fprintln(out)
		fmt.Fprint(out, c.Message())
	case object.TypeTree:
		tree, err := o.AsTree()
		if err != nil {
			return xerrors.Errorf("could not parse tree: %w", err)
		}
		for _, e := range tree.Entries() {
			fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), e.Path)
		}
	case object.TypeBlob:
		fmt.Fprint(out, string(o.Bytes()))
	}
	return nil
}

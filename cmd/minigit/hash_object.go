package main

import (
	"io"
	"io/ioutil"

	"github.com/spf13/cobra"
)

func newHashObjectCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "compute the object id of a file and optionally store it as a blob",
		Args:  cobra.ExactArgs(1),
	}

	write := cmd.Flags().BoolP("write", "w", false, "write the object into the object store")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, args[0], *write)
	}

	return cmd
}

func hashObjectCmd(out io.Writer, cfg *globalFlags, filePath string, write bool) error {
	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	content, err := ioutil.ReadFile(filePath)
	if err != nil {
		return err
	}

	oid, err := r.HashObject(content, write)
	if err != nil {
		return err
	}

	fprintln(out, oid.String())
	return nil
}

package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newUpdateIndexCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-index PATH...",
		Short: "mutate the staging index for the given paths",
		Args:  cobra.MinimumNArgs(1),
	}

	add := cmd.Flags().Bool("add", false, "stage the given paths, adding them to the index if not already tracked")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return updateIndexCmd(cmd.OutOrStdout(), cfg, *add, args)
	}
	return cmd
}

func updateIndexCmd(out io.Writer, cfg *globalFlags, add bool, paths []string) error {
	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}

	if add {
		if err := r.AddToIndex(idx, paths); err != nil {
			return err
		}
	} else {
		if err := r.RefreshIndex(idx, paths); err != nil {
			return err
		}
	}

	return r.StoreIndex(idx)
}

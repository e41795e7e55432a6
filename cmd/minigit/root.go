package main

import (
	"os"

	"github.com/sankantsu/minigit/internal/env"
	"github.com/spf13/cobra"
)

// globalFlags holds the flags shared by every subcommand.
type globalFlags struct {
	// C mirrors git's -C <path>: run as if started in path instead of
	// the current working directory.
	C string

	env *env.Env
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "minigit",
		Short:         "a minimal, Git-compatible version control core",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &globalFlags{env: env.NewFromOs()}
	cmd.PersistentFlags().StringVarP(&cfg.C, "C", "C", "", "run as if minigit was started in <path> instead of the current directory")

	// porcelain
	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newLsFilesCmd(cfg))

	// plumbing
	cmd.AddCommand(newHashObjectCmd(cfg))
	cmd.AddCommand(newCatFileCmd(cfg))
	cmd.AddCommand(newUpdateIndexCmd(cfg))
	cmd.AddCommand(newWriteTreeCmd(cfg))
	cmd.AddCommand(newReadTreeCmd(cfg))
	cmd.AddCommand(newCommitTreeCmd(cfg))

	return cmd
}

// workingDirectory returns the directory the current command should
// operate in: cfg.C if set via -C, otherwise the process's cwd.
func (cfg *globalFlags) workingDirectory() (string, error) {
	if cfg.C != "" {
		return cfg.C, nil
	}
	return os.Getwd()
}

package main

import (
	"io"
	"os"
	"path/filepath"

	git "github.com/sankantsu/minigit"
	"github.com/sankantsu/minigit/internal/gitpath"
	"github.com/spf13/cobra"
)

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "create an empty repository",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		return initCmd(cmd.OutOrStdout(), cfg, dir)
	}

	return cmd
}

func initCmd(out io.Writer, cfg *globalFlags, optionalDirectory string) error {
	wd, err := cfg.workingDirectory()
	if err != nil {
		return err
	}
	if optionalDirectory != "" {
		wd = filepath.Join(wd, optionalDirectory)
	}

	_, statErr := os.Stat(filepath.Join(wd, gitpath.DotGitPath))
	existed := statErr == nil

	r, err := git.InitRepository(wd, git.Options{Env: cfg.env})
	if err != nil {
		return err
	}
	defer r.Close()

	gitDir := filepath.Join(wd, gitpath.DotGitPath)
	if existed {
		fprintln(out, "Reinitialized existing minigit repository in", gitDir)
	} else {
		fprintln(out, "Initialized empty minigit repository in", gitDir)
	}
	return nil
}

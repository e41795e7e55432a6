package main

import (
	"fmt"
	"io"

	git "github.com/sankantsu/minigit"
	"golang.org/x/xerrors"
)

// openRepository opens the repository containing cfg's working
// directory.
func openRepository(cfg *globalFlags) (*git.Repository, error) {
	wd, err := cfg.workingDirectory()
	if err != nil {
		return nil, fmt.Errorf("could not determine working directory: %w", err)
	}

	r, err := git.OpenRepository(wd, git.Options{Env: cfg.env})
	if err != nil {
		return nil, xerrors.Errorf("could not open repository: %w", err)
	}
	return r, nil
}

func fprintln(out io.Writer, a ...interface{}) {
	fmt.Fprintln(out, a...)
}

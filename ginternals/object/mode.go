package object

import (
	"errors"
	"os"
)

// ErrUnknownMode is returned by NormalizeMode for a raw POSIX mode
// this implementation has no tree representation for (device files,
// sockets, FIFOs, ...).
var ErrUnknownMode = errors.New("unknown mode")

// NormalizeMode maps a raw os.FileMode, as observed via lstat on a
// working-tree path, to the canonical mode recorded in trees and the
// index. Gitlinks are never produced here: detecting a submodule
// requires checking for a nested .git, which is the working-tree
// walker's concern, not this core's.
func NormalizeMode(m os.FileMode) (TreeObjectMode, error) {
	switch {
	case m&os.ModeSymlink != 0:
		return ModeSymLink, nil
	case m.IsDir():
		return ModeDirectory, nil
	case m.IsRegular():
		if m.Perm()&0o111 != 0 {
			return ModeExecutable, nil
		}
		return ModeFile, nil
	default:
		return 0, ErrUnknownMode
	}
}

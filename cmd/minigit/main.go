// Command minigit is a small, read-mostly front-end over the object
// store, object codec, and staging index implemented in this module.
// It does not understand references, packfiles, or remotes.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

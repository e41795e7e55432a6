// Package gitpath contains consts and methods to work with paths inside
// the .git directory
package gitpath

import "os"

// .git/ files and directories relevant to this core (refs intentionally
// not included, see spec Non-goals; ObjectsPackPath only names the
// directory, no packfile is ever read or written)
const (
	DotGitPath      = ".git"
	ConfigPath      = "config"
	DescriptionPath = "description"
	IndexPath       = "index"
	ObjectsPath     = "objects"
	ObjectsInfoPath = ObjectsPath + string(os.PathSeparator) + "info"
	ObjectsPackPath = ObjectsPath + string(os.PathSeparator) + "pack"
)

// Package fsbackend contains an implementation of the backend.Backend
// interface for the filesystem
package fsbackend

import (
	"path/filepath"
	"sync"

	"github.com/sankantsu/minigit/backend"
	"github.com/sankantsu/minigit/internal/cache"
	"github.com/sankantsu/minigit/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// defaultCacheSize is the number of loose objects kept in memory by
// the LRU read cache
const defaultCacheSize = 128

// Backend is a Backend implementation that uses the filesystem to
// store data. It only ever deals in loose objects: this core has no
// packfile support.
type Backend struct {
	// root is the path to the .git directory
	root string
	fs   afero.Fs

	mu           sync.Mutex
	looseObjects sync.Map // ginternals.Oid -> struct{}
	cache        *cache.LRU
}

// New returns a new Backend object rooted at dotGitPath, using the OS
// filesystem
func New(dotGitPath string) (*Backend, error) {
	return NewWithFS(afero.NewOsFs(), dotGitPath)
}

// NewWithFS returns a new Backend object rooted at dotGitPath, using
// the provided afero filesystem. Tests use this to run hermetically
// against afero.NewMemMapFs().
func NewWithFS(fs afero.Fs, dotGitPath string) (*Backend, error) {
	c, err := cache.NewLRU(defaultCacheSize)
	if err != nil {
		return nil, xerrors.Errorf("could not create object cache: %w", err)
	}
	b := &Backend{
		root:  dotGitPath,
		fs:    fs,
		cache: c,
	}
	// a missing objects dir just means an empty/uninitialized repo;
	// loadLooseObjects tolerates that and leaves the index empty
	if err := b.loadLooseObjects(); err != nil {
		return nil, xerrors.Errorf("could not load loose objects: %w", err)
	}
	return b, nil
}

// Close frees the resources held by the backend
func (b *Backend) Close() error {
	return nil
}

// Init initializes a repository
func (b *Backend) Init() error {
	dirs := []string{
		gitpath.ObjectsPath,
		gitpath.ObjectsInfoPath,
	}
	for _, d := range dirs {
		fullPath := b.path(d)
		if err := b.fs.MkdirAll(fullPath, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	files := []struct {
		path    string
		content []byte
	}{
		{
			path:    gitpath.DescriptionPath,
			content: []byte("Unnamed repository; edit this file 'description' to name the repository.\n"),
		},
	}
	for _, f := range files {
		fullPath := b.path(f.path)
		if err := afero.WriteFile(b.fs, fullPath, f.content, 0o644); err != nil {
			return xerrors.Errorf("could not create file %s: %w", f.path, err)
		}
	}

	if err := b.setDefaultCfg(); err != nil {
		return xerrors.Errorf("could not set the default config: %w", err)
	}

	return nil
}

// path joins a path relative to the .git directory
func (b *Backend) path(p ...string) string {
	return filepath.Join(append([]string{b.root}, p...)...)
}

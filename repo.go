// Package git ties the object store, the object codec, and the
// staging index together into the set of operations a front-end maps
// its subcommands onto.
package git

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/sankantsu/minigit/backend"
	"github.com/sankantsu/minigit/backend/fsbackend"
	"github.com/sankantsu/minigit/ginternals"
	"github.com/sankantsu/minigit/ginternals/config"
	"github.com/sankantsu/minigit/ginternals/index"
	"github.com/sankantsu/minigit/ginternals/object"
	"github.com/sankantsu/minigit/internal/env"
	"github.com/sankantsu/minigit/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrRepositoryExists represents a repository that already exists at
// the target .git path. InitRepository does not return it: calling it
// on an already-initialized repository succeeds.
var ErrRepositoryExists = errors.New("repository already exists")

var (
	// ErrOidTooShort is returned by ResolveOid when the given prefix is
	// shorter than 4 characters.
	ErrOidTooShort = errors.New("prefix too short")
	// ErrOidNotFound is returned by ResolveOid when no object matches
	// the given prefix.
	ErrOidNotFound = errors.New("no object matches prefix")
	// ErrOidAmbiguous is returned by ResolveOid when more than one
	// object matches the given prefix.
	ErrOidAmbiguous = errors.New("prefix is ambiguous")
)

// Repository ties together the object store and the staging index for
// a single working tree.
type Repository struct {
	cfg   *config.Config
	store backend.Backend
}

// Options lets callers override the filesystem, object store and
// environment a Repository uses; the zero value uses the real OS
// filesystem and environment.
type Options struct {
	FS    afero.Fs
	Store backend.Backend
	Env   *env.Env
}

func (o Options) env() *env.Env {
	if o.Env != nil {
		return o.Env
	}
	return env.NewFromOs()
}

// InitRepository creates a new repository rooted at workingDirectory:
// it lays out .git/objects (and its info subdir), a description file,
// and a default config, then returns a Repository for it. Init is safe
// to call again on an already-initialized repository.
func InitRepository(workingDirectory string, opts Options) (*Repository, error) {
	cfg, err := config.LoadConfig(opts.env(), config.LoadConfigOptions{
		FS:               opts.FS,
		WorkingDirectory: workingDirectory,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not resolve repository paths: %w", err)
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = fsbackend.NewWithFS(cfg.FS, cfg.GitDirPath)
		if err != nil {
			return nil, xerrors.Errorf("could not open object store: %w", err)
		}
	}
	if err := store.Init(); err != nil {
		return nil, xerrors.Errorf("could not initialize repository: %w", err)
	}

	return &Repository{cfg: cfg, store: store}, nil
}

// OpenRepository discovers and opens an existing repository by walking
// up from workingDirectory looking for a .git directory.
func OpenRepository(workingDirectory string, opts Options) (*Repository, error) {
	cfg, err := config.LoadConfig(opts.env(), config.LoadConfigOptions{
		FS:               opts.FS,
		WorkingDirectory: workingDirectory,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not resolve repository paths: %w", err)
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = fsbackend.NewWithFS(cfg.FS, cfg.GitDirPath)
		if err != nil {
			return nil, xerrors.Errorf("could not open object store: %w", err)
		}
	}

	return &Repository{cfg: cfg, store: store}, nil
}

// Close releases the resources held by the repository.
func (r *Repository) Close() error {
	return r.store.Close()
}

// WorkTree returns the absolute path to the repository's working tree.
func (r *Repository) WorkTree() string {
	return r.cfg.WorkTreePath
}

// indexPath returns the absolute path to .git/index.
func (r *Repository) indexPath() string {
	return filepath.Join(r.cfg.GitDirPath, gitpath.IndexPath)
}

// HashObject computes and, when write is true, persists content as a
// blob, returning its oid either way.
func (r *Repository) HashObject(content []byte, write bool) (ginternals.Oid, error) {
	o := object.New(object.TypeBlob, content)
	if !write {
		return o.ID(), nil
	}
	return r.store.WriteObject(o)
}

// ResolveOid resolves a hex oid prefix (at least 4 characters) to the
// single loose object it uniquely designates.
func (r *Repository) ResolveOid(prefix string) (ginternals.Oid, error) {
	if len(prefix) < 4 {
		return ginternals.NullOid, ErrOidTooShort
	}
	if len(prefix) == ginternals.OidSize()*2 {
		if oid, err := ginternals.NewOidFromStr(prefix); err == nil {
			if has, err := r.store.HasObject(oid); err == nil && has {
				return oid, nil
			}
		}
	}

	prefix = strings.ToLower(prefix)
	var match ginternals.Oid
	found := 0
	err := r.store.WalkLooseObjectIDs(func(oid ginternals.Oid) error {
		if strings.HasPrefix(oid.String(), prefix) {
			found++
			match = oid
		}
		return nil
	})
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not walk the object store: %w", err)
	}

	switch {
	case found == 0:
		return ginternals.NullOid, ErrOidNotFound
	case found > 1:
		return ginternals.NullOid, ErrOidAmbiguous
	default:
		return match, nil
	}
}

// WriteObject persists o to the object store.
func (r *Repository) WriteObject(o *object.Object) (ginternals.Oid, error) {
	return r.store.WriteObject(o)
}

// GetObject returns the object matching oid.
func (r *Repository) GetObject(oid ginternals.Oid) (*object.Object, error) {
	return r.store.Object(oid)
}

// LoadIndex reads the staging index, returning an empty one if none
// has been written yet.
func (r *Repository) LoadIndex() (*index.Index, error) {
	return index.Load(r.cfg.FS, r.indexPath())
}

// StoreIndex atomically replaces the staging index with idx.
func (r *Repository) StoreIndex(idx *index.Index) error {
	return index.Store(r.cfg.FS, r.indexPath(), idx)
}

// AddToIndex stages each of paths (relative to the working tree) into
// idx, writing a blob for each one to the object store.
func (r *Repository) AddToIndex(idx *index.Index, paths []string) error {
	for _, p := range paths {
		if err := index.Add(r.cfg.FS, r.cfg.WorkTreePath, r.store, idx, p); err != nil {
			return xerrors.Errorf("could not add %s: %w", p, err)
		}
	}
	return nil
}

// RefreshIndex re-stats the given already-staged paths.
func (r *Repository) RefreshIndex(idx *index.Index, paths []string) error {
	return index.Refresh(r.cfg.FS, r.cfg.WorkTreePath, r.store, idx, paths)
}

// WriteTree converts idx into a hierarchical set of tree objects and
// returns the oid of the root tree.
func (r *Repository) WriteTree(idx *index.Index) (ginternals.Oid, error) {
	return index.BuildTree(r.store, idx)
}

// ReadTree expands the tree at oid into a flat Index, replacing
// ctime/mtime/dev/ino/uid/gid with zero (there is no working-tree
// checkout backing these entries).
func (r *Repository) ReadTree(oid ginternals.Oid) (*index.Index, error) {
	return index.FromTree(r.store, oid)
}

// CommitTree creates a commit pointing at treeOID with the given
// parents and message, using the configured user.name/user.email and
// the current time for both author and committer.
func (r *Repository) CommitTree(treeOID ginternals.Oid, parents []ginternals.Oid, message string) (ginternals.Oid, error) {
	name, email, err := r.cfg.User()
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not determine commit author: %w", err)
	}

	author := object.Signature{Name: name, Email: email, Time: time.Now()}
	c := object.NewCommit(treeOID, author, &object.CommitOptions{
		Message:   message,
		ParentsID: parents,
	})
	return r.store.WriteObject(c.ToObject())
}

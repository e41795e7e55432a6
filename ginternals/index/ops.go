package index

import (
	"os"
	"path/filepath"
	"syscall"

	"github.com/sankantsu/minigit/backend"
	"github.com/sankantsu/minigit/ginternals/object"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Load reads and decodes the index file at path. A missing file is a
// valid initial state: it returns an empty Index, not an error.
func Load(fs afero.Fs, path string) (*Index, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, xerrors.Errorf("could not read index at %s: %w", path, err)
	}
	idx, err := Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("could not decode index at %s: %w", path, err)
	}
	return idx, nil
}

// Store encodes idx and atomically replaces the index file at path:
// the full replacement is written to a temp file in the same
// directory, fsync'd, then renamed over the destination. Readers never
// observe a partially-written index.
func Store(fs afero.Fs, path string, idx *Index) (err error) {
	data := Encode(idx)

	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, ".index-*.tmp")
	if err != nil {
		return xerrors.Errorf("could not create temp index file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return xerrors.Errorf("could not write temp index: %w", err)
	}
	if syncer, ok := tmp.(interface{ Sync() error }); ok {
		if err = syncer.Sync(); err != nil {
			_ = tmp.Close()
			return xerrors.Errorf("could not fsync temp index: %w", err)
		}
	}
	if err = tmp.Close(); err != nil {
		return xerrors.Errorf("could not close temp index: %w", err)
	}
	if err = fs.Rename(tmpName, path); err != nil {
		return xerrors.Errorf("could not rename temp index into place: %w", err)
	}
	return nil
}

// Add stages relPath: it reads the file at root/relPath, writes it to
// store as a blob, and inserts or replaces its IndexEntry.
func Add(fs afero.Fs, root string, store backend.Backend, idx *Index, relPath string) error {
	slashPath := filepath.ToSlash(relPath)
	full := filepath.Join(root, filepath.FromSlash(relPath))

	info, err := lstat(fs, full)
	if err != nil {
		return xerrors.Errorf("could not stat %s: %w", slashPath, err)
	}

	mode, err := object.NormalizeMode(info.Mode())
	if err != nil {
		return xerrors.Errorf("could not classify mode of %s: %w", slashPath, err)
	}

	content, err := afero.ReadFile(fs, full)
	if err != nil {
		return xerrors.Errorf("could not read %s: %w", slashPath, err)
	}

	blob := object.New(object.TypeBlob, content)
	oid, err := store.WriteObject(blob)
	if err != nil {
		return xerrors.Errorf("could not write blob for %s: %w", slashPath, err)
	}

	e := Entry{
		Mode: uint32(mode),
		Size: uint32(len(content)), //nolint:gosec // truncation matches the on-disk u32 field
		OID:  oid,
		Path: slashPath,
	}
	e.CtimeSec, e.CtimeNano, e.MtimeSec, e.MtimeNano, e.Dev, e.Ino, e.UID, e.GID = statFields(info)

	idx.upsert(e)
	return nil
}

// Refresh re-stats each of paths, which must already be staged, and
// updates the fields a working-tree check would disagree on.
func Refresh(fs afero.Fs, root string, store backend.Backend, idx *Index, paths []string) error {
	for _, p := range paths {
		slashPath := filepath.ToSlash(p)
		i := idx.indexOf(slashPath)
		if i < 0 {
			return xerrors.Errorf("%s: %w", slashPath, ErrPathNotInIndex)
		}
		e := &idx.Entries[i]

		full := filepath.Join(root, filepath.FromSlash(p))
		info, err := lstat(fs, full)
		if err != nil {
			return xerrors.Errorf("could not stat %s: %w", slashPath, err)
		}
		ctimeSec, ctimeNano, mtimeSec, mtimeNano, _, _, _, _ := statFields(info)

		if isNewer(mtimeSec, mtimeNano, e.MtimeSec, e.MtimeNano) {
			content, err := afero.ReadFile(fs, full)
			if err != nil {
				return xerrors.Errorf("could not read %s: %w", slashPath, err)
			}
			oid, err := store.WriteObject(object.New(object.TypeBlob, content))
			if err != nil {
				return xerrors.Errorf("could not write blob for %s: %w", slashPath, err)
			}
			e.OID = oid
			e.Size = uint32(len(content)) //nolint:gosec
			e.MtimeSec, e.MtimeNano = mtimeSec, mtimeNano
		}

		if isNewer(ctimeSec, ctimeNano, e.CtimeSec, e.CtimeNano) {
			mode, err := object.NormalizeMode(info.Mode())
			if err != nil {
				return xerrors.Errorf("could not classify mode of %s: %w", slashPath, err)
			}
			e.Mode = uint32(mode)
			e.CtimeSec, e.CtimeNano = ctimeSec, ctimeNano
		}
	}
	return nil
}

func isNewer(sec, nsec, storedSec, storedNsec uint32) bool {
	if sec != storedSec {
		return sec > storedSec
	}
	return nsec > storedNsec
}

// lstat stats full without following a trailing symlink, falling back
// to a plain Stat on filesystems (like afero's in-memory one, used in
// tests) that don't implement Lstat.
func lstat(fs afero.Fs, full string) (os.FileInfo, error) {
	info, _, err := afero.LstatIfPossible(fs, full)
	return info, err
}

// statFields extracts the stat-cache fields this core records. They
// are informational only: dev/ino/uid/gid never affect an entry's oid.
// On a filesystem that doesn't expose a *syscall.Stat_t (e.g. an
// afero.MemMapFs in tests) ctime falls back to mtime and dev/ino/uid/gid
// come back zero.
func statFields(info os.FileInfo) (ctimeSec, ctimeNano, mtimeSec, mtimeNano, dev, ino, uid, gid uint32) {
	mtime := info.ModTime()
	mtimeSec = uint32(mtime.Unix()) //nolint:gosec // truncation matches the on-disk u32 field
	mtimeNano = uint32(mtime.Nanosecond())
	ctimeSec, ctimeNano = mtimeSec, mtimeNano

	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		ctimeSec = uint32(st.Ctim.Sec)   //nolint:gosec
		ctimeNano = uint32(st.Ctim.Nsec) //nolint:gosec
		dev = uint32(st.Dev)             //nolint:gosec
		ino = uint32(st.Ino)             //nolint:gosec
		uid = st.Uid
		gid = st.Gid
	}
	return
}

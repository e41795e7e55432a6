package fsbackend

import (
	"compress/zlib"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sankantsu/minigit/ginternals"
	"github.com/sankantsu/minigit/ginternals/object"
	"github.com/sankantsu/minigit/internal/errutil"
	"github.com/sankantsu/minigit/internal/gitpath"
	"github.com/sankantsu/minigit/internal/readutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrObjectNotFound is returned when an object cannot be found in the odb
var ErrObjectNotFound = xerrors.New("object not found")

// looseObjectPath returns the absolute path of an object
// .git/objects/first_2_chars_of_sha/remaining_chars_of_sha
func (b *Backend) looseObjectPath(sha string) string {
	return b.path(gitpath.ObjectsPath, sha[:2], sha[2:])
}

// Object returns the object that has given oid
// This method can be called concurrently
func (b *Backend) Object(oid ginternals.Oid) (*object.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objectUnsafe(oid)
}

func (b *Backend) objectUnsafe(oid ginternals.Oid) (*object.Object, error) {
	if cachedO, found := b.cache.Get(oid); found {
		if o, valid := cachedO.(*object.Object); valid {
			return o, nil
		}
	}

	o, err := b.looseObject(oid)
	if err != nil {
		return nil, err
	}
	b.cache.Add(oid, o)
	return o, nil
}

// looseObject returns the object matching the given OID.
// The format of a loose object is an ascii encoded type, an ascii
// encoded space, an ascii encoded length of the content, a NUL
// character, then the content.
func (b *Backend) looseObject(oid ginternals.Oid) (o *object.Object, err error) {
	if _, exists := b.looseObjects.Load(oid); !exists {
		return nil, ErrObjectNotFound
	}

	strOid := oid.String()
	p := b.looseObjectPath(strOid)
	f, err := b.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, xerrors.Errorf("could not open object %s at path %s: %w", strOid, p, err)
	}
	defer errutil.Close(f, &err)

	zlibReader, err := zlib.NewReader(f)
	if err != nil {
		return nil, xerrors.Errorf("could not decompress object %s at path %s: %w", strOid, p, err)
	}
	defer errutil.Close(zlibReader, &err)

	buff, err := ioutil.ReadAll(zlibReader)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s at path %s: %w", strOid, p, err)
	}

	pointerPos := 0

	typ := readutil.ReadTo(buff, ' ')
	if typ == nil {
		return nil, xerrors.Errorf("could not find object type for %s at path %s", strOid, p)
	}
	oType, err := object.NewTypeFromString(string(typ))
	if err != nil {
		return nil, xerrors.Errorf("unsupported type %s for object %s at path %s", string(typ), strOid, p)
	}
	pointerPos += len(typ) + 1 // +1 for the space

	size := readutil.ReadTo(buff[pointerPos:], 0)
	if size == nil {
		return nil, xerrors.Errorf("could not find object size for %s at path %s", strOid, p)
	}
	oSize, err := strconv.Atoi(string(size))
	if err != nil {
		return nil, xerrors.Errorf("invalid size %s for object %s at path %s: %w", size, strOid, p, err)
	}
	pointerPos += len(size) + 1 // +1 for the NUL char
	oContent := buff[pointerPos:]

	if len(oContent) != oSize {
		return nil, xerrors.Errorf("object marked as size %d, but has %d at path %s", oSize, len(oContent), p)
	}

	return object.NewWithID(oid, oType, oContent), nil
}

// HasObject returns whether an object exists in the odb
// This method can be called concurrently
func (b *Backend) HasObject(oid ginternals.Oid) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasObjectUnsafe(oid)
}

func (b *Backend) hasObjectUnsafe(oid ginternals.Oid) (bool, error) {
	_, err := b.objectUnsafe(oid)
	if err == nil {
		return true, nil
	}
	if xerrors.Is(err, ErrObjectNotFound) {
		return false, nil
	}
	return false, xerrors.Errorf("could not get object: %w", err)
}

// WriteObject adds an object to the odb. Writing an object whose oid
// already exists is a no-op (content-addressed idempotence): the first
// writer wins, later writers observe the existing file.
// This method can be called concurrently.
func (b *Backend) WriteObject(o *object.Object) (ginternals.Oid, error) {
	data, err := o.Compress()
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not compress object: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	found, err := b.hasObjectUnsafe(o.ID())
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not check if object (%s) already exists: %w", o.ID().String(), err)
	}
	if found {
		return o.ID(), nil
	}

	sha := o.ID().String()
	p := b.looseObjectPath(sha)

	dest := filepath.Dir(p)
	if err = b.fs.MkdirAll(dest, 0o755); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not create the destination directory %s: %w", dest, err)
	}

	// objects are read-only once written
	if err = afero.WriteFile(b.fs, p, data, 0o444); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist object %s at path %s: %w", sha, p, err)
	}

	b.looseObjects.Store(o.ID(), struct{}{})
	b.cache.Add(o.ID(), o)
	return o.ID(), nil
}

// loadLooseObjects discovers the oids already on disk so Object/HasObject
// don't need to stat the filesystem on every lookup
func (b *Backend) loadLooseObjects() error {
	p := b.path(gitpath.ObjectsPath)
	return afero.Walk(b.fs, p, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// the objects dir may not exist yet on an uninitialized repo
			return nil
		}
		if path == p {
			return nil
		}

		if info.IsDir() {
			if !b.isLooseObjectDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		prefix := filepath.Base(filepath.Dir(path))
		if !b.isLooseObjectDir(prefix) {
			return nil
		}

		sha := prefix + info.Name()
		oid, err := ginternals.NewOidFromStr(sha)
		if err != nil {
			return xerrors.Errorf("could not get oid from %s: %w", sha, err)
		}
		b.looseObjects.Store(oid, struct{}{})
		return nil
	})
}

// isLooseObjectDir checks if a directory name is anything between 00 and ff
func (b *Backend) isLooseObjectDir(name string) bool {
	if len(name) != 2 {
		return false
	}
	dirNum, parseErr := strconv.ParseInt(name, 16, 64)
	return parseErr == nil && dirNum >= 0x00 && dirNum <= 0xff
}

// WalkLooseObjectIDs runs the provided method on all the oids found in
// the odb
func (b *Backend) WalkLooseObjectIDs(f func(ginternals.Oid) error) (err error) {
	b.looseObjects.Range(func(key, value interface{}) bool {
		err = f(key.(ginternals.Oid))
		return err == nil
	})
	return err
}

// Package index implements the binary staging index (the flat,
// path-addressed record of what the next commit's tree will look
// like) and its conversion to and from hierarchical tree objects.
package index

import (
	"errors"
	"sort"

	"github.com/sankantsu/minigit/ginternals"
)

// Version is the only index format version this implementation reads
// or writes.
const Version = 2

var (
	// ErrCorrupt is returned when the index file's bytes don't decode
	// into a well-formed index, or its trailing checksum doesn't match.
	ErrCorrupt = errors.New("corrupt index")

	// ErrUnsupportedVersion is returned when the index header declares
	// a version other than Version.
	ErrUnsupportedVersion = errors.New("unsupported index version")

	// ErrPathNotInIndex is returned by operations that require an
	// already-staged path (e.g. Refresh) when it isn't found.
	ErrPathNotInIndex = errors.New("path not in index")
)

// Entry is a single staged path: its object identity plus the stat
// metadata used to cheaply detect working-tree changes on a later
// Refresh. dev/ino/uid/gid are informational stat-cache fields only;
// they never influence an entry's oid.
type Entry struct {
	CtimeSec  uint32
	CtimeNano uint32
	MtimeSec  uint32
	MtimeNano uint32
	Dev       uint32
	Ino       uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint32
	OID       ginternals.Oid

	// AssumeValid and Extended mirror git's flag bits; this
	// implementation never sets them itself but preserves whatever a
	// decoded entry carried across a re-encode.
	AssumeValid bool
	Extended    bool
	// Stage is 0 for a normal entry, 1..3 for a conflict slot. This
	// core records stage but never reasons about non-zero values.
	Stage uint8

	// Path is always slash-separated and relative to the repository
	// root, regardless of host OS.
	Path string
}

// nameLength is the value stored in the low 12 bits of the on-disk
// flags field: the path's byte length, capped at 0xFFF. The true
// length, used for padding math, is always len(Path).
func (e *Entry) nameLength() uint16 {
	if len(e.Path) >= 0xFFF {
		return 0xFFF
	}
	return uint16(len(e.Path))
}

// Index is an ordered collection of Entries, forming the next
// proposed tree.
type Index struct {
	Entries []Entry
}

// New returns an empty Index. A missing index file on disk is a valid
// initial state and also decodes to this.
func New() *Index {
	return &Index{}
}

// Sort reorders Entries in place into ascending byte-lexicographic
// path order, ties broken by stage.
func (idx *Index) Sort() {
	sortEntries(idx.Entries)
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].Stage < entries[j].Stage
	})
}

// Contains returns whether path is staged, at any stage.
func (idx *Index) Contains(path string) bool {
	for i := range idx.Entries {
		if idx.Entries[i].Path == path {
			return true
		}
	}
	return false
}

// Find returns the stage-0 entry for path, if any.
func (idx *Index) Find(path string) (*Entry, bool) {
	i := idx.indexOf(path)
	if i < 0 {
		return nil, false
	}
	return &idx.Entries[i], true
}

// indexOf returns the position of the stage-0 entry for path, or -1.
func (idx *Index) indexOf(path string) int {
	for i := range idx.Entries {
		if idx.Entries[i].Path == path && idx.Entries[i].Stage == 0 {
			return i
		}
	}
	return -1
}

// upsert inserts e, or replaces the existing entry sharing its
// (Path, Stage) pair, then restores sort order.
func (idx *Index) upsert(e Entry) {
	for i := range idx.Entries {
		if idx.Entries[i].Path == e.Path && idx.Entries[i].Stage == e.Stage {
			idx.Entries[i] = e
			return
		}
	}
	idx.Entries = append(idx.Entries, e)
	idx.Sort()
}

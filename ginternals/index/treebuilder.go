package index

import (
	"strings"

	"github.com/sankantsu/minigit/backend"
	"github.com/sankantsu/minigit/ginternals"
	"github.com/sankantsu/minigit/ginternals/object"
	"golang.org/x/xerrors"
)

// buildNode is an intermediate directory gathered while walking a
// flat, path-sorted Index: file-like entries and subdirectories
// grouped by their immediate parent.
type buildNode struct {
	children map[string]*buildNode
	entries  map[string]Entry
}

func newBuildNode() *buildNode {
	return &buildNode{
		children: make(map[string]*buildNode),
		entries:  make(map[string]Entry),
	}
}

// BuildTree converts idx into a hierarchical set of Tree objects,
// writes every one of them to store (deepest first), and returns the
// oid of the root tree. Directories that would be empty never arise:
// every node in the walk is only created because some index entry
// requires it.
func BuildTree(store backend.Backend, idx *Index) (ginternals.Oid, error) {
	root := newBuildNode()
	for _, e := range idx.Entries {
		if err := validateTreePath(e.Path); err != nil {
			return ginternals.NullOid, err
		}
		insertEntry(root, strings.Split(e.Path, "/"), e)
	}
	return writeNode(store, root)
}

func validateTreePath(path string) error {
	if path == "" {
		return xerrors.New("index entry has an empty path")
	}
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "", ".", "..":
			return xerrors.Errorf("index entry %q has an invalid path component %q", path, part)
		}
	}
	return nil
}

func insertEntry(node *buildNode, parts []string, e Entry) {
	if len(parts) == 1 {
		node.entries[parts[0]] = e
		return
	}
	name := parts[0]
	child, ok := node.children[name]
	if !ok {
		child = newBuildNode()
		node.children[name] = child
	}
	insertEntry(child, parts[1:], e)
}

// writeNode writes node's subdirectories first (so their oids are
// known), then node itself, and returns node's own oid.
func writeNode(store backend.Backend, node *buildNode) (ginternals.Oid, error) {
	entries := make([]object.TreeEntry, 0, len(node.children)+len(node.entries))

	for name, e := range node.entries {
		entries = append(entries, object.TreeEntry{
			Path: name,
			Mode: object.TreeObjectMode(e.Mode),
			ID:   e.OID,
		})
	}
	for name, child := range node.children {
		oid, err := writeNode(store, child)
		if err != nil {
			return ginternals.NullOid, err
		}
		entries = append(entries, object.TreeEntry{
			Path: name,
			Mode: object.ModeDirectory,
			ID:   oid,
		})
	}

	tree := object.NewTree(entries)
	oid, err := store.WriteObject(tree.ToObject())
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not write tree: %w", err)
	}
	return oid, nil
}

// FromTree recursively expands the tree at oid into a flat Index.
// Stat-only fields (ctime/mtime/dev/ino/uid/gid) are zeroed: they
// describe a working-tree checkout this index was never staged from.
func FromTree(store backend.Backend, oid ginternals.Oid) (*Index, error) {
	idx := New()
	if err := fromTreeRec(store, oid, "", idx); err != nil {
		return nil, err
	}
	idx.Sort()
	return idx, nil
}

func fromTreeRec(store backend.Backend, oid ginternals.Oid, prefix string, idx *Index) error {
	o, err := store.Object(oid)
	if err != nil {
		return xerrors.Errorf("could not load tree %s: %w", oid, err)
	}
	tree, err := o.AsTree()
	if err != nil {
		return xerrors.Errorf("could not parse tree %s: %w", oid, err)
	}

	for _, entry := range tree.Entries() {
		path := entry.Path
		if prefix != "" {
			path = prefix + "/" + path
		}
		if entry.Mode == object.ModeDirectory {
			if err := fromTreeRec(store, entry.ID, path, idx); err != nil {
				return err
			}
			continue
		}
		idx.Entries = append(idx.Entries, Entry{
			Mode: uint32(entry.Mode),
			OID:  entry.ID,
			Path: path,
		})
	}
	return nil
}

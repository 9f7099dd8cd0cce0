package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

// pathNode is one entry in the index arena. Children are kept in traversal
// order: directories before files, then case-insensitive by name.
type pathNode struct {
	parent   PathKey
	name     string
	meta     FileMeta
	present  bool
	children []PathKey
}

// NodeView is a read-only projection of an indexed node.
type NodeView struct {
	Key     PathKey
	Parent  PathKey
	Name    string
	Meta    FileMeta
	Present bool
}

// PathIndex maintains the known directory tree as an arena of nodes keyed
// by interned path. Directories own their children; parent links are keys
// looked up in the arena, never raw pointers, so deleted subtrees prune in
// one bulk pass. A node with present == false is a tombstone: still
// rendered, no longer on disk.
//
// The index is mutated only by the tracker's consumer loop and carries no
// locking of its own.
type PathIndex struct {
	root    string
	rootKey PathKey
	nodes   map[PathKey]*pathNode
}

// NewPathIndex creates an empty index. Initialize must be called before any
// apply operation.
func NewPathIndex() *PathIndex {
	return &PathIndex{nodes: make(map[PathKey]*pathNode)}
}

// Initialize resets the index and builds the tree from a completed
// recursive scan listing. The listing may include the root itself; root
// must be an absolute, cleaned path. Scanning the filesystem (and failing
// with ErrScanFailed when the root is unreadable) is the caller's job.
func (x *PathIndex) Initialize(root string, entries []ScanEntry) {
	x.root = root
	x.rootKey = KeyFor(root)
	clear(x.nodes)
	x.nodes[x.rootKey] = &pathNode{
		name:    filepath.Base(root),
		meta:    FileMeta{Kind: KindDir},
		present: true,
	}
	for _, e := range entries {
		if e.Path == root {
			x.nodes[x.rootKey].meta = e.Meta
			continue
		}
		x.ApplyCreate(e.Path, e.Meta)
	}
}

// Root returns the watch root path.
func (x *PathIndex) Root() string {
	return x.root
}

// RootKey returns the key of the root node.
func (x *PathIndex) RootKey() PathKey {
	return x.rootKey
}

// RootPresent reports whether the watch root itself still exists.
func (x *PathIndex) RootPresent() bool {
	node, ok := x.nodes[x.rootKey]
	return ok && node.present
}

// Len returns the number of nodes in the arena, tombstones included.
func (x *PathIndex) Len() int {
	return len(x.nodes)
}

// Node returns a read-only view of the node at key.
func (x *PathIndex) Node(key PathKey) (NodeView, bool) {
	node, ok := x.nodes[key]
	if !ok {
		return NodeView{}, false
	}
	return NodeView{
		Key:     key,
		Parent:  node.parent,
		Name:    node.name,
		Meta:    node.meta,
		Present: node.present,
	}, true
}

// Children returns the keys of the node's children in traversal order.
func (x *PathIndex) Children(key PathKey) []PathKey {
	node, ok := x.nodes[key]
	if !ok {
		return nil
	}
	return slices.Clone(node.children)
}

// Meta returns the tracked metadata for a present path. Tombstones and
// unknown paths report false.
func (x *PathIndex) Meta(path string) (FileMeta, bool) {
	node, ok := x.nodes[KeyFor(path)]
	if !ok || !node.present {
		return FileMeta{}, false
	}
	return node.meta, true
}

// ApplyCreate inserts a node for path, creating any missing intermediate
// directory nodes below the root. Idempotent: an existing node only
// refreshes its metadata, a tombstoned node revives along with its
// ancestors. Paths outside the root are ignored and return the zero key.
func (x *PathIndex) ApplyCreate(path string, meta FileMeta) PathKey {
	if !x.contains(path) {
		return PathKey{}
	}
	key := KeyFor(path)
	if node, ok := x.nodes[key]; ok {
		oldKind := node.meta.Kind
		node.present = true
		node.meta = meta
		if oldKind != meta.Kind {
			// The path was replaced by an entry of the other kind: stale
			// children go, and the sort position under the parent changes.
			for _, c := range node.children {
				x.deleteSubtree(c)
			}
			node.children = nil
			x.relink(key, node)
		}
		x.revive(node.parent)
		return key
	}

	var parent PathKey
	if path != x.root {
		parent = x.ensureDir(filepath.Dir(path))
	}
	node := &pathNode{
		parent:  parent,
		name:    filepath.Base(path),
		meta:    meta,
		present: true,
	}
	x.nodes[key] = node
	if !parent.IsZero() {
		x.linkChild(parent, key)
	}
	return key
}

// ApplyDelete marks path and its entire subtree absent. Tombstones stay in
// the arena (and in their parent's listing) until Prune. A delete for a
// path the index never saw materializes a tombstone for it, so removals of
// short-lived files still show up. Returns false when the path is outside
// the root.
func (x *PathIndex) ApplyDelete(path string) bool {
	if !x.contains(path) {
		return false
	}
	key := KeyFor(path)
	node, ok := x.nodes[key]
	if !ok {
		key = x.ApplyCreate(path, FileMeta{Kind: KindFile})
		if key.IsZero() {
			return false
		}
		node = x.nodes[key]
	}
	x.markAbsent(node)
	return true
}

// ApplyRename moves the subtree at oldPath to newPath, re-keying every
// descendant, when the source is present and the destination's parent is a
// present directory in the index. Otherwise it degrades to delete+create
// semantics and reports moved == false so the caller can record activity
// accordingly.
func (x *PathIndex) ApplyRename(oldPath, newPath string, meta FileMeta) (moved bool) {
	oldKey := KeyFor(oldPath)
	node, ok := x.nodes[oldKey]

	destOK := false
	if x.contains(newPath) && newPath != x.root && oldPath != x.root {
		if parent, pok := x.nodes[KeyFor(filepath.Dir(newPath))]; pok && parent.present && parent.meta.Kind == KindDir {
			destOK = true
		}
	}
	if !ok || !node.present || !destOK {
		x.ApplyDelete(oldPath)
		x.ApplyCreate(newPath, meta)
		return false
	}

	// Anything already sitting at the destination is being replaced.
	if existing, eok := x.nodes[KeyFor(newPath)]; eok {
		x.unlinkChild(existing.parent, KeyFor(newPath))
		x.deleteSubtree(KeyFor(newPath))
	}

	x.unlinkChild(node.parent, oldKey)
	x.rekey(oldKey, newPath)

	newKey := KeyFor(newPath)
	node = x.nodes[newKey]
	node.parent = KeyFor(filepath.Dir(newPath))
	node.name = filepath.Base(newPath)
	node.meta = meta
	x.linkChild(node.parent, newKey)
	return true
}

// Prune removes the tombstoned subtree at key from the arena. Present
// nodes are never pruned (the path was recreated since its delete). The
// root node itself is kept so the tree retains a shape while the root is
// gone; only its subtree is dropped.
func (x *PathIndex) Prune(key PathKey) {
	node, ok := x.nodes[key]
	if !ok || node.present {
		return
	}
	if key == x.rootKey {
		for _, c := range node.children {
			x.deleteSubtree(c)
		}
		node.children = nil
		return
	}
	x.unlinkChild(node.parent, key)
	x.deleteSubtree(key)
}

func (x *PathIndex) contains(path string) bool {
	if path == x.root {
		return true
	}
	prefix := x.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// ensureDir returns the key for an existing or newly created directory
// node at path, reviving tombstoned ancestors on the way: a create below a
// deleted directory implies that directory exists again.
func (x *PathIndex) ensureDir(path string) PathKey {
	key := KeyFor(path)
	if node, ok := x.nodes[key]; ok {
		if node.meta.Kind != KindDir {
			node.meta.Kind = KindDir
			x.relink(key, node)
		}
		if !node.present {
			node.present = true
			x.revive(node.parent)
		}
		return key
	}
	var parent PathKey
	if path != x.root {
		parent = x.ensureDir(filepath.Dir(path))
	}
	x.nodes[key] = &pathNode{
		parent:  parent,
		name:    filepath.Base(path),
		meta:    FileMeta{Kind: KindDir},
		present: true,
	}
	if !parent.IsZero() {
		x.linkChild(parent, key)
	}
	return key
}

func (x *PathIndex) revive(key PathKey) {
	for !key.IsZero() {
		node, ok := x.nodes[key]
		if !ok || node.present {
			return
		}
		node.present = true
		key = node.parent
	}
}

func (x *PathIndex) markAbsent(node *pathNode) {
	node.present = false
	for _, c := range node.children {
		if child, ok := x.nodes[c]; ok {
			x.markAbsent(child)
		}
	}
}

func (x *PathIndex) deleteSubtree(key PathKey) {
	node, ok := x.nodes[key]
	if !ok {
		return
	}
	for _, c := range node.children {
		x.deleteSubtree(c)
	}
	delete(x.nodes, key)
}

// rekey moves the subtree rooted at oldKey to newPath, fixing up arena
// keys and parent links for every descendant.
func (x *PathIndex) rekey(oldKey PathKey, newPath string) {
	node := x.nodes[oldKey]
	delete(x.nodes, oldKey)
	newKey := KeyFor(newPath)
	x.nodes[newKey] = node
	for i, childKey := range node.children {
		child := x.nodes[childKey]
		childPath := filepath.Join(newPath, child.name)
		x.rekey(childKey, childPath)
		node.children[i] = KeyFor(childPath)
		x.nodes[node.children[i]].parent = newKey
	}
}

// compareNodes orders siblings: directories before files, then
// case-insensitive lexicographic by name, byte order breaking ties.
func compareNodes(a, b *pathNode) int {
	if a.meta.Kind != b.meta.Kind {
		if a.meta.Kind == KindDir {
			return -1
		}
		return 1
	}
	if c := strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name)); c != 0 {
		return c
	}
	return strings.Compare(a.name, b.name)
}

func (x *PathIndex) linkChild(parentKey, childKey PathKey) {
	parent, ok := x.nodes[parentKey]
	if !ok {
		return
	}
	child := x.nodes[childKey]
	idx, found := slices.BinarySearchFunc(parent.children, childKey, func(elem, _ PathKey) int {
		return compareNodes(x.nodes[elem], child)
	})
	if found {
		return
	}
	parent.children = slices.Insert(parent.children, idx, childKey)
}

func (x *PathIndex) unlinkChild(parentKey, childKey PathKey) {
	parent, ok := x.nodes[parentKey]
	if !ok {
		return
	}
	if i := slices.Index(parent.children, childKey); i >= 0 {
		parent.children = slices.Delete(parent.children, i, i+1)
	}
}

// relink repositions a node under its parent after its sort key changed.
func (x *PathIndex) relink(key PathKey, node *pathNode) {
	if node.parent.IsZero() {
		return
	}
	x.unlinkChild(node.parent, key)
	x.linkChild(node.parent, key)
}

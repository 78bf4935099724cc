// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fsdata implements the data layer: it creates, removes, and mutates
// inodes and entries atomically, enforcing the cross-index invariants of the
// node/entry graph and resolving inode lifecycle.
package fsdata

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/Th-Os/IoTFS/internal/fserrors"
	"github.com/Th-Os/IoTFS/internal/fsentry"
	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
)

// Data owns the node store and entry index together and is the only thing
// in the system that adds or removes nodes and entries, so the cross-index
// invariants hold after every exported method returns. Callers holding Mu
// (fusefs) still update a node's flags, counters and xattrs, and an entry's
// kind, in place through the pointers Data hands out.
type Data struct {
	// Callers acquire Mu themselves around multi-step sequences (fusefs
	// owns the locking discipline); Data's own methods assume it is
	// already held, the same LOCKS_EXCLUDED convention gcsfuse's
	// fileSystem uses.
	Mu syncutil.InvariantMutex

	clock timeutil.Clock

	store *fsnode.Store
	index *fsentry.Index

	rootEntry *fsentry.Entry
}

// New returns a Data layer with no root yet. Callers must call AddRoot
// exactly once before serving any other operation.
func New(clock timeutil.Clock) *Data {
	d := &Data{
		clock: clock,
		store: fsnode.NewStore(),
		index: fsentry.NewIndex(),
	}
	d.Mu = syncutil.NewInvariantMutex(d.checkInvariants)
	return d
}

func (d *Data) now() int64 {
	return d.clock.Now().UnixNano()
}

// checkInvariants panics if the node/entry graph is inconsistent. It is
// wired into the InvariantMutex so every Lock/Unlock pair surrounding a
// mutation validates the data model's invariants automatically.
func (d *Data) checkInvariants() {
	for inode, n := range d.allNodes() {
		if inode == fsnode.RootInodeID {
			if !n.Root || n.HasParent {
				panic("fsdata: root node malformed")
			}
			continue
		}

		// A hardlink entry shares its Inode with the plain entry it points
		// at, so it always appears in this same slice; no separate check
		// is needed for it beyond the wrong-inode panic below.
		entries := d.index.EntriesOf(inode, nil)
		hasPlain := false
		hasSymlink := false
		for _, e := range entries {
			if e.Inode != inode {
				panic(fmt.Sprintf("fsdata: entry %+v indexed under wrong inode", e))
			}
			switch e.Kind {
			case fsentry.Plain:
				hasPlain = true
			case fsentry.Symlink:
				hasSymlink = true
			}
		}
		if !hasPlain && !hasSymlink && !n.Invisible {
			panic(fmt.Sprintf("fsdata: inode %d has no plain or symlink entry", inode))
		}
	}
}

func (d *Data) allNodes() map[fsnode.InodeID]*fsnode.Node {
	out := make(map[fsnode.InodeID]*fsnode.Node)
	for _, id := range d.store.IterInodes() {
		n, _ := d.store.Get(id)
		out[id] = n
	}
	return out
}

// AddRoot creates the root directory node and its single plain entry. It
// must be called exactly once, before any other Data method.
func (d *Data) AddRoot(name string, mode os.FileMode) error {
	if d.store.Contains(fsnode.RootInodeID) {
		return fmt.Errorf("fsdata: AddRoot called twice")
	}

	dirPath := "/"
	entryName := name
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		dirPath = name[:idx]
		if dirPath == "" {
			dirPath = "/"
		}
		entryName = name[idx+1:]
	}

	now := d.now()
	root := fsnode.NewDir(0, false, mode|os.ModeDir, 0, 0, now, true)
	d.store.Insert(fsnode.RootInodeID, root)

	entry := &fsentry.Entry{
		Inode: fsnode.RootInodeID,
		Name:  entryName,
		Path:  dirPath,
		Kind:  fsentry.Plain,
	}
	d.index.Add(entry)
	d.rootEntry = entry

	return nil
}

// RootName returns the name component of the root entry (the tail AddRoot
// split off its argument), used by lookup's parent==root self-name case.
func (d *Data) RootName() string {
	if d.rootEntry == nil {
		return ""
	}
	return d.rootEntry.Name
}

// GetNode returns the node for inode.
func (d *Data) GetNode(inode fsnode.InodeID) (*fsnode.Node, bool) {
	return d.store.Get(inode)
}

// AddEntry implements add_entry: allocates a new inode, inserts a File or
// Directory node, and adds a single Plain entry for it under parent.
func (d *Data) AddEntry(name string, parentInode fsnode.InodeID, kind fsnode.Kind, data []byte, mode os.FileMode) (*fsentry.Entry, error) {
	parent, ok := d.store.Get(parentInode)
	if !ok || parent.Kind != fsnode.DirNode {
		return nil, fserrors.ErrNotDirectory
	}

	parentPath := d.fullPathOf(parentInode)

	id := d.store.Allocate()
	now := d.now()

	var n *fsnode.Node
	switch kind {
	case fsnode.FileNode:
		n = fsnode.NewFile(parentInode, data, mode, parent.Uid, parent.Gid, now)
	case fsnode.DirNode:
		n = fsnode.NewDir(parentInode, true, mode|os.ModeDir, parent.Uid, parent.Gid, now, false)
	default:
		return nil, fmt.Errorf("fsdata: unknown node kind %v", kind)
	}
	d.store.Insert(id, n)

	entry := &fsentry.Entry{
		Inode: id,
		Name:  name,
		Path:  parentPath,
		Kind:  fsentry.Plain,
	}
	d.index.Add(entry)

	return entry, nil
}

// AddLinkEntryOptions configures AddLinkEntry for the symlink or hardlink
// case; exactly one of LinkPath/TargetInode applies depending on Kind.
type AddLinkEntryOptions struct {
	Kind        fsentry.Kind // fsentry.Symlink or fsentry.Hardlink
	LinkPath    string
	TargetInode fsnode.InodeID
	Mode        os.FileMode
}

// AddLinkEntry implements add_link_entry for both the symlink and hardlink
// cases.
func (d *Data) AddLinkEntry(name string, parentInode fsnode.InodeID, opts AddLinkEntryOptions) (*fsentry.Entry, error) {
	parent, ok := d.store.Get(parentInode)
	if !ok || parent.Kind != fsnode.DirNode {
		return nil, fserrors.ErrNotDirectory
	}
	parentPath := d.fullPathOf(parentInode)

	switch opts.Kind {
	case fsentry.Symlink:
		if opts.LinkPath == "" {
			return nil, fmt.Errorf("fsdata: symlink requires a link path")
		}

		// Attempt to resolve the target locally for a metadata hint; a
		// resolution failure is not fatal.
		kind := fsnode.FileNode
		if target, ok := d.resolveLocal(opts.LinkPath); ok {
			if tn, ok := d.store.Get(target.Inode); ok {
				kind = tn.Kind
			}
		}

		id := d.store.Allocate()
		now := d.now()
		var n *fsnode.Node
		if kind == fsnode.DirNode {
			n = fsnode.NewDir(parentInode, true, opts.Mode|os.ModeSymlink, parent.Uid, parent.Gid, now, false)
		} else {
			n = fsnode.NewFile(parentInode, nil, opts.Mode|os.ModeSymlink, parent.Uid, parent.Gid, now)
		}
		d.store.Insert(id, n)

		entry := &fsentry.Entry{
			Inode:    id,
			Name:     name,
			Path:     parentPath,
			Kind:     fsentry.Symlink,
			LinkPath: opts.LinkPath,
		}
		d.index.Add(entry)
		return entry, nil

	case fsentry.Hardlink:
		if opts.TargetInode == 0 {
			return nil, fmt.Errorf("fsdata: hardlink requires a target inode")
		}
		if !d.store.Contains(opts.TargetInode) {
			return nil, fserrors.ErrNoEntry
		}

		entry := &fsentry.Entry{
			Inode: opts.TargetInode,
			Name:  name,
			Path:  parentPath,
			Kind:  fsentry.Hardlink,
		}
		d.index.Add(entry)
		return entry, nil

	default:
		return nil, fmt.Errorf("fsdata: unknown link kind %v", opts.Kind)
	}
}

// GetEntry returns the plain entry for inode; if none exists, the (single)
// symlink entry. Fails if neither exists.
func (d *Data) GetEntry(inode fsnode.InodeID) (*fsentry.Entry, error) {
	if inode == fsnode.RootInodeID && d.rootEntry != nil {
		return d.rootEntry, nil
	}

	plainKind := fsentry.Plain
	if plain := d.index.EntriesOf(inode, &plainKind); len(plain) > 0 {
		return plain[0], nil
	}

	symlinkKind := fsentry.Symlink
	if sym := d.index.EntriesOf(inode, &symlinkKind); len(sym) > 0 {
		return sym[0], nil
	}

	return nil, fserrors.ErrNoEntry
}

// GetEntryByParentAndName looks up a child entry by name within parent.
func (d *Data) GetEntryByParentAndName(parentInode fsnode.InodeID, name string) (*fsentry.Entry, bool) {
	return d.index.FindByParentAndName(d.fullPathOf(parentInode), name)
}

// ListChildren returns every entry in the index's named directory.
func (d *Data) ListChildren(dirPath string) []*fsentry.Entry {
	return d.index.ListChildren(dirPath)
}

// GetChildren implements get_children: root reports itself as its own
// child (matching the kernel's expectation of finding root in its own
// parent lookup) when it has no parent; otherwise the directory's actual
// children are returned.
func (d *Data) GetChildren(inode fsnode.InodeID) ([]*fsentry.Entry, error) {
	n, ok := d.store.Get(inode)
	if !ok {
		return nil, fserrors.ErrNoEntry
	}
	if n.Kind != fsnode.DirNode {
		return nil, fserrors.ErrNotDirectory
	}

	if inode == fsnode.RootInodeID && !n.HasParent {
		return []*fsentry.Entry{d.rootEntry}, nil
	}

	return d.index.ListChildren(d.fullPathOf(inode)), nil
}

// MoveEntry implements rename's atomic path change: the entry is relocated
// from its current directory bucket to newDirPath under newName, in place,
// so entries_by_inode's reference to it stays valid. When the moved entry
// names a directory, every descendant bucket is re-keyed under the new
// full path as part of the same mutation.
func (d *Data) MoveEntry(entry *fsentry.Entry, newDirPath, newName string) {
	oldFull := entry.FullPath()
	d.index.Move(entry, newDirPath, newName)

	if n, ok := d.store.Get(entry.Inode); ok && n.Kind == fsnode.DirNode {
		d.index.RekeyPrefix(oldFull, entry.FullPath())
	}
}

// RemoveEntries removes each of entries from both indices.
func (d *Data) RemoveEntries(entries []*fsentry.Entry) {
	for _, e := range entries {
		d.index.Remove(e)
	}
}

// TryRemoveInode implements try_remove_inode: a no-op for root; otherwise,
// if open_count < 1, removes all entries for the inode and the node
// itself.
func (d *Data) TryRemoveInode(inode fsnode.InodeID) {
	if inode == fsnode.RootInodeID {
		return
	}

	n, ok := d.store.Get(inode)
	if !ok {
		return
	}
	if n.OpenCount >= 1 {
		return
	}

	d.RemoveEntries(d.index.EntriesOf(inode, nil))
	d.store.Remove(inode)
}

// TryIncreaseOpCount implements try_increase_op_count. Root is ignored.
func (d *Data) TryIncreaseOpCount(inode fsnode.InodeID) {
	if inode == fsnode.RootInodeID {
		return
	}
	if n, ok := d.store.Get(inode); ok {
		n.OpenCount++
	}
}

// TryDecreaseOpCount implements try_decrease_op_count: decrements
// open_count; if the node is invisible and open_count reaches zero (or
// goes negative, defensively), it is marked locked. Root is ignored.
func (d *Data) TryDecreaseOpCount(inode fsnode.InodeID) {
	if inode == fsnode.RootInodeID {
		return
	}
	n, ok := d.store.Get(inode)
	if !ok {
		return
	}

	n.OpenCount--
	if n.Invisible && n.OpenCount <= 0 {
		n.Locked = true
	}
}

// NodeCount returns the number of live nodes, for statfs's "files" field.
func (d *Data) NodeCount() int {
	return d.store.Len()
}

// TotalContentSize sums every live node's apparent size, for statfs's block
// accounting.
func (d *Data) TotalContentSize() int64 {
	var total int64
	for _, id := range d.store.IterInodes() {
		if n, ok := d.store.Get(id); ok {
			total += n.Size()
		}
	}
	return total
}

// OtherEntries returns the entries referencing entry's inode other than
// entry itself, for unlink's is-this-the-last-name decision.
func (d *Data) OtherEntries(entry *fsentry.Entry) []*fsentry.Entry {
	all := d.index.EntriesOf(entry.Inode, nil)
	out := make([]*fsentry.Entry, 0, len(all))
	for _, e := range all {
		if e != entry {
			out = append(out, e)
		}
	}
	return out
}

// HardlinkCount returns the number of hardlink entries for inode, used to
// compute nlink.
func (d *Data) HardlinkCount(inode fsnode.InodeID) int {
	return d.index.HardlinkCount(inode)
}

// SetAttributes implements setattr's field-by-field update: any non-nil
// parameter is applied, size changes truncate authoritatively (padding with
// NUL on growth), and ctime is always refreshed to the current wall time.
// Calling it twice with the same values is idempotent except for ctime.
func (d *Data) SetAttributes(inode fsnode.InodeID, size *int64, mode *os.FileMode, atime, mtime *int64) (*fsnode.Node, error) {
	n, ok := d.store.Get(inode)
	if !ok {
		return nil, fserrors.ErrNoEntry
	}

	if size != nil {
		n.Truncate(*size)
	}
	if mode != nil {
		n.Mode = *mode
	}
	if atime != nil {
		n.Atime = *atime
	}
	if mtime != nil {
		n.Mtime = *mtime
	}
	n.Ctime = d.now()

	return n, nil
}

// Write implements write's insertion semantics against the node for inode.
func (d *Data) Write(inode fsnode.InodeID, offset int64, buf []byte) (int, error) {
	n, ok := d.store.Get(inode)
	if !ok {
		return 0, fserrors.ErrNoEntry
	}
	written := n.Insert(offset, buf)
	n.Mtime = d.now()
	return written, nil
}

// Now exposes the data layer's clock for callers (the fusefs wrapper) that
// need a timestamp outside of a specific node mutation, e.g. request
// tracing.
func (d *Data) Now() int64 {
	return d.now()
}

// PathOf returns the full path of a directory inode, for callers outside
// the package that need to resolve a directory's children (fusefs's readdir
// and lookup paths).
func (d *Data) PathOf(inode fsnode.InodeID) string {
	return d.fullPathOf(inode)
}

// ResolveLocal exposes resolveLocal to callers outside the package (the
// symlink-aware lookup path in fusefs).
func (d *Data) ResolveLocal(linkPath string) (*fsentry.Entry, bool) {
	return d.resolveLocal(linkPath)
}

// fullPathOf returns the full path of a directory inode (its own entry's
// FullPath), used as the "path" field of entries created beneath it.
func (d *Data) fullPathOf(inode fsnode.InodeID) string {
	e, err := d.GetEntry(inode)
	if err != nil {
		return "/"
	}
	return e.FullPath()
}

// resolveLocal attempts to resolve a symlink target against the local
// filesystem graph, for add_link_entry's metadata hint. Failure is
// signalled by ok=false and is never fatal to the caller.
func (d *Data) resolveLocal(linkPath string) (*fsentry.Entry, bool) {
	clean := path.Clean(linkPath)
	if clean == "" || clean == "." {
		return nil, false
	}
	dir, name := path.Split(clean)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		dir = "/"
	}

	e, ok := d.index.FindByParentAndName(dir, name)
	return e, ok
}

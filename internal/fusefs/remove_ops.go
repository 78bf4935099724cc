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

package fusefs

import (
	"context"

	"github.com/Th-Os/IoTFS/internal/fsentry"
	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
)

func (fs *FileSystem) Unlink(ctx context.Context, op *fuseops.UnlinkOp) error {
	return fs.wrap("Unlink", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		entry, ok := fs.data.GetEntryByParentAndName(fsnode.InodeID(op.Parent), op.Name)
		if !ok {
			return fuse.ENOENT
		}

		node, ok := fs.data.GetNode(entry.Inode)
		if !ok {
			return fuse.ENOENT
		}

		snap := snapshotOf(entry, node)

		// While other names still reference the inode, only this entry goes
		// away; the node itself stays live and its link count drops. The
		// surviving hardlink is promoted so the inode keeps a plain entry.
		if others := fs.data.OtherEntries(entry); len(others) > 0 {
			fs.data.RemoveEntries([]*fsentry.Entry{entry})
			if entry.Kind == fsentry.Plain {
				others[0].Kind = fsentry.Plain
			}
			return fs.emit(EventRemoveFile, snap)
		}

		node.Invisible = true
		if node.OpenCount <= 1 {
			node.Locked = true
		}
		return fs.emit(EventRemoveFile, snap)
	})
}

func (fs *FileSystem) RmDir(ctx context.Context, op *fuseops.RmDirOp) error {
	return fs.wrap("RmDir", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		entry, ok := findPlainEntry(fs, fsnode.InodeID(op.Parent), op.Name)
		if !ok {
			return fuse.ENOENT
		}

		node, ok := fs.data.GetNode(entry.Inode)
		if !ok {
			return fuse.ENOENT
		}
		if node.Kind != fsnode.DirNode {
			return fuse.ENOTDIR
		}

		dirPath := fs.data.PathOf(entry.Inode)
		for _, child := range fs.data.ListChildren(dirPath) {
			if childNode, ok := fs.data.GetNode(child.Inode); ok && !childNode.Invisible {
				return fuse.ENOTEMPTY
			}
		}

		snap := snapshotOf(entry, node)

		fs.data.TryDecreaseOpCount(entry.Inode)
		node.Invisible = true
		if node.OpenCount <= 1 {
			node.Locked = true
		}
		return fs.emit(EventRemoveDir, snap)
	})
}

// findPlainEntry looks up (parent, name) preferring the Plain entry when
// more than one entry shares the name, per rmdir's tie-breaking rule.
func findPlainEntry(fs *FileSystem, parent fsnode.InodeID, name string) (*fsentry.Entry, bool) {
	dirPath := fs.data.PathOf(parent)
	var fallback *fsentry.Entry
	for _, e := range fs.data.ListChildren(dirPath) {
		if e.Name != name {
			continue
		}
		if e.Kind == fsentry.Plain {
			return e, true
		}
		if fallback == nil {
			fallback = e
		}
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

// Rename relocates an entry, overwriting any existing target atomically.
// RENAME_EXCHANGE / RENAME_NOREPLACE never arrive here: the transport
// rejects rename calls carrying flags before dispatch.
func (fs *FileSystem) Rename(ctx context.Context, op *fuseops.RenameOp) error {
	return fs.wrap("Rename", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		entry, ok := fs.data.GetEntryByParentAndName(fsnode.InodeID(op.OldParent), op.OldName)
		if !ok {
			return fuse.ENOENT
		}

		newDirPath := fs.data.PathOf(fsnode.InodeID(op.NewParent))

		if existing, ok := fs.data.GetEntryByParentAndName(fsnode.InodeID(op.NewParent), op.NewName); ok {
			targetNode, ok := fs.data.GetNode(existing.Inode)
			if ok {
				targetNode.Invisible = true
				if targetNode.OpenCount < 1 {
					targetNode.Locked = true
				}
				fs.data.RemoveEntries([]*fsentry.Entry{existing})
			}
		}

		node, ok := fs.data.GetNode(entry.Inode)
		if ok {
			node.ParentInode = fsnode.InodeID(op.NewParent)
		}

		fs.data.MoveEntry(entry, newDirPath, op.NewName)

		kind := EventRenameFile
		if node != nil && node.Kind == fsnode.DirNode {
			kind = EventRenameDir
		}
		return fs.emit(kind, snapshotOf(entry, node))
	})
}

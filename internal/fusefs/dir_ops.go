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
	"sort"

	"github.com/Th-Os/IoTFS/internal/fsentry"
	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
)

// OpenDir opens a directory for enumeration. Like file handles, directory
// handles are synthetic and equal the inode number; readdir recomputes the
// child list fresh on every call so that concurrent mutation is tolerated
// rather than frozen at open time.
func (fs *FileSystem) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	return fs.wrap("OpenDir", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		inode := fsnode.InodeID(op.Inode)
		if _, ok := fs.data.GetNode(inode); !ok {
			return fuse.ENOENT
		}

		fs.data.TryIncreaseOpCount(inode)
		op.Handle = fuseops.HandleID(inode)
		return nil
	})
}

// ReadDir implements readdir: children are sorted by inode and the
// "start_id" cursor (here the kernel's Offset) is the inode of the last
// entry already returned, so only entries with a strictly greater inode are
// listed. This gives a stable resume point even if entries are added or
// removed between calls. A swap-typed child is one that is itself named
// like a swap file; it is never listed.
func (fs *FileSystem) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	return fs.wrap("ReadDir", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		inode := fsnode.InodeID(op.Inode)
		dir, ok := fs.data.GetNode(inode)
		if !ok {
			return fuse.ENOENT
		}
		if dir.Kind != fsnode.DirNode {
			return fuse.ENOTDIR
		}

		// Not GetChildren: its root-reports-itself special case serves
		// lookup, while enumeration always wants the actual children.
		children := fs.data.ListChildren(fs.data.PathOf(inode))

		visible := make([]*fsentry.Entry, 0, len(children))
		for _, e := range children {
			if _, swap := isSwapName(e.Name); swap {
				continue
			}
			node, ok := fs.data.GetNode(e.Inode)
			if !ok || node.Invisible || node.Locked {
				continue
			}
			visible = append(visible, e)
		}
		sort.Slice(visible, func(i, j int) bool { return visible[i].Inode < visible[j].Inode })

		var n int
		for _, e := range visible {
			if fuseops.DirOffset(e.Inode) <= op.Offset {
				continue
			}
			node, _ := fs.data.GetNode(e.Inode)

			dirent := fuseutil.Dirent{
				Offset: fuseops.DirOffset(e.Inode),
				Inode:  fuseops.InodeID(e.Inode),
				Name:   e.Name,
				Type:   directTypeFor(node),
			}

			written := fuseutil.WriteDirent(op.Dst[n:], dirent)
			if written == 0 {
				break
			}
			n += written
		}

		op.BytesRead = n

		node, _ := fs.data.GetNode(inode)
		snap := fs.snapshotInode(inode, node)
		snap.Bytes = n
		return fs.emit(EventReadDir, snap)
	})
}

func (fs *FileSystem) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	return fs.wrap("ReleaseDirHandle", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		inode := fsnode.InodeID(op.Handle)
		if node, ok := fs.data.GetNode(inode); ok {
			node.Locked = false
		}
		fs.data.TryDecreaseOpCount(inode)
		return nil
	})
}

func directTypeFor(n *fsnode.Node) fuseutil.DirentType {
	if n != nil && n.Kind == fsnode.DirNode {
		return fuseutil.DT_Directory
	}
	return fuseutil.DT_File
}

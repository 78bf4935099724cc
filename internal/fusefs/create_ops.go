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
	"os"

	"github.com/Th-Os/IoTFS/internal/fsdata"
	"github.com/Th-Os/IoTFS/internal/fsentry"
	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/fuse/fuseops"
)

func (fs *FileSystem) MkDir(ctx context.Context, op *fuseops.MkDirOp) error {
	return fs.wrap("MkDir", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		entry, err := fs.data.AddEntry(op.Name, fsnode.InodeID(op.Parent), fsnode.DirNode, nil, op.Mode)
		if err != nil {
			return translateErr(err)
		}
		node, _ := fs.data.GetNode(entry.Inode)
		fs.fillChildEntry(&op.Entry, entry, node)
		return fs.emit(EventCreateDir, snapshotOf(entry, node))
	})
}

func (fs *FileSystem) CreateFile(ctx context.Context, op *fuseops.CreateFileOp) error {
	return fs.wrap("CreateFile", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		entry, err := fs.data.AddEntry(op.Name, fsnode.InodeID(op.Parent), fsnode.FileNode, nil, op.Mode)
		if err != nil {
			return translateErr(err)
		}
		node, _ := fs.data.GetNode(entry.Inode)
		fs.fillChildEntry(&op.Entry, entry, node)
		op.Handle = fuseops.HandleID(entry.Inode)

		return fs.emit(EventCreateFile, snapshotOf(entry, node))
	})
}

func (fs *FileSystem) CreateSymlink(ctx context.Context, op *fuseops.CreateSymlinkOp) error {
	return fs.wrap("CreateSymlink", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		target := normalizeSymlinkTarget(op.Target)
		entry, err := fs.data.AddLinkEntry(op.Name, fsnode.InodeID(op.Parent), fsdata.AddLinkEntryOptions{
			Kind:     fsentry.Symlink,
			LinkPath: target,
			Mode:     os.ModePerm,
		})
		if err != nil {
			return translateErr(err)
		}
		// The freshly created node already carries the single reference the
		// kernel now holds; no extra increment here.
		node, _ := fs.data.GetNode(entry.Inode)
		fs.fillChildEntry(&op.Entry, entry, node)
		return nil
	})
}

func (fs *FileSystem) CreateLink(ctx context.Context, op *fuseops.CreateLinkOp) error {
	return fs.wrap("CreateLink", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		target := fsnode.InodeID(op.Target)
		entry, err := fs.data.AddLinkEntry(op.Name, fsnode.InodeID(op.Parent), fsdata.AddLinkEntryOptions{
			Kind:        fsentry.Hardlink,
			TargetInode: target,
		})
		if err != nil {
			return translateErr(err)
		}

		fs.data.TryIncreaseOpCount(target)
		node, _ := fs.data.GetNode(target)
		fs.fillChildEntry(&op.Entry, entry, node)
		return nil
	})
}

func (fs *FileSystem) MkNode(ctx context.Context, op *fuseops.MkNodeOp) error {
	return fs.wrap("MkNode", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		entry, err := fs.data.AddEntry(op.Name, fsnode.InodeID(op.Parent), fsnode.FileNode, nil, op.Mode)
		if err != nil {
			return translateErr(err)
		}
		node, _ := fs.data.GetNode(entry.Inode)
		fs.fillChildEntry(&op.Entry, entry, node)
		return fs.emit(EventCreateFile, snapshotOf(entry, node))
	})
}

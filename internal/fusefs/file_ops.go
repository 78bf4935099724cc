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

	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
)

// OpenFile opens an existing file for I/O. The handle returned to the
// kernel is synthetic, equal to the inode number: there is no real OS
// descriptor underneath. O_CREAT opens are routed through CreateFile by the
// kernel, and O_TRUNC arrives as an explicit size-zero setattr ahead of the
// open, so neither flag needs handling here.
func (fs *FileSystem) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) error {
	return fs.wrap("OpenFile", func() error {
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

func (fs *FileSystem) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) error {
	return fs.wrap("ReadFile", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		node, ok := fs.data.GetNode(fsnode.InodeID(op.Inode))
		if !ok {
			return fuse.ENOENT
		}

		data := node.ReadAt(op.Offset, len(op.Dst))
		op.BytesRead = copy(op.Dst, data)

		snap := fs.snapshotInode(fsnode.InodeID(op.Inode), node)
		snap.Data = data
		return fs.emit(EventReadFile, snap)
	})
}

func (fs *FileSystem) WriteFile(ctx context.Context, op *fuseops.WriteFileOp) error {
	return fs.wrap("WriteFile", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		n, err := fs.data.Write(fsnode.InodeID(op.Inode), op.Offset, op.Data)
		if err != nil {
			return translateErr(err)
		}

		node, _ := fs.data.GetNode(fsnode.InodeID(op.Inode))
		snap := fs.snapshotInode(fsnode.InodeID(op.Inode), node)
		snap.Bytes = n
		return fs.emit(EventWriteFile, snap)
	})
}

func (fs *FileSystem) SyncFile(ctx context.Context, op *fuseops.SyncFileOp) error {
	return fs.wrap("SyncFile", func() error {
		return nil
	})
}

func (fs *FileSystem) FlushFile(ctx context.Context, op *fuseops.FlushFileOp) error {
	return fs.wrap("FlushFile", func() error {
		return nil
	})
}

func (fs *FileSystem) ReleaseFileHandle(ctx context.Context, op *fuseops.ReleaseFileHandleOp) error {
	return fs.wrap("ReleaseFileHandle", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		// Handles are synthetic: the handle value is the inode number.
		inode := fsnode.InodeID(op.Handle)
		if node, ok := fs.data.GetNode(inode); ok {
			node.Locked = false
		}
		fs.data.TryDecreaseOpCount(inode)
		return nil
	})
}

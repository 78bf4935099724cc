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
	"syscall"

	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"golang.org/x/sys/unix"
)

func (fs *FileSystem) SetXattr(ctx context.Context, op *fuseops.SetXattrOp) error {
	return fs.wrap("SetXattr", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		node, ok := fs.data.GetNode(fsnode.InodeID(op.Inode))
		if !ok {
			return fuse.ENOENT
		}

		_, exists := node.Xattrs[op.Name]
		switch op.Flags {
		case unix.XATTR_CREATE:
			if exists {
				return syscall.EEXIST
			}
		case unix.XATTR_REPLACE:
			if !exists {
				return syscall.ENODATA
			}
		}

		value := make([]byte, len(op.Value))
		copy(value, op.Value)
		node.Xattrs[op.Name] = value
		return nil
	})
}

func (fs *FileSystem) GetXattr(ctx context.Context, op *fuseops.GetXattrOp) error {
	return fs.wrap("GetXattr", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		node, ok := fs.data.GetNode(fsnode.InodeID(op.Inode))
		if !ok {
			return fuse.ENOENT
		}

		value, ok := node.Xattrs[op.Name]
		if !ok {
			return syscall.ENODATA
		}

		// A zero-length Dst is a size probe; a short one is an error.
		op.BytesRead = len(value)
		if len(op.Dst) >= len(value) {
			copy(op.Dst, value)
		} else if len(op.Dst) != 0 {
			return syscall.ERANGE
		}
		return nil
	})
}

func (fs *FileSystem) ListXattr(ctx context.Context, op *fuseops.ListXattrOp) error {
	return fs.wrap("ListXattr", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		node, ok := fs.data.GetNode(fsnode.InodeID(op.Inode))
		if !ok {
			return fuse.ENOENT
		}

		var n int
		for name := range node.Xattrs {
			n += len(name) + 1
		}

		op.BytesRead = n
		if len(op.Dst) < n {
			if len(op.Dst) != 0 {
				return syscall.ERANGE
			}
			return nil
		}

		off := 0
		for name := range node.Xattrs {
			off += copy(op.Dst[off:], name)
			op.Dst[off] = 0
			off++
		}
		return nil
	})
}

func (fs *FileSystem) RemoveXattr(ctx context.Context, op *fuseops.RemoveXattrOp) error {
	return fs.wrap("RemoveXattr", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		node, ok := fs.data.GetNode(fsnode.InodeID(op.Inode))
		if !ok {
			return fuse.ENOENT
		}

		if _, ok := node.Xattrs[op.Name]; !ok {
			return syscall.ENODATA
		}
		delete(node.Xattrs, op.Name)
		return nil
	})
}

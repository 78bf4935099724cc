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

// Package fusefs implements the FUSE operation dispatcher: it translates
// each kernel callback into fsdata calls and enforces the lifecycle rules
// around swap files, rename-over-existing, and deferred inode reclamation.
package fusefs

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/Th-Os/IoTFS/internal/fsdata"
	"github.com/Th-Os/IoTFS/internal/fsentry"
	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/Th-Os/IoTFS/internal/logger"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"
)

// Config bundles NewFileSystem's dependencies.
type Config struct {
	Clock    timeutil.Clock
	RootName string
	Uid      uint32
	Gid      uint32
	DirMode  os.FileMode

	// Sink, when non-nil, turns on producer mode: Emit is called after
	// every mutating or observed operation succeeds.
	Sink EventSink
}

// FileSystem is the concrete fuseutil.FileSystem implementation backing the
// mount. Producer mode plugs in through Config.Sink rather than by wrapping
// this type.
type FileSystem struct {
	fuseutil.NotImplementedFileSystem

	data  *fsdata.Data
	clock timeutil.Clock
	uid   uint32
	gid   uint32
	sink  EventSink

	// requestID is a purely observational counter, logged alongside each
	// dispatched operation: it starts at 2 and increases by 2 per call.
	// Advanced atomically because the fuseutil server dispatches ops on
	// concurrent goroutines, outside the data-layer lock.
	requestID uint64
}

// Data returns the underlying data layer, for callers (tests, and cmd when
// seeding the tree through the structure loader) that need direct access
// alongside the FUSE-facing API.
func (fs *FileSystem) Data() *fsdata.Data { return fs.data }

// NewFileSystem builds the in-memory filesystem described by cfg, with a
// freshly created root directory.
func NewFileSystem(cfg Config) (*FileSystem, error) {
	data := fsdata.New(cfg.Clock)
	if err := data.AddRoot(cfg.RootName, cfg.DirMode|os.ModeDir); err != nil {
		return nil, err
	}
	// Every other node inherits its owner from its parent directory, so
	// setting the root's owner here gives every node the configured uid/gid.
	if root, ok := data.GetNode(fsnode.RootInodeID); ok {
		root.Uid = cfg.Uid
		root.Gid = cfg.Gid
	}

	return &FileSystem{
		data:      data,
		clock:     cfg.Clock,
		uid:       cfg.Uid,
		gid:       cfg.Gid,
		sink:      cfg.Sink,
		requestID: 2,
	}, nil
}

// Mount serves fs at mountPoint until the process is killed or Join
// returns, exactly as cmd wires it up.
func Mount(mountPoint string, fs *FileSystem, cfg *fuse.MountConfig) (*fuse.MountedFileSystem, error) {
	server := fuseutil.NewFileSystemServer(fs)
	return fuse.Mount(mountPoint, server, cfg)
}

// wrap logs dispatch of a named operation and advances the request-id
// counter around running it. It never changes or swallows the result.
func (fs *FileSystem) wrap(name string, run func() error) error {
	id := atomic.AddUint64(&fs.requestID, 2) - 2

	logger.Tracef("request %d: dispatching %s", id, name)
	err := run()
	if err != nil {
		logger.Tracef("request %d: %s returned %v", id, name, err)
	} else {
		logger.Tracef("request %d: %s ok", id, name)
	}
	return err
}

// StatFS reports a synthetic filesystem: block size 512, a block count
// derived from live file content, and a node count from the store.
func (fs *FileSystem) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	return fs.wrap("StatFS", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		const blockSize = 512
		totalSize := fs.data.TotalContentSize()

		blocks := uint64(totalSize) / blockSize
		free := uint64(1024)
		if blocks > free {
			free = blocks
		}

		op.BlockSize = blockSize
		op.Blocks = blocks
		op.BlocksFree = free
		op.BlocksAvailable = free
		op.IoSize = blockSize
		op.Inodes = uint64(fs.data.NodeCount())
		op.InodesFree = 0
		return nil
	})
}

func (fs *FileSystem) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	return fs.wrap("LookUpInode", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		entry, node, err := fs.lookupChild(fsnode.InodeID(op.Parent), op.Name)
		switch err {
		case nil:
		case errLookupMiss:
			// Negative-cache hint: an entry with child inode zero and a
			// short expiration suppresses repeat scans for the same name.
			op.Entry.Child = 0
			op.Entry.EntryExpiration = fs.clock.Now().Add(negativeCacheTimeout)
			return nil
		default:
			return fuse.ENOENT
		}

		fs.data.TryIncreaseOpCount(entry.Inode)
		fs.fillChildEntry(&op.Entry, entry, node)
		return nil
	})
}

func (fs *FileSystem) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	return fs.wrap("GetInodeAttributes", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		node, ok := fs.data.GetNode(fsnode.InodeID(op.Inode))
		if !ok || node.Locked {
			return fuse.ENOENT
		}

		op.Attributes = attributesFor(node, fs.data.HardlinkCount(fsnode.InodeID(op.Inode)))
		op.AttributesExpiration = fs.clock.Now().Add(attributesCacheTimeout)
		return nil
	})
}

func (fs *FileSystem) SetInodeAttributes(ctx context.Context, op *fuseops.SetInodeAttributesOp) error {
	return fs.wrap("SetInodeAttributes", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		var size *int64
		if op.Size != nil {
			s := int64(*op.Size)
			size = &s
		}
		var atime, mtime *int64
		if op.Atime != nil {
			a := op.Atime.UnixNano()
			atime = &a
		}
		if op.Mtime != nil {
			m := op.Mtime.UnixNano()
			mtime = &m
		}

		node, err := fs.data.SetAttributes(fsnode.InodeID(op.Inode), size, op.Mode, atime, mtime)
		if err != nil {
			return fuse.ENOENT
		}

		op.Attributes = attributesFor(node, fs.data.HardlinkCount(fsnode.InodeID(op.Inode)))
		op.AttributesExpiration = fs.clock.Now().Add(attributesCacheTimeout)
		return nil
	})
}

func (fs *FileSystem) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	// Forget never returns an error to the kernel: there is nothing a
	// caller could do in response.
	fs.data.Mu.Lock()
	defer fs.data.Mu.Unlock()

	fs.forgetLocked(fsnode.InodeID(op.Inode), op.N)
	return nil
}

func (fs *FileSystem) BatchForget(ctx context.Context, op *fuseops.BatchForgetOp) error {
	fs.data.Mu.Lock()
	defer fs.data.Mu.Unlock()

	for _, e := range op.Entries {
		fs.forgetLocked(fsnode.InodeID(e.Inode), e.N)
	}
	return nil
}

// forgetLocked applies one (inode, nlookup) forget: a reference-count drop
// while the kernel still holds references, removal otherwise. Unknown inodes
// are silently ignored.
func (fs *FileSystem) forgetLocked(inode fsnode.InodeID, n uint64) {
	node, ok := fs.data.GetNode(inode)
	if !ok {
		return
	}

	if node.OpenCount > int64(n) {
		node.OpenCount -= int64(n)
		return
	}

	node.OpenCount = 0
	fs.data.TryRemoveInode(inode)
}

// fillChildEntry copies node/entry state into a ChildInodeEntry, applying
// the long positive-cache lifetime every lookup hit gets: this filesystem
// never changes state except in response to an operation the kernel itself
// issued, so there is nothing to invalidate behind its back.
func (fs *FileSystem) fillChildEntry(ce *fuseops.ChildInodeEntry, entry *fsentry.Entry, node *fsnode.Node) {
	ce.Child = fuseops.InodeID(entry.Inode)
	ce.Attributes = attributesFor(node, fs.data.HardlinkCount(entry.Inode))
	ce.AttributesExpiration = fs.clock.Now().Add(attributesCacheTimeout)
	ce.EntryExpiration = fs.clock.Now().Add(attributesCacheTimeout)
}

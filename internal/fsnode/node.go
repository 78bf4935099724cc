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

// Package fsnode implements the node store (C1): the content-and-metadata
// record for every inode in the filesystem, keyed by inode number. It holds
// no lock of its own; callers serialize access one level up, in fsdata.
package fsnode

import "os"

// InodeID identifies a node for the lifetime of the process. Inode 1 is
// reserved for the root directory and is never reused.
type InodeID uint64

// RootInodeID is the inode number reserved for the root directory.
const RootInodeID InodeID = 1

// Kind distinguishes the two node shapes this filesystem stores.
type Kind int

const (
	FileNode Kind = iota
	DirNode
)

// Node is the content-and-metadata record referenced by one or more Entries.
// File nodes own a byte buffer; directory nodes own none. Both shapes share
// the remaining bookkeeping fields.
type Node struct {
	Kind Kind

	// Data holds the byte buffer backing a file node. Always empty for
	// directory nodes.
	Data []byte

	Mode os.FileMode
	Uid  uint32
	Gid  uint32

	Atime int64 // nanoseconds
	Mtime int64
	Ctime int64

	// ParentInode is the directory containing this node's primary entry.
	// HasParent is false only for the root.
	ParentInode InodeID
	HasParent   bool

	// Root marks the single directory node with inode RootInodeID.
	Root bool

	// OpenCount tracks active kernel references: both outstanding lookups
	// and open file handles count against it, combined.
	OpenCount int64

	// Invisible is set on unlink/rmdir; the node is still reachable by
	// inode but no longer appears in directory listings.
	Invisible bool

	// Locked marks a node whose removal is pending the next open_count
	// drop to zero.
	Locked bool

	// Xattrs maps an attribute name to its opaque byte value.
	Xattrs map[string][]byte
}

// Size returns the node's apparent size: the buffer length for files, zero
// for directories.
func (n *Node) Size() int64 {
	if n.Kind == DirNode {
		return 0
	}
	return int64(len(n.Data))
}

// NewFile constructs a file node with an initial open_count of 1, as
// add_entry and add_link_entry require.
func NewFile(parent InodeID, data []byte, mode os.FileMode, uid, gid uint32, now int64) *Node {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Node{
		Kind:        FileNode,
		Data:        buf,
		Mode:        mode,
		Uid:         uid,
		Gid:         gid,
		Atime:       now,
		Mtime:       now,
		Ctime:       now,
		ParentInode: parent,
		HasParent:   true,
		OpenCount:   1,
		Xattrs:      make(map[string][]byte),
	}
}

// NewDir constructs a directory node with an initial open_count of 1.
func NewDir(parent InodeID, hasParent bool, mode os.FileMode, uid, gid uint32, now int64, root bool) *Node {
	return &Node{
		Kind:        DirNode,
		Mode:        mode,
		Uid:         uid,
		Gid:         gid,
		Atime:       now,
		Mtime:       now,
		Ctime:       now,
		ParentInode: parent,
		HasParent:   hasParent,
		Root:        root,
		OpenCount:   1,
		Xattrs:      make(map[string][]byte),
	}
}

// Truncate implements setattr's authoritative truncation semantics: shrink
// drops the tail, grow pads with NUL bytes.
func (n *Node) Truncate(size int64) {
	cur := int64(len(n.Data))
	switch {
	case size < cur:
		n.Data = n.Data[:size]
	case size > cur:
		n.Data = append(n.Data, make([]byte, size-cur)...)
	}
}

// Insert implements write's insertion semantics: bytes at and after offset
// are shifted right to make room for buf, rather than overwritten in place.
// Offsets past EOF pad with NUL first.
func (n *Node) Insert(offset int64, buf []byte) int {
	if offset > int64(len(n.Data)) {
		n.Data = append(n.Data, make([]byte, offset-int64(len(n.Data)))...)
	}

	tail := make([]byte, len(n.Data)-int(offset))
	copy(tail, n.Data[offset:])

	n.Data = append(n.Data[:offset:offset], append(append([]byte{}, buf...), tail...)...)
	return len(buf)
}

// ReadAt returns the slice [offset, offset+size), clipped to the buffer's
// length. A short read past EOF is not an error.
func (n *Node) ReadAt(offset int64, size int) []byte {
	if offset >= int64(len(n.Data)) {
		return nil
	}
	end := offset + int64(size)
	if end > int64(len(n.Data)) {
		end = int64(len(n.Data))
	}
	out := make([]byte, end-offset)
	copy(out, n.Data[offset:end])
	return out
}

// NLink reports the kernel link count: 1 plus the number of hardlink
// entries, supplied by the caller since the node itself doesn't track its
// own entries.
func NLink(hardlinkCount int) uint32 {
	return uint32(1 + hardlinkCount)
}

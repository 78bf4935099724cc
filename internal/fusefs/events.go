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
	"os"

	"github.com/Th-Os/IoTFS/internal/fsentry"
	"github.com/Th-Os/IoTFS/internal/fsnode"
)

// EventKind tags the observed operation a Snapshot was captured for.
type EventKind int

const (
	EventCreateFile EventKind = iota
	EventCreateDir
	EventReadFile
	EventReadDir
	EventWriteFile
	EventRenameFile
	EventRenameDir
	EventRemoveFile
	EventRemoveDir
)

func (k EventKind) String() string {
	switch k {
	case EventCreateFile:
		return "CREATE_FILE"
	case EventCreateDir:
		return "CREATE_DIR"
	case EventReadFile:
		return "READ_FILE"
	case EventReadDir:
		return "READ_DIR"
	case EventWriteFile:
		return "WRITE_FILE"
	case EventRenameFile:
		return "RENAME_FILE"
	case EventRenameDir:
		return "RENAME_DIR"
	case EventRemoveFile:
		return "REMOVE_FILE"
	case EventRemoveDir:
		return "REMOVE_DIR"
	default:
		return "UNKNOWN"
	}
}

// Snapshot captures the salient fields of a node and the entry an operation
// touched, taken after the operation completes (or, for removals, just
// before the node is marked gone, so a listener can see what disappeared).
type Snapshot struct {
	Inode fsnode.InodeID
	Kind  fsnode.Kind
	Name  string
	Path  string
	Mode  os.FileMode
	Size  int64

	Atime int64
	Mtime int64
	Ctime int64

	// Bytes is the count of bytes written for WRITE_FILE, and the number of
	// dirent bytes returned for READ_DIR; other kinds leave it zero.
	Bytes int

	// Data is the slice returned to the kernel, set only for READ_FILE.
	Data []byte
}

// EventSink receives a Snapshot each time a mutating or observed operation
// succeeds. Implementations must not block the FUSE dispatch goroutine for
// long, since Emit runs with the data-layer mutex held. Emit returns an
// error only when producer mode is configured but has nowhere to deliver
// the event (an unconfigured queue); that error is surfaced to the kernel
// as the operation's own result, matching the strict producer-mode
// contract described for the FUSE operation wrapper.
type EventSink interface {
	Emit(kind EventKind, snap Snapshot) error
}

// snapshotInode builds a Snapshot for operations that only carry an inode
// number (read, write, readdir), looking up its canonical entry for the name/path
// fields. A node with no surviving entry (mid-reclamation) gets an empty
// name/path rather than failing the snapshot.
func (fs *FileSystem) snapshotInode(inode fsnode.InodeID, node *fsnode.Node) Snapshot {
	snap := Snapshot{
		Inode: inode,
		Kind:  node.Kind,
		Mode:  node.Mode,
		Size:  node.Size(),
		Atime: node.Atime,
		Mtime: node.Mtime,
		Ctime: node.Ctime,
	}
	if entry, err := fs.data.GetEntry(inode); err == nil {
		snap.Name = entry.Name
		snap.Path = entry.FullPath()
	}
	return snap
}

func snapshotOf(entry *fsentry.Entry, node *fsnode.Node) Snapshot {
	return Snapshot{
		Inode: entry.Inode,
		Kind:  node.Kind,
		Name:  entry.Name,
		Path:  entry.FullPath(),
		Mode:  node.Mode,
		Size:  node.Size(),
		Atime: node.Atime,
		Mtime: node.Mtime,
		Ctime: node.Ctime,
	}
}

// emit forwards to the configured sink, if any, returning nil when no sink
// is configured: producer mode is opt-in, and an absent sink simply means
// it was never turned on.
func (fs *FileSystem) emit(kind EventKind, snap Snapshot) error {
	if fs.sink == nil {
		return nil
	}
	return fs.sink.Emit(kind, snap)
}

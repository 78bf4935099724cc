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
	"errors"
	"path"
	"strings"
	"time"

	"github.com/Th-Os/IoTFS/internal/fserrors"
	"github.com/Th-Os/IoTFS/internal/fsentry"
	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
)

// errLookupMiss distinguishes "no such name anywhere" (answered with a
// negative-cache entry) from fserrors.ErrNoEntry (a locked or vanished node,
// answered with ENOENT).
var errLookupMiss = errors.New("fusefs: lookup miss")

// negativeCacheTimeout is the entry lifetime handed to the kernel on a
// lookup miss, suppressing repeat scans for the same absent name.
const negativeCacheTimeout = time.Second

// isSwapName reports whether name matches the editor swap-file pattern
// .<base>.swp, returning the base name when it does.
func isSwapName(name string) (base string, ok bool) {
	if !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".swp") {
		return "", false
	}
	base = strings.TrimSuffix(strings.TrimPrefix(name, "."), ".swp")
	if base == "" {
		return "", false
	}
	return base, true
}

// lookupChild implements lookup's scan-then-fallback sequence: an entry of
// any kind matching by name, then a symlink whose target basename matches,
// then the swap-file heuristic. Callers hold data.Mu.
func (fs *FileSystem) lookupChild(parent fsnode.InodeID, name string) (*fsentry.Entry, *fsnode.Node, error) {
	if parent == fsnode.RootInodeID && name == fs.data.RootName() {
		node, ok := fs.data.GetNode(fsnode.RootInodeID)
		if !ok {
			return nil, nil, fserrors.ErrNoEntry
		}
		rootEntry, err := fs.data.GetEntry(fsnode.RootInodeID)
		if err != nil {
			return nil, nil, err
		}
		return rootEntry, node, nil
	}

	dirPath := fs.data.PathOf(parent)

	// An entry of any kind matching by name answers with its own node: a
	// symlink looked up by name must return the symlink inode itself, or
	// the kernel could never readlink it.
	if entry, ok := fs.data.GetEntryByParentAndName(parent, name); ok {
		node, ok := fs.data.GetNode(entry.Inode)
		if !ok || node.Locked {
			return nil, nil, fserrors.ErrNoEntry
		}
		return entry, node, nil
	}

	// No name match: a symlink whose target's basename equals the asked-for
	// name still resolves, answering with the target's attributes.
	for _, e := range fs.data.ListChildren(dirPath) {
		if e.Kind != fsentry.Symlink || path.Base(e.LinkPath) != name {
			continue
		}
		if target, ok := fs.data.ResolveLocal(e.LinkPath); ok {
			if node, ok := fs.data.GetNode(target.Inode); ok && !node.Locked {
				return target, node, nil
			}
		}
	}

	if base, ok := isSwapName(name); ok {
		if baseEntry, ok := fs.data.GetEntryByParentAndName(parent, base); ok {
			node, ok := fs.data.GetNode(baseEntry.Inode)
			if !ok {
				return nil, nil, fserrors.ErrNoEntry
			}
			return baseEntry, node, nil
		}

		baseEntry, err := fs.data.AddEntry(base, parent, fsnode.FileNode, nil, 0o644)
		if err != nil {
			return nil, nil, err
		}
		baseNode, _ := fs.data.GetNode(baseEntry.Inode)

		// The swap entry's initial content copies the base entry's
		// content, which is empty at this moment.
		if _, err := fs.data.AddEntry(name, parent, fsnode.FileNode, baseNode.Data, 0o644); err != nil {
			return nil, nil, err
		}

		return baseEntry, baseNode, nil
	}

	return nil, nil, errLookupMiss
}

func (fs *FileSystem) ReadSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	return fs.wrap("ReadSymlink", func() error {
		fs.data.Mu.Lock()
		defer fs.data.Mu.Unlock()

		entry, err := fs.data.GetEntry(fsnode.InodeID(op.Inode))
		if err != nil || entry.Kind != fsentry.Symlink {
			return fuse.ENOENT
		}
		op.Target = entry.LinkPath
		return nil
	})
}

// normalizeSymlinkTarget records targets as absolute-looking strings: a
// relative target is prefixed with the path separator, matching the
// behavior editors and scripts expect when they later stat the link.
func normalizeSymlinkTarget(target string) string {
	if path.IsAbs(target) {
		return target
	}
	return "/" + target
}

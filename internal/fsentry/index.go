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

package fsentry

import (
	"strings"

	"github.com/Th-Os/IoTFS/internal/fsnode"
)

// Index holds the two mappings that jointly represent the directory graph.
// entriesByInode is a reverse index of entriesByDir; Add/Remove/Move keep
// both in lock-step so they always agree after an operation completes.
type Index struct {
	entriesByDir   map[string][]*Entry
	entriesByInode map[fsnode.InodeID][]*Entry
}

// NewIndex returns an empty entry index.
func NewIndex() *Index {
	return &Index{
		entriesByDir:   make(map[string][]*Entry),
		entriesByInode: make(map[fsnode.InodeID][]*Entry),
	}
}

// Add appends entry to both indices.
func (ix *Index) Add(e *Entry) {
	ix.entriesByDir[e.Path] = append(ix.entriesByDir[e.Path], e)
	ix.entriesByInode[e.Inode] = append(ix.entriesByInode[e.Inode], e)
}

// Remove deletes the one entry reference matching e from both indices. It
// is a no-op if e is not present.
func (ix *Index) Remove(e *Entry) {
	ix.entriesByDir[e.Path] = removeEntry(ix.entriesByDir[e.Path], e)
	if len(ix.entriesByDir[e.Path]) == 0 {
		delete(ix.entriesByDir, e.Path)
	}

	ix.entriesByInode[e.Inode] = removeEntry(ix.entriesByInode[e.Inode], e)
	if len(ix.entriesByInode[e.Inode]) == 0 {
		delete(ix.entriesByInode, e.Inode)
	}
}

// Move performs the atomic path change a rename needs: remove entry from
// its old directory bucket, mutate it in place, and insert it at the new
// path. Because it mutates e.Path directly rather than removing and
// re-adding a copy, entriesByInode's reference to e stays valid.
func (ix *Index) Move(e *Entry, newPath, newName string) {
	ix.entriesByDir[e.Path] = removeEntry(ix.entriesByDir[e.Path], e)
	if len(ix.entriesByDir[e.Path]) == 0 {
		delete(ix.entriesByDir, e.Path)
	}

	e.Path = newPath
	e.Name = newName

	ix.entriesByDir[newPath] = append(ix.entriesByDir[newPath], e)
}

// RekeyPrefix relocates every bucket at or below oldPrefix to the matching
// path under newPrefix, mutating each affected entry in place so the inode
// index's references stay valid. Used when a directory is renamed: its
// descendants' containing paths all change with it.
func (ix *Index) RekeyPrefix(oldPrefix, newPrefix string) {
	var dirs []string
	for dir := range ix.entriesByDir {
		if dir == oldPrefix || strings.HasPrefix(dir, oldPrefix+"/") {
			dirs = append(dirs, dir)
		}
	}

	for _, dir := range dirs {
		entries := ix.entriesByDir[dir]
		delete(ix.entriesByDir, dir)

		newDir := newPrefix + dir[len(oldPrefix):]
		for _, e := range entries {
			e.Path = newDir
		}
		ix.entriesByDir[newDir] = append(ix.entriesByDir[newDir], entries...)
	}
}

// ListChildren returns the entries whose containing path equals dirPath.
func (ix *Index) ListChildren(dirPath string) []*Entry {
	children := ix.entriesByDir[dirPath]
	out := make([]*Entry, len(children))
	copy(out, children)
	return out
}

// FindByParentAndName looks up the child entry by name within dirPath. It
// returns the first entry in the bucket whose name matches, whatever its
// kind; callers that must prefer the plain entry when several share the
// name scan ListChildren themselves.
func (ix *Index) FindByParentAndName(dirPath, name string) (*Entry, bool) {
	for _, e := range ix.entriesByDir[dirPath] {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// EntriesOf returns all entries referencing inode, optionally filtered by
// kind. Pass nil to get every entry regardless of kind.
func (ix *Index) EntriesOf(inode fsnode.InodeID, kind *Kind) []*Entry {
	all := ix.entriesByInode[inode]
	if kind == nil {
		out := make([]*Entry, len(all))
		copy(out, all)
		return out
	}

	var out []*Entry
	for _, e := range all {
		if e.Kind == *kind {
			out = append(out, e)
		}
	}
	return out
}

// HardlinkCount returns the number of Hardlink entries referencing inode,
// used to compute nlink = 1 + count.
func (ix *Index) HardlinkCount(inode fsnode.InodeID) int {
	n := 0
	for _, e := range ix.entriesByInode[inode] {
		if e.Kind == Hardlink {
			n++
		}
	}
	return n
}

func removeEntry(list []*Entry, target *Entry) []*Entry {
	for i, e := range list {
		if e == target {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

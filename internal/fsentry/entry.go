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

// Package fsentry implements the entry index (C2): the mapping from
// directory paths to the entries they contain, and from inodes back to the
// entries that reference them.
package fsentry

import "github.com/Th-Os/IoTFS/internal/fsnode"

// Kind distinguishes the three entry shapes the data model defines.
type Kind int

const (
	// Plain is an ordinary name-to-node reference; every inode >= 2 has
	// exactly one (or a symlink in its place).
	Plain Kind = iota
	// Hardlink is a second name for an already-existing inode.
	Hardlink
	// Symlink carries its own inode and an opaque LinkPath.
	Symlink
)

// Entry is a named reference in a directory to a node. Name and Path never
// contain NUL bytes; Name never contains the path separator.
type Entry struct {
	Inode fsnode.InodeID
	Name  string
	Path  string
	Kind  Kind

	// LinkPath is set only for Symlink entries: the (possibly relative)
	// target path string, recorded verbatim and resolved by the kernel.
	LinkPath string
}

// FullPath returns the entry's own path, as opposed to Path (the directory
// that contains it).
func (e *Entry) FullPath() string {
	if e.Path == "/" {
		return e.Path + e.Name
	}
	return e.Path + "/" + e.Name
}

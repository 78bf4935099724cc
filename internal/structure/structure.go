// Copyright 2025 Google LLC
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

// Package structure loads an optional JSON blueprint that seeds the
// in-memory tree with a directory/file layout at startup. The parser is
// deliberately separate from its consumption: Build drives fsdata through
// the same AddEntry/AddLinkEntry operations any other caller would use, so
// the blueprint format itself can change without touching the core engine.
package structure

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Th-Os/IoTFS/internal/fsdata"
	"github.com/Th-Os/IoTFS/internal/fsentry"
	"github.com/Th-Os/IoTFS/internal/fsnode"
)

// Node is one entry in a blueprint: either a directory (Children non-nil)
// or a file (Content set), or a symlink (Target set).
type Node struct {
	Name     string `json:"name"`
	Content  string `json:"content,omitempty"`
	Target   string `json:"target,omitempty"`
	Mode     uint32 `json:"mode,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Blueprint is the top-level document: a root name and the tree beneath it.
type Blueprint struct {
	Root     string `json:"root"`
	Children []Node `json:"children,omitempty"`
}

// Parse decodes a blueprint document from r.
func Parse(r io.Reader) (Blueprint, error) {
	var bp Blueprint
	if err := json.NewDecoder(r).Decode(&bp); err != nil {
		return Blueprint{}, fmt.Errorf("structure: parse: %w", err)
	}
	return bp, nil
}

// ParseFile reads and parses a blueprint document from path.
func ParseFile(path string) (Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Blueprint{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Build seeds data with the blueprint's tree, starting from the already
// existing root entry; callers create the root beforehand via
// fsdata.Data.AddRoot. The blueprint's Root name is not read: it is not
// checked against the existing root entry's name.
func Build(data *fsdata.Data, bp Blueprint) error {
	data.Mu.Lock()
	defer data.Mu.Unlock()

	for _, child := range bp.Children {
		if err := buildNode(data, fsnode.RootInodeID, child); err != nil {
			return err
		}
	}
	return nil
}

func buildNode(data *fsdata.Data, parent fsnode.InodeID, n Node) error {
	mode := os.FileMode(n.Mode)

	switch {
	case n.Target != "":
		_, err := data.AddLinkEntry(n.Name, parent, fsdata.AddLinkEntryOptions{
			Kind:     fsentry.Symlink,
			LinkPath: n.Target,
			Mode:     os.ModePerm,
		})
		return err

	case n.Children != nil:
		if mode == 0 {
			mode = 0o777 | os.ModeDir
		}
		entry, err := data.AddEntry(n.Name, parent, fsnode.DirNode, nil, mode)
		if err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := buildNode(data, entry.Inode, child); err != nil {
				return err
			}
		}
		return nil

	default:
		if mode == 0 {
			mode = 0o666
		}
		_, err := data.AddEntry(n.Name, parent, fsnode.FileNode, []byte(n.Content), mode)
		return err
	}
}

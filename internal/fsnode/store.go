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

package fsnode

// Store owns file/directory content nodes keyed by inode. It allocates
// inode numbers from a per-process monotonic counter; inode 1 is reserved
// for the root and inodes are never reused while the filesystem lives.
//
// Store embeds no lock: fsdata.Data serializes access to it, keeping one
// outer invariant mutex rather than a per-node lock (see fsdata.Data.Mu).
type Store struct {
	nodes     map[InodeID]*Node
	nextInode InodeID
}

// NewStore returns an empty store with the inode counter primed so the
// first allocation after the root returns 2.
func NewStore() *Store {
	return &Store{
		nodes:     make(map[InodeID]*Node),
		nextInode: RootInodeID + 1,
	}
}

// Get returns the node for id, if any.
func (s *Store) Get(id InodeID) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Insert records a node under the given, already-allocated inode.
func (s *Store) Insert(id InodeID, n *Node) {
	s.nodes[id] = n
}

// Remove deletes a node from the store. It is a no-op if the node is
// already gone.
func (s *Store) Remove(id InodeID) {
	delete(s.nodes, id)
}

// Contains reports whether id names a live node.
func (s *Store) Contains(id InodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// IterInodes returns every live inode number. Order is unspecified.
func (s *Store) IterInodes() []InodeID {
	out := make([]InodeID, 0, len(s.nodes))
	for id := range s.nodes {
		out = append(out, id)
	}
	return out
}

// Len reports the number of live nodes, used by statfs's "files" field.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Allocate reserves and returns the next inode number. The root inode (1)
// is never returned here; it is seeded directly by fsdata.AddRoot.
func (s *Store) Allocate() InodeID {
	id := s.nextInode
	s.nextInode++
	return id
}

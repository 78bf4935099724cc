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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreAllocateStartsAfterRoot(t *testing.T) {
	s := NewStore()
	assert.Equal(t, RootInodeID+1, s.Allocate())
	assert.Equal(t, RootInodeID+2, s.Allocate())
}

func TestStoreInsertGetRemove(t *testing.T) {
	s := NewStore()
	id := s.Allocate()
	n := NewFile(RootInodeID, nil, 0o644, 0, 0, 0)

	s.Insert(id, n)
	got, ok := s.Get(id)
	assert.True(t, ok)
	assert.Same(t, n, got)
	assert.True(t, s.Contains(id))
	assert.Equal(t, 1, s.Len())

	s.Remove(id)
	assert.False(t, s.Contains(id))
	assert.Equal(t, 0, s.Len())
}

func TestStoreRemoveMissingIsNoop(t *testing.T) {
	s := NewStore()
	assert.NotPanics(t, func() { s.Remove(999) })
}

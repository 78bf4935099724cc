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
	"github.com/stretchr/testify/require"
)

func TestNewFileCopiesInitialData(t *testing.T) {
	buf := []byte("hello")
	n := NewFile(RootInodeID, buf, 0o644, 0, 0, 100)

	buf[0] = 'X'
	assert.Equal(t, "hello", string(n.Data))
	assert.EqualValues(t, 1, n.OpenCount)
}

func TestTruncateShrinkAndGrow(t *testing.T) {
	n := NewFile(RootInodeID, []byte("abcdef"), 0o644, 0, 0, 0)

	n.Truncate(3)
	assert.Equal(t, "abc", string(n.Data))

	n.Truncate(5)
	require.Len(t, n.Data, 5)
	assert.Equal(t, []byte{'a', 'b', 'c', 0, 0}, n.Data)
}

func TestInsertShiftsExistingBytes(t *testing.T) {
	n := NewFile(RootInodeID, []byte("abcdef"), 0o644, 0, 0, 0)

	written := n.Insert(2, []byte("XY"))

	assert.Equal(t, 2, written)
	assert.Equal(t, "abXYcdef", string(n.Data))
}

func TestInsertPastEOFPadsWithNUL(t *testing.T) {
	n := NewFile(RootInodeID, []byte("ab"), 0o644, 0, 0, 0)

	n.Insert(4, []byte("Z"))

	assert.Equal(t, []byte{'a', 'b', 0, 0, 'Z'}, n.Data)
}

func TestReadAtClipsToEOF(t *testing.T) {
	n := NewFile(RootInodeID, []byte("abcdef"), 0o644, 0, 0, 0)

	assert.Equal(t, []byte("cdef"), n.ReadAt(2, 10))
	assert.Nil(t, n.ReadAt(100, 10))
}

func TestNLink(t *testing.T) {
	assert.EqualValues(t, 1, NLink(0))
	assert.EqualValues(t, 3, NLink(2))
}

func TestSizeForDirIsZero(t *testing.T) {
	dir := NewDir(RootInodeID, true, 0o755, 0, 0, 0, false)
	assert.Zero(t, dir.Size())
}

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

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndReadFile(t *testing.T) {
	c := New(t.TempDir())

	require.NoError(t, c.CreateFile("/", "foo.txt", []byte("hello")))

	got, err := c.ReadFile("/", "foo.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestCreateDirAndReadDir(t *testing.T) {
	c := New(t.TempDir())

	require.NoError(t, c.CreateDir("/", "sub"))
	require.NoError(t, c.CreateFile("/sub", "a.txt", nil))
	require.NoError(t, c.CreateFile("/sub", "b.txt", nil))

	names, err := c.ReadDir("/", "sub")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, names)
}

func TestCreateDirAllMakesParents(t *testing.T) {
	c := New(t.TempDir())

	require.NoError(t, c.CreateDirAll("/", "a/b/c"))

	names, err := c.ReadDir("/a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names)
}

func TestRenameKeepsDirectory(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.CreateFile("/", "foo.txt", []byte("x")))

	require.NoError(t, c.Rename("/", "foo.txt", "bar.txt"))

	_, err := c.ReadFile("/", "foo.txt")
	assert.Error(t, err)
	got, err := c.ReadFile("/", "bar.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestMoveChangesDirectory(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.CreateDir("/", "dst"))
	require.NoError(t, c.CreateFile("/", "foo.txt", []byte("x")))

	require.NoError(t, c.Move("/", "foo.txt", "/dst"))

	got, err := c.ReadFile("/dst", "foo.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestWriteFileOverwrites(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.CreateFile("/", "foo.txt", []byte("aaaa")))

	require.NoError(t, c.WriteFile("/", "foo.txt", []byte("b")))

	got, err := c.ReadFile("/", "foo.txt")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}

func TestDeleteFileAndDirAll(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.CreateFile("/", "foo.txt", nil))
	require.NoError(t, c.DeleteFile("/", "foo.txt"))
	_, err := c.ReadFile("/", "foo.txt")
	assert.Error(t, err)

	require.NoError(t, c.CreateDirAll("/", "a/b"))
	require.NoError(t, c.CreateFile("/a/b", "f.txt", nil))
	require.NoError(t, c.DeleteDirAll("/", "a"))

	_, err = c.ReadDir("/", "a")
	assert.Error(t, err)
}

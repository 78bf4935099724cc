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

package structure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Th-Os/IoTFS/internal/fsdata"
	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestData(t *testing.T) *fsdata.Data {
	t.Helper()
	var clock timeutil.SimulatedClock
	clock.SetTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	d := fsdata.New(&clock)
	require.NoError(t, d.AddRoot("root", 0o755))
	return d
}

const blueprintJSON = `{
	"root": "root",
	"children": [
		{"name": "foo.txt", "content": "hello"},
		{"name": "sub", "children": [
			{"name": "bar.txt", "content": "world"}
		]},
		{"name": "link", "target": "/root/foo.txt"}
	]
}`

func TestParseDecodesBlueprint(t *testing.T) {
	bp, err := Parse(strings.NewReader(blueprintJSON))
	require.NoError(t, err)

	assert.Equal(t, "root", bp.Root)
	require.Len(t, bp.Children, 3)
	assert.Equal(t, "foo.txt", bp.Children[0].Name)
}

func TestParseFileReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blueprint.json")
	require.NoError(t, os.WriteFile(path, []byte(blueprintJSON), 0o644))

	bp, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "root", bp.Root)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestBuildCreatesFilesDirsAndSymlinks(t *testing.T) {
	d := newTestData(t)
	bp, err := Parse(strings.NewReader(blueprintJSON))
	require.NoError(t, err)

	require.NoError(t, Build(d, bp))

	d.Mu.Lock()
	defer d.Mu.Unlock()

	file, ok := d.GetEntryByParentAndName(fsnode.RootInodeID, "foo.txt")
	require.True(t, ok)
	node, ok := d.GetNode(file.Inode)
	require.True(t, ok)
	assert.Equal(t, "hello", string(node.Data))

	sub, ok := d.GetEntryByParentAndName(fsnode.RootInodeID, "sub")
	require.True(t, ok)
	children, err := d.GetChildren(sub.Inode)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "bar.txt", children[0].Name)

	link, ok := d.GetEntryByParentAndName(fsnode.RootInodeID, "link")
	require.True(t, ok)
	assert.Equal(t, "/root/foo.txt", link.LinkPath)
}

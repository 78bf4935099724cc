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

package producer

import (
	"testing"

	"github.com/Th-Os/IoTFS/internal/fusefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerEmitPushesEvent(t *testing.T) {
	p := New()

	err := p.Emit(fusefs.EventCreateFile, fusefs.Snapshot{
		Name: "foo.txt",
		Path: "/root",
		Size: 3,
	})
	require.NoError(t, err)

	e, ok := p.Queue.Pop()
	require.True(t, ok)
	assert.Equal(t, fusefs.EventCreateFile, e.Kind)
	assert.Equal(t, "CREATE_FILE", e.KindName())
	assert.Equal(t, "foo.txt", e.Name)
	assert.NotEqual(t, e.ID.String(), "")
}

func TestProducerEmitWithoutQueueFails(t *testing.T) {
	p := &Producer{}

	err := p.Emit(fusefs.EventReadFile, fusefs.Snapshot{})
	assert.ErrorIs(t, err, ErrNoQueue)
}

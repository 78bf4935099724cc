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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePushPopFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Name: "a"})
	q.Push(Event{Name: "b"})

	assert.Equal(t, 2, q.Len())

	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", e.Name)

	e, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", e.Name)
	assert.Equal(t, 0, q.Len())
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewQueue()
	done := make(chan Event, 1)

	go func() {
		e, ok := q.Pop()
		if ok {
			done <- e
		}
	}()

	select {
	case <-done:
		t.Fatal("Pop returned before any Push")
	case <-time.After(20 * time.Millisecond):
	}

	q.Push(Event{Name: "late"})

	select {
	case e := <-done:
		assert.Equal(t, "late", e.Name)
	case <-time.After(time.Second):
		t.Fatal("Pop never unblocked after Push")
	}
}

func TestQueueCloseUnblocksEmptyPop(t *testing.T) {
	q := NewQueue()
	done := make(chan bool, 1)

	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop never unblocked after Close")
	}
}

func TestQueueClosedDrainsPendingBeforeEmpty(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Name: "queued"})
	q.Close()

	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "queued", e.Name)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueuePushAfterCloseIsNoop(t *testing.T) {
	q := NewQueue()
	q.Close()
	q.Push(Event{Name: "dropped"})

	assert.Equal(t, 0, q.Len())
}

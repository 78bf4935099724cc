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

package listener

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Th-Os/IoTFS/internal/producer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerDispatchesEventsInOrder(t *testing.T) {
	q := producer.NewQueue()
	var mu sync.Mutex
	var got []string

	l := New(q, func(e producer.Event) error {
		mu.Lock()
		got = append(got, e.Name)
		mu.Unlock()
		return nil
	})

	go l.Run()

	q.Push(producer.Event{Name: "a"})
	q.Push(producer.Event{Name: "b"})
	q.Close()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("listener did not stop after queue close")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestListenerRecoversFromHookPanic(t *testing.T) {
	q := producer.NewQueue()
	called := make(chan struct{}, 1)

	l := New(q, func(e producer.Event) error {
		panic("boom")
	})

	go l.Run()
	q.Push(producer.Event{Name: "a"})

	go func() {
		q.Push(producer.Event{Name: "b"})
		close(called)
	}()
	<-called
	q.Close()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("listener hung after a panicking hook")
	}
}

func TestListenerSurvivesHookError(t *testing.T) {
	q := producer.NewQueue()

	l := New(q, func(e producer.Event) error {
		return errors.New("handler failed")
	})

	go l.Run()
	q.Push(producer.Event{Name: "a"})
	q.Close()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("listener hung after a failing hook")
	}
}

func TestNewDefaultsToLogHook(t *testing.T) {
	l := New(producer.NewQueue(), nil)
	require.NotNil(t, l.Hook)
}

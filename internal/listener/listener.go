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

// Package listener implements the listener runtime (C6): a single
// background worker that drains the producer's event queue and hands each
// event to a processing hook, one at a time, until the queue is closed.
package listener

import (
	"time"

	"github.com/Th-Os/IoTFS/internal/logger"
	"github.com/Th-Os/IoTFS/internal/producer"
)

// Hook processes one event. A hook that panics or returns an error is
// caught and logged; it never stops the listener.
type Hook func(producer.Event) error

// LogHook is the default processing hook: it logs the event and never
// fails.
func LogHook(e producer.Event) error {
	logger.Infof("event %s: %s inode=%d path=%q", e.ID, e.KindName(), e.Inode, e.Path)
	return nil
}

// Listener drains a single queue on a dedicated goroutine.
type Listener struct {
	Queue    *producer.Queue
	Hook     Hook
	Interval time.Duration // optional throttle between dispatches; 0 disables it

	done chan struct{}
}

// New builds a Listener over queue. A nil hook defaults to LogHook.
func New(queue *producer.Queue, hook Hook) *Listener {
	if hook == nil {
		hook = LogHook
	}
	return &Listener{Queue: queue, Hook: hook, done: make(chan struct{})}
}

// Run drains the queue until it is closed. It is meant to be called on its
// own goroutine; it returns once the queue reports its sentinel-closed
// state and has no events left to deliver.
func (l *Listener) Run() {
	defer close(l.done)

	for {
		event, ok := l.Queue.Pop()
		if !ok {
			return
		}

		l.dispatch(event)

		if l.Interval > 0 {
			time.Sleep(l.Interval)
		}
	}
}

// dispatch invokes the hook, converting a panic into a logged error so one
// bad handler never takes the listener down.
func (l *Listener) dispatch(event producer.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("listener: hook panicked on event %s: %v", event.ID, r)
		}
	}()

	if err := l.Hook(event); err != nil {
		logger.Errorf("listener: hook failed on event %s: %v", event.ID, err)
	}
}

// Done returns a channel closed once Run has returned.
func (l *Listener) Done() <-chan struct{} { return l.done }

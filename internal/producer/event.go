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
	"errors"
	"os"

	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/Th-Os/IoTFS/internal/fusefs"
	"github.com/google/uuid"
)

// ErrNoQueue is returned by Producer.Emit when producer mode is configured
// but no queue has been installed: producer mode is strict, so this
// propagates back to the kernel as the originating operation's own error.
var ErrNoQueue = errors.New("producer: no queue configured")

// Event is the structured record a listener consumes: an operation kind
// plus the observed state of the node/entry it touched.
type Event struct {
	ID   uuid.UUID
	Kind fusefs.EventKind

	Inode fsnode.InodeID
	Name  string
	Path  string
	Mode  os.FileMode
	Size  int64

	Atime int64
	Mtime int64
	Ctime int64

	Bytes int
	Data  []byte
}

// KindName reports the event's operation kind as its wire name (CREATE_FILE,
// READ_DIR, and so on).
func (e Event) KindName() string { return e.Kind.String() }

// Producer implements fusefs.EventSink, turning each observed Snapshot into
// an Event and pushing it onto Queue.
type Producer struct {
	Queue *Queue
}

// New builds a Producer backed by a fresh queue.
func New() *Producer {
	return &Producer{Queue: NewQueue()}
}

// Emit implements fusefs.EventSink.
func (p *Producer) Emit(kind fusefs.EventKind, snap fusefs.Snapshot) error {
	if p.Queue == nil {
		return ErrNoQueue
	}

	p.Queue.Push(Event{
		ID:    uuid.New(),
		Kind:  kind,
		Inode: snap.Inode,
		Name:  snap.Name,
		Path:  snap.Path,
		Mode:  snap.Mode,
		Size:  snap.Size,
		Atime: snap.Atime,
		Mtime: snap.Mtime,
		Ctime: snap.Ctime,
		Bytes: snap.Bytes,
		Data:  snap.Data,
	})
	return nil
}

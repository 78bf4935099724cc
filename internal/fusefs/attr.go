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

package fusefs

import (
	"time"

	"github.com/Th-Os/IoTFS/internal/fsnode"
	"github.com/jacobsa/fuse/fuseops"
)

// attributesFor builds the attribute record the kernel expects from a node
// plus the hardlink count of its owning inode.
func attributesFor(n *fsnode.Node, hardlinks int) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Size:  uint64(n.Size()),
		Nlink: fsnode.NLink(hardlinks),
		Mode:  n.Mode,
		Atime: time.Unix(0, n.Atime),
		Mtime: time.Unix(0, n.Mtime),
		Ctime: time.Unix(0, n.Ctime),
		Uid:   n.Uid,
		Gid:   n.Gid,
	}
}

// attributesCacheTimeout is the lifetime of a positive lookup or getattr
// result. This filesystem never mutates spontaneously (every change flows
// through an operation the kernel itself triggered), so it can be long.
const attributesCacheTimeout = 365 * 24 * time.Hour

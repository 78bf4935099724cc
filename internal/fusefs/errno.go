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
	"syscall"

	"github.com/Th-Os/IoTFS/internal/fserrors"
	"github.com/jacobsa/fuse"
)

// translateErr maps the internal error taxonomy to the kernel errno values
// the FUSE transport expects. Anything unrecognized becomes EIO, since it
// signals a bug rather than an expected failure mode.
func translateErr(err error) error {
	switch err {
	case nil:
		return nil
	case fserrors.ErrNoEntry:
		return fuse.ENOENT
	case fserrors.ErrNotEmpty:
		return fuse.ENOTEMPTY
	case fserrors.ErrInvalidArgument:
		return fuse.EINVAL
	case fserrors.ErrNoData:
		return syscall.ENODATA
	case fserrors.ErrNoAttr:
		return syscall.ENODATA
	case fserrors.ErrNotDirectory:
		return fuse.ENOTDIR
	case fserrors.ErrUnsupported:
		return fuse.ENOSYS
	default:
		return fuse.EIO
	}
}

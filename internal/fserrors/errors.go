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

// Package fserrors defines the sentinel error values the data layer and the
// FUSE operation handler use to signal failure. They are translated to
// kernel errno values at the fusefs boundary; nothing above internal/fusefs
// should need to know about syscall.Errno.
package fserrors

import "errors"

var (
	// ErrNoEntry is raised by lookup/getattr of a nonexistent or locked
	// inode, and by readlink on a non-symlink.
	ErrNoEntry = errors.New("fserrors: no such entry")

	// ErrNotEmpty is raised by rmdir on a directory with visible entries.
	ErrNotEmpty = errors.New("fserrors: directory not empty")

	// ErrInvalidArgument is raised by rename with unsupported flags.
	ErrInvalidArgument = errors.New("fserrors: invalid argument")

	// ErrNoData is raised by getxattr of an absent attribute.
	ErrNoData = errors.New("fserrors: no extended attribute data")

	// ErrNoAttr is raised by removexattr of an absent attribute.
	ErrNoAttr = errors.New("fserrors: no such extended attribute")

	// ErrNotDirectory is raised when enumerating children of a node that
	// isn't a directory.
	ErrNotDirectory = errors.New("fserrors: not a directory")

	// ErrUnsupported is raised by operations the system never implements.
	ErrUnsupported = errors.New("fserrors: operation not supported")

	// ErrInternal signals an invariant violation. It should never fire in
	// a correct build; fusefs treats it as fatal rather than translating it
	// to an errno a caller could reasonably retry on.
	ErrInternal = errors.New("fserrors: internal invariant violation")
)

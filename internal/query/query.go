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

// Package query is an optional convenience API for input adapters: plain
// Create/Read/Update/Delete calls against the mounted filesystem through
// ordinary os.* syscalls, rather than against the data layer directly. It
// takes the mount point as an explicit argument instead of reading it back
// out of an environment variable.
package query

import (
	"os"
	"path/filepath"
)

// Client issues Create/Read/Update/Delete operations rooted at a mount
// point.
type Client struct {
	mountPoint string
}

// New builds a Client rooted at mountPoint. mountPoint must already exist
// (the mount host is responsible for creating it).
func New(mountPoint string) *Client {
	return &Client{mountPoint: mountPoint}
}

func (c *Client) join(path, name string) string {
	return filepath.Join(c.mountPoint, path, name)
}

// CreateFile creates name under path with the given content, truncating
// any existing file of the same name.
func (c *Client) CreateFile(path, name string, data []byte) error {
	f, err := os.OpenFile(c.join(path, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o777)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(data) > 0 {
		if _, err := f.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// CreateDir creates a single directory under path.
func (c *Client) CreateDir(path, name string) error {
	return os.Mkdir(c.join(path, name), 0o777)
}

// CreateDirAll creates name and any missing parents under path.
func (c *Client) CreateDirAll(path, name string) error {
	return os.MkdirAll(c.join(path, name), 0o777)
}

// ReadFile returns the full content of name under path.
func (c *Client) ReadFile(path, name string) ([]byte, error) {
	return os.ReadFile(c.join(path, name))
}

// ReadDir returns the names of name's children under path.
func (c *Client) ReadDir(path, name string) ([]string, error) {
	entries, err := os.ReadDir(c.join(path, name))
	if err != nil {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// Rename moves name under path to newName, still under path.
func (c *Client) Rename(path, name, newName string) error {
	return os.Rename(c.join(path, name), c.join(path, newName))
}

// Move moves name under path to the same name under newPath.
func (c *Client) Move(path, name, newPath string) error {
	return os.Rename(c.join(path, name), c.join(newPath, name))
}

// WriteFile overwrites name under path with newData.
func (c *Client) WriteFile(path, name string, newData []byte) error {
	f, err := os.OpenFile(c.join(path, name), os.O_WRONLY|os.O_TRUNC, 0o777)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(newData)
	return err
}

// DeleteFile removes name under path.
func (c *Client) DeleteFile(path, name string) error {
	return os.Remove(c.join(path, name))
}

// DeleteDir removes the empty directory name under path.
func (c *Client) DeleteDir(path, name string) error {
	return os.Remove(c.join(path, name))
}

// DeleteDirAll removes name under path and everything beneath it.
func (c *Client) DeleteDirAll(path, name string) error {
	return os.RemoveAll(c.join(path, name))
}

// Copyright 2024 Google Inc. All Rights Reserved.
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

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Th-Os/IoTFS/cfg"
	"github.com/Th-Os/IoTFS/internal/fusefs"
	"github.com/Th-Os/IoTFS/internal/listener"
	"github.com/Th-Os/IoTFS/internal/logger"
	"github.com/Th-Os/IoTFS/internal/producer"
	"github.com/Th-Os/IoTFS/internal/structure"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/timeutil"
)

// run brings up the mount point, the FUSE driver loop, and (if configured)
// the producer/listener pipeline, then blocks until the filesystem is
// unmounted or a participant fails.
func run(config cfg.Config) error {
	logger.Init(config.LogFormat, config.LogSeverity)

	if err := ensureMountPoint(config.MountPoint); err != nil {
		return fmt.Errorf("mount point: %w", err)
	}
	// Set for compatibility with external adapter processes that expect
	// it, matching the original program's behavior; nothing in this
	// process reads it back.
	if err := os.Setenv("MOUNT_POINT", config.MountPoint); err != nil {
		logger.Warnf("could not set MOUNT_POINT: %v", err)
	}

	fsCfg := fusefs.Config{
		Clock:    timeutil.RealClock(),
		RootName: config.RootName,
		Uid:      config.Uid,
		Gid:      config.Gid,
		DirMode:  os.FileMode(config.DirMode),
	}

	var events *producer.Producer
	if config.Producer {
		events = producer.New()
		fsCfg.Sink = events
	}

	fs, err := fusefs.NewFileSystem(fsCfg)
	if err != nil {
		return fmt.Errorf("building filesystem: %w", err)
	}

	if config.StructurePath != "" {
		bp, err := structure.ParseFile(config.StructurePath)
		if err != nil {
			return fmt.Errorf("loading structure: %w", err)
		}
		if err := structure.Build(fs.Data(), bp); err != nil {
			return fmt.Errorf("building structure: %w", err)
		}
	}

	var lst *listener.Listener
	if events != nil {
		lst = listener.New(events.Queue, listener.LogHook)
		lst.Interval = config.ListenerInterval
		go lst.Run()
	}

	mountCfg := &fuse.MountConfig{
		FSName:     "iotfs",
		Subtype:    "iotfs",
		VolumeName: config.RootName,
	}
	if config.Debug {
		mountCfg.DebugLogger = log.New(os.Stderr, "fuse_debug: ", 0)
	}

	mfs, err := fusefs.Mount(config.MountPoint, fs, mountCfg)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	logger.Infof("mounted %q", config.MountPoint)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	joinErr := make(chan error, 1)
	go func() { joinErr <- mfs.Join(context.Background()) }()

	var runErr error
	select {
	case <-sig:
		logger.Infof("received shutdown signal, unmounting %q", config.MountPoint)
		if err := fuse.Unmount(config.MountPoint); err != nil {
			runErr = fmt.Errorf("unmount: %w", err)
		}
		<-joinErr
	case err := <-joinErr:
		runErr = err
	}

	if events != nil {
		events.Queue.Close()
		<-lst.Done()
	}

	return runErr
}

func ensureMountPoint(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(path, 0o755)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%q exists and is not a directory", path)
	}
	return nil
}

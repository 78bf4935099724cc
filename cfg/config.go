// Copyright 2024 Google LLC
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

// Package cfg defines the mount host's configuration struct and its
// viper/pflag binding, mirroring the shape of gcsfuse's own cfg.Config
// without its generated multi-hundred-field surface: this system has a
// much smaller configuration space.
package cfg

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every tunable the mount host needs.
type Config struct {
	// MountPoint is the directory the filesystem is mounted on.
	MountPoint string `mapstructure:"mount-point"`

	// RootName is the name given to the mount's root directory entry.
	RootName string `mapstructure:"root-name"`

	// Uid/Gid are reported as the owner of every node.
	Uid uint32 `mapstructure:"uid"`
	Gid uint32 `mapstructure:"gid"`

	// DirMode is the permission bits given to the root directory. Directories
	// created later take the mode the kernel passes with mkdir.
	DirMode uint32 `mapstructure:"dir-mode"`

	// Debug turns on the fuse library's own kernel-traffic tracing.
	Debug bool `mapstructure:"debug"`

	// LogSeverity is one of logger.Trace/Debug/Info/Warning/Error/Off.
	LogSeverity string `mapstructure:"log-severity"`
	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log-format"`

	// Producer turns on the event-producer pipeline (C5/C6). When false,
	// the filesystem runs with no sink installed and no listener started.
	Producer bool `mapstructure:"producer"`

	// ListenerInterval throttles the listener's dispatch loop; zero means
	// no throttling.
	ListenerInterval time.Duration `mapstructure:"listener-interval"`

	// StructurePath, if set, points at a JSON blueprint loaded at startup.
	StructurePath string `mapstructure:"structure-path"`
}

// BindFlags registers every flag on fs and binds it into v, returning an
// error only if binding itself fails (flags always parse; values are
// validated separately by Validate).
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String("root-name", "root", "name given to the mount's root directory entry")
	fs.Uint32("uid", 0, "uid reported as the owner of every node")
	fs.Uint32("gid", 0, "gid reported as the owner of every node")
	fs.Uint32("dir-mode", 0o755, "permission bits for the root directory")
	fs.Bool("debug", false, "enable the FUSE library's kernel-traffic tracing")
	fs.String("log-severity", "INFO", "log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF")
	fs.String("log-format", "text", "log format: text or json")
	fs.Bool("producer", false, "enable the event-producer pipeline")
	fs.Duration("listener-interval", 0, "throttle between listener dispatches")
	fs.String("structure-path", "", "optional JSON blueprint to seed the tree with at startup")

	return v.BindPFlags(fs)
}

// Load builds a Config from v's bound values.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configurations that would leave the mount host unable
// to start.
func Validate(c Config) error {
	if c.MountPoint == "" {
		return errMountPointRequired
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errInvalidLogFormat
	}
	return nil
}

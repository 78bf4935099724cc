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

// Package cmd implements the mount host (C7): the cobra CLI, config
// binding, and the wiring that brings up the FUSE driver loop alongside
// the producer/listener pipeline.
package cmd

import (
	"fmt"
	"os"

	"github.com/Th-Os/IoTFS/cfg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	bindErr error
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "iotfs [flags] mountpoint",
	Short: "Mount an in-memory filesystem with an observable event pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}

		config, err := cfg.Load(v)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		config.MountPoint = args[0]

		if err := cfg.Validate(config); err != nil {
			return err
		}

		return run(config)
	},
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	bindErr = cfg.BindFlags(v, rootCmd.Flags())
}

// Copyright 2026 The flowgate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package command contains the cobra subcommands shared by flowgate
// applications.
package command

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/netgate-lab/flowgate/private/config"
)

// Pather returns the command path of a command.
type Pather interface {
	CommandPath() string
}

// NewSample creates a sample command that groups the given sample commands.
func NewSample(pather Pather, cmds ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Display sample files",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(cmds...)
	return cmd
}

// NewSampleConfig creates a command that prints the sample configuration of
// sampler.
func NewSampleConfig(sampler config.Sampler, id string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sampler.Sample(cmd.OutOrStdout(), nil, config.CtxMap{config.ID: id})
			return nil
		},
	}
}

// NewVersion creates a command that prints the build information.
func NewVersion(pather Pather) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version := "(devel)"
			if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
				version = bi.Main.Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  version: %s\n  go: %s\n",
				pather.CommandPath(), version, runtime.Version())
			return nil
		},
	}
}

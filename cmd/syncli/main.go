// Copyright 2024 The Synapse Authors.
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

// Command syncli is the CLI companion to synapsed, replacing
// original_source/sycli/src/cmd.rs's add/list/del/pause/resume
// subcommands. Torrent-file parsing and upload transfer are a non-goal
// (spec.md §1's "full CLI argument parsing" exclusion covers the original
// add_file's bencode-upload path); add here just registers a name against
// an id the caller supplies.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var rpcAddr string

func main() {
	root := &cobra.Command{
		Use:   "syncli",
		Short: "Control a running synapsed daemon",
	}
	root.PersistentFlags().StringVar(&rpcAddr, "rpc", "http://127.0.0.1:8412", "synapsed RPC address")

	root.AddCommand(
		addCmd(),
		listCmd(),
		removeCmd(),
		pauseCmd(),
		resumeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Register a torrent with the daemon",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient(rpcAddr).add(args[0], args[1])
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known torrents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := newClient(rpcAddr).list()
			if err != nil {
				return err
			}
			renderTorrents(cmd.OutOrStdout(), views)
			return nil
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a torrent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient(rpcAddr).remove(args[0])
		},
	}
}

func pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id>",
		Short: "Pause a torrent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient(rpcAddr).setPaused(args[0], true)
		},
	}
}

func resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id>",
		Short: "Resume a torrent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient(rpcAddr).setPaused(args[0], false)
		},
	}
}

func renderTorrents(w io.Writer, views []torrentView) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Paused"})
	for _, v := range views {
		table.Append([]string{v.ID, v.Name, fmt.Sprintf("%t", v.Paused)})
	}
	table.Render()
}

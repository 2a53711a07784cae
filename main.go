// Copyright 2025 Naren Yellavula
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

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cybrota/nametag/utree"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

// loadTree reads the config and loads every accounts file into a new tree.
func loadTree(configPath string, files []string) (*utree.Tree, *Config, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v. Using default settings.", err)
	}

	tree := utree.New()
	if len(files) == 0 {
		return tree, config, nil
	}

	stats, err := LoadFiles(tree, files, loadOptionsFromConfig(config))
	if err != nil {
		return nil, nil, err
	}
	if stats.Malformed > 0 || stats.Duplicates > 0 {
		log.Printf("Loaded accounts: %s", stats)
	}
	return tree, config, nil
}

func main() {
	InitializeColors()

	asciiLogo := `
███╗   ██╗ █████╗ ███╗   ███╗███████╗████████╗ █████╗  ██████╗
████╗  ██║██╔══██╗████╗ ████║██╔════╝╚══██╔══╝██╔══██╗██╔════╝
██╔██╗ ██║███████║██╔████╔██║█████╗     ██║   ███████║██║  ███╗
██║╚██╗██║██╔══██║██║╚██╔╝██║██╔══╝     ██║   ██╔══██║██║   ██║
██║ ╚████║██║  ██║██║ ╚═╝ ██║███████╗   ██║   ██║  ██║╚██████╔╝
╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝     ╚═╝╚══════╝   ╚═╝   ╚═╝  ╚═╝ ╚═════╝
In-memory name#tag account index with a balanced user tree [Version: %s%s%s]

Copyright @ Naren Yellavula

`

	asciiLogo = fmt.Sprintf(asciiLogo, Green, version, Reset)

	var files []string
	var configPath string

	// mustLoad is shared by every command that needs the accounts
	mustLoad := func() (*utree.Tree, *Config) {
		tree, config, err := loadTree(configPath, files)
		if err != nil {
			log.Fatalf("Error loading accounts: %v", err)
		}
		return tree, config
	}

	// runOnShell runs a single shell command against freshly loaded accounts
	runOnShell := func(name string) func(cmd *cobra.Command, args []string) {
		return func(cmd *cobra.Command, args []string) {
			tree, config := mustLoad()
			s := &shell{tree: tree, out: os.Stdout, opts: loadOptionsFromConfig(config)}
			if err := shellCommands[name].run(s, args); err != nil {
				log.Fatalf("Error: %v", err)
			}
		}
	}

	var cmdDump = &cobra.Command{
		Use:   "dump",
		Short: "Print the user tree structure",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Dump prints the user tree as (left username:height:count right)`),
		Args:  cobra.NoArgs,
		Run:   runOnShell("dump"),
	}

	var cmdPrint = &cobra.Command{
		Use:   "print",
		Short: "Print every account",
		Args:  cobra.NoArgs,
		Run:   runOnShell("print"),
	}

	var cmdGet = &cobra.Command{
		Use:   "get <name#tag | user disc | user>",
		Short: "Show one account, or every account of a user",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runOnShell("get"),
	}

	var cmdCount = &cobra.Command{
		Use:   "count <user>",
		Short: "Count the accounts sharing a username",
		Args:  cobra.ExactArgs(1),
		Run:   runOnShell("count"),
	}

	var cmdRemove = &cobra.Command{
		Use:   "remove <name#tag | user disc>",
		Short: "Remove an account and print the resulting tree",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			tree, _ := mustLoad()
			s := &shell{tree: tree, out: os.Stdout}
			if err := s.remove(args); err != nil {
				log.Fatalf("Error: %v", err)
			}
			if err := s.dump(nil); err != nil {
				log.Fatalf("Error: %v", err)
			}
		},
	}

	var cmdFind = &cobra.Command{
		Use:   "find [prefix]",
		Short: "List usernames starting with a prefix",
		Args:  cobra.MaximumNArgs(1),
		Run:   runOnShell("find"),
	}

	var cmdVerify = &cobra.Command{
		Use:   "verify",
		Short: "Check the tree invariants after loading",
		Args:  cobra.NoArgs,
		Run:   runOnShell("verify"),
	}

	var cmdShell = &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive nametag shell",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Shell reads commands from stdin; type help for the list`),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tree, config := mustLoad()
			if err := runShell(tree, os.Stdin, os.Stdout, loadOptionsFromConfig(config)); err != nil {
				log.Fatalf("Error reading input: %v", err)
			}
		},
	}

	var cmdBrowse = &cobra.Command{
		Use:   "browse",
		Short: "Launches the account browser",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Browse opens a terminal UI with prefix search over the loaded accounts`),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tree, config := mustLoad()
			if err := runBrowser(tree, NewPageCache(config.Cache), config); err != nil {
				log.Fatalf("Error running browser: %v", err)
			}
		},
	}

	var cmdSettings = &cobra.Command{
		Use:   "settings",
		Short: "Show settings, creating the default config file if needed",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := displaySettings(os.Stdout, configPath); err != nil {
				log.Fatalf("Error: %v", err)
			}
		},
	}

	var cmdUsage = &cobra.Command{
		Use:   "usage",
		Short: "Print Nametag usage guide",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Usage displays the nametag CLI usage guide`),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(getHelpMessage())
		},
	}

	var cmdVersion = &cobra.Command{
		Use:   "version",
		Short: "Print Nametag version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	var rootCmd = &cobra.Command{
		Use:     "nametag",
		Version: version,
		Long:    asciiLogo,
		Run: func(cmd *cobra.Command, args []string) {
			// Default to the shell when no subcommand is provided
			cmdShell.Run(cmd, args)
		},
	}
	rootCmd.PersistentFlags().StringSliceVarP(&files, "file", "f", nil, "accounts CSV file to load (repeatable)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.nametag.yaml)")

	rootCmd.AddCommand(cmdDump, cmdPrint, cmdGet, cmdCount, cmdRemove, cmdFind, cmdVerify,
		cmdShell, cmdBrowse, cmdSettings, cmdUsage, cmdVersion)
	rootCmd.Execute()
}

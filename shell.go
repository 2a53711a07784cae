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
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/cybrota/nametag/account"
	"github.com/cybrota/nametag/utree"
)

const shellPrompt = "nametag> "

var errQuit = errors.New("quit")

type shellCommand struct {
	usage string
	desc  string
	run   func(s *shell, args []string) error
}

// Filled in init; help reads the table.
var shellCommands map[string]shellCommand

func init() {
	shellCommands = map[string]shellCommand{
		"insert": {"insert <name#tag | user disc> [posts] [real name] [description]", "add an account", (*shell).insert},
		"remove": {"remove <name#tag | user disc>", "remove an account", (*shell).remove},
		"get":    {"get <name#tag | user disc | user>", "show one account or all accounts of a user", (*shell).get},
		"count":  {"count <user>", "number of accounts sharing a username", (*shell).count},
		"find":   {"find [prefix]", "list usernames starting with prefix", (*shell).find},
		"dump":   {"dump", "print the user tree structure", (*shell).dump},
		"print":  {"print", "print every account", (*shell).print},
		"load":   {"load <file>...", "append accounts from CSV files", (*shell).load},
		"clear":  {"clear", "remove every account", (*shell).clear},
		"verify": {"verify", "check the tree invariants", (*shell).verify},
		"stats":  {"stats", "show user count and tree height", (*shell).stats},
		"help":   {"help", "show this help", (*shell).help},
		"quit":   {"quit", "leave the shell", func(*shell, []string) error { return errQuit }},
	}
}

type shell struct {
	tree *utree.Tree
	out  io.Writer
	opts LoadOptions
}

// runShell reads commands from in until EOF or quit. Command errors are
// reported on out and do not end the session.
func runShell(tree *utree.Tree, in io.Reader, out io.Writer, opts LoadOptions) error {
	s := &shell{tree: tree, out: out, opts: opts}
	s.opts.Append = true

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, shellPrompt)
	for scanner.Scan() {
		if err := s.exec(scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(out, "%serror:%s %v\n", Error, Reset, err)
		}
		fmt.Fprint(out, shellPrompt)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func (s *shell) exec(line string) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	name := strings.ToLower(args[0])
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := shellCommands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", args[0])
	}
	return cmd.run(s, args[1:])
}

// parseTarget accepts either a single name#tag argument or a username and
// a discriminator. It returns the arguments it did not consume.
func parseTarget(args []string) (string, int, []string, error) {
	if len(args) == 0 {
		return "", 0, nil, errors.New("missing account, want name#tag or user disc")
	}
	if strings.Contains(args[0], "#") {
		username, disc, err := account.ParseTag(args[0])
		return username, disc, args[1:], err
	}
	if len(args) < 2 {
		return "", 0, nil, fmt.Errorf("missing discriminator for %s", args[0])
	}
	disc, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, nil, fmt.Errorf("bad discriminator %q", args[1])
	}
	return args[0], disc, args[2:], nil
}

func (s *shell) insert(args []string) error {
	username, disc, rest, err := parseTarget(args)
	if err != nil {
		return err
	}

	a := account.New(username, disc)
	if len(rest) > 0 {
		if a.Posts, err = strconv.Atoi(rest[0]); err != nil {
			return fmt.Errorf("bad post count %q", rest[0])
		}
	}
	if len(rest) > 1 {
		a.RealName = rest[1]
	}
	if len(rest) > 2 {
		a.Description = strings.Join(rest[2:], " ")
	}

	if err := s.tree.Insert(a); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%sinserted%s %s\n", Green, Reset, a.Tag())
	return nil
}

func (s *shell) remove(args []string) error {
	username, disc, _, err := parseTarget(args)
	if err != nil {
		return err
	}
	a, err := s.tree.RemoveUser(username, disc)
	if err != nil {
		return fmt.Errorf("%s: %w", account.FormatTag(username, disc), err)
	}
	fmt.Fprintf(s.out, "%sremoved%s %s\n", Green, Reset, a.Tag())
	return nil
}

func (s *shell) get(args []string) error {
	// A single argument that is not a name#tag handle is a username, which
	// may itself contain '#'.
	if len(args) == 1 {
		if _, _, err := account.ParseTag(args[0]); err != nil {
			return s.getUser(args[0])
		}
	}

	username, disc, _, err := parseTarget(args)
	if err != nil {
		return err
	}
	a, err := s.tree.RetrieveAccount(username, disc)
	if err != nil {
		return fmt.Errorf("%s: %w", account.FormatTag(username, disc), err)
	}
	fmt.Fprintln(s.out, a)
	return nil
}

func (s *shell) getUser(username string) error {
	node, err := s.tree.Retrieve(username)
	if err != nil {
		return fmt.Errorf("%s: %w", username, err)
	}
	for _, a := range node.Accounts() {
		fmt.Fprintln(s.out, a)
	}
	return nil
}

func (s *shell) count(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: count <user>")
	}
	n, err := s.tree.Count(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	fmt.Fprintln(s.out, n)
	return nil
}

func (s *shell) find(args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	for _, node := range s.tree.SearchPrefix(prefix) {
		fmt.Fprintf(s.out, "%s (%d)\n", node.Username(), node.Count())
	}
	return nil
}

func (s *shell) dump([]string) error {
	if err := s.tree.Dump(s.out); err != nil {
		return err
	}
	fmt.Fprintln(s.out)
	return nil
}

func (s *shell) print([]string) error {
	return s.tree.PrintUsers(s.out)
}

func (s *shell) load(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: load <file>...")
	}
	stats, err := LoadFiles(s.tree, args, s.opts)
	fmt.Fprintf(s.out, "%s%s%s\n", Info, stats, Reset)
	return err
}

func (s *shell) clear([]string) error {
	s.tree.Clear()
	fmt.Fprintln(s.out, "cleared")
	return nil
}

func (s *shell) verify([]string) error {
	if err := s.tree.Verify(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%sok%s\n", Green, Reset)
	return nil
}

func (s *shell) stats([]string) error {
	fmt.Fprintf(s.out, "users: %d, height: %d\n", s.tree.Len(), s.tree.Height())
	return nil
}

func (s *shell) help([]string) error {
	names := make([]string, 0, len(shellCommands))
	for name := range shellCommands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := shellCommands[name]
		fmt.Fprintf(s.out, "  %-62s %s\n", cmd.usage, cmd.desc)
	}
	return nil
}

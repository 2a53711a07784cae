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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/willf/bloom"

	"github.com/cybrota/nametag/account"
	"github.com/cybrota/nametag/dtree"
	"github.com/cybrota/nametag/utree"
)

// Each record is username,discriminator,posts,realName,description
const numFields = 5

// ErrMalformed matches every MalformedRecordError under errors.Is.
var ErrMalformed = errors.New("malformed record")

// MalformedRecordError describes an input line that could not become an account.
type MalformedRecordError struct {
	Line   int
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformed
}

type LoadOptions struct {
	Append       bool // keep what the tree already holds
	Strict       bool // stop at the first malformed record
	ShowProgress bool
	BloomSize    uint
	BloomHashes  uint
	Progress     io.Writer // progress bar output, stderr when nil
}

func loadOptionsFromConfig(c *Config) LoadOptions {
	return LoadOptions{
		Append:       c.Loader.Append,
		Strict:       c.Loader.Strict,
		ShowProgress: c.Loader.ShowProgress,
		BloomSize:    c.Loader.BloomSize,
		BloomHashes:  c.Loader.BloomHashes,
	}
}

type LoadStats struct {
	Inserted   int
	Duplicates int
	Malformed  int
}

func (s LoadStats) String() string {
	return fmt.Sprintf("%d inserted, %d duplicates, %d malformed", s.Inserted, s.Duplicates, s.Malformed)
}

func (s *LoadStats) add(o LoadStats) {
	s.Inserted += o.Inserted
	s.Duplicates += o.Duplicates
	s.Malformed += o.Malformed
}

// parseRecord turns one CSV record into an Account.
func parseRecord(fields []string, line int) (account.Account, error) {
	if len(fields) != numFields {
		return account.Account{}, &MalformedRecordError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", numFields, len(fields)),
		}
	}

	username := strings.TrimSpace(fields[0])
	if username == "" {
		return account.Account{}, &MalformedRecordError{Line: line, Reason: "empty username"}
	}
	disc, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return account.Account{}, &MalformedRecordError{Line: line, Reason: "bad discriminator", Err: err}
	}
	posts, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return account.Account{}, &MalformedRecordError{Line: line, Reason: "bad post count", Err: err}
	}

	return account.Account{
		Username:      username,
		Discriminator: disc,
		Posts:         posts,
		RealName:      fields[3],
		Description:   fields[4],
	}, nil
}

// LoadAccounts reads CSV records from r and inserts them into tree. Without
// Append the tree is cleared first. Malformed records are logged and skipped
// unless Strict is set, in which case the first one is returned as a
// *MalformedRecordError. Records already present are counted as duplicates.
func LoadAccounts(tree *utree.Tree, r io.Reader, opts LoadOptions) (LoadStats, error) {
	var stats LoadStats

	if !opts.Append {
		tree.Clear()
	}

	if opts.BloomSize == 0 {
		opts.BloomSize = defaultConfig.Loader.BloomSize
	}
	if opts.BloomHashes == 0 {
		opts.BloomHashes = defaultConfig.Loader.BloomHashes
	}
	// Tags seen during this load; a hit is confirmed against the tree.
	seen := bloom.New(opts.BloomSize, opts.BloomHashes)

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		out := opts.Progress
		if out == nil {
			out = os.Stderr
		}
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("📥 Loading accounts..."),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		defer bar.Finish()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // field count is checked per record
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		var a account.Account
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return stats, fmt.Errorf("failed to read accounts: %w", err)
			}
			err = &MalformedRecordError{Line: parseErr.Line, Reason: "unparsable line", Err: parseErr.Err}
		} else {
			line, _ := reader.FieldPos(0)
			a, err = parseRecord(fields, line)
		}
		if err != nil {
			if opts.Strict {
				return stats, err
			}
			log.Printf("Skipping malformed record: %v", err)
			stats.Malformed++
			continue
		}

		if bar != nil {
			bar.Add(1)
		}

		if seen.TestAndAddString(a.Tag()) {
			if _, err := tree.RetrieveAccount(a.Username, a.Discriminator); err == nil {
				stats.Duplicates++
				continue
			}
		}

		if err := tree.Insert(a); err != nil {
			if errors.Is(err, dtree.ErrDuplicate) {
				stats.Duplicates++
				continue
			}
			return stats, err
		}
		stats.Inserted++
	}

	return stats, nil
}

// LoadFile opens path and loads it with LoadAccounts.
func LoadFile(tree *utree.Tree, path string, opts LoadOptions) (LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LoadStats{}, fmt.Errorf("accounts file %s not found", path)
		}
		return LoadStats{}, err
	}
	defer file.Close()

	stats, err := LoadAccounts(tree, file, opts)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}
	return stats, nil
}

// LoadFiles loads every path in order into tree. Only the first file honours
// opts.Append; later files always append.
func LoadFiles(tree *utree.Tree, paths []string, opts LoadOptions) (LoadStats, error) {
	var total LoadStats
	for i, path := range paths {
		if i > 0 {
			opts.Append = true
		}
		stats, err := LoadFile(tree, path, opts)
		total.add(stats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

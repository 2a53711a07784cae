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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybrota/nametag/account"
	"github.com/cybrota/nametag/utree"
)

const sampleAccounts = `Timpura,1000,12,Tim Pura,likes trees
kapish,1001,0,Kapish K,
Chutts,1002,3,C Hutts,"quoted, with comma"
Chubbs,1003,7,Chubbs C,hello
kapish,1004,1,Another Kapish,second account
`

func TestLoadAccounts(t *testing.T) {
	tree := utree.New()
	stats, err := LoadAccounts(tree, strings.NewReader(sampleAccounts), LoadOptions{})
	if err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}

	if stats != (LoadStats{Inserted: 5}) {
		t.Errorf("stats = %+v; want 5 inserted", stats)
	}
	if tree.Len() != 4 {
		t.Errorf("Len() = %d; want 4", tree.Len())
	}
	if n, err := tree.Count("kapish"); err != nil || n != 2 {
		t.Errorf("Count(kapish) = (%d, %v); want (2, nil)", n, err)
	}

	a, err := tree.RetrieveAccount("Chutts", 1002)
	if err != nil {
		t.Fatalf("RetrieveAccount returned error: %v", err)
	}
	expected := account.Account{Username: "Chutts", Discriminator: 1002, Posts: 3, RealName: "C Hutts", Description: "quoted, with comma"}
	if a != expected {
		t.Errorf("RetrieveAccount = %+v; want %+v", a, expected)
	}
	if err := tree.Verify(); err != nil {
		t.Errorf("Verify() = %v", err)
	}
}

func TestLoadAccountsSkipsMalformed(t *testing.T) {
	input := `good,1,0,G,ok
too,few,fields
bad,notanumber,0,B,x
,2,0,Nameless,x
fine,2,5,F,ok
`
	tree := utree.New()
	stats, err := LoadAccounts(tree, strings.NewReader(input), LoadOptions{})
	if err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}
	if stats.Inserted != 2 || stats.Malformed != 3 {
		t.Errorf("stats = %+v; want 2 inserted, 3 malformed", stats)
	}
}

func TestLoadAccountsStrict(t *testing.T) {
	input := "good,1,0,G,ok\nbad,notanumber,0,B,x\nlater,1,0,L,never\n"
	tree := utree.New()
	stats, err := LoadAccounts(tree, strings.NewReader(input), LoadOptions{Strict: true})

	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v; want *MalformedRecordError", err)
	}
	if malformed.Line != 2 {
		t.Errorf("Line = %d; want 2", malformed.Line)
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("errors.Is(err, ErrMalformed) = false")
	}
	if stats.Inserted != 1 {
		t.Errorf("Inserted = %d; want 1", stats.Inserted)
	}
	if _, err := tree.Retrieve("later"); err == nil {
		t.Error("records after the malformed line should not be loaded")
	}
}

func TestLoadAccountsDuplicates(t *testing.T) {
	input := "x,1,0,X,first\nx,1,9,X,again\ny,1,0,Y,ok\n"
	tree := utree.New()
	stats, err := LoadAccounts(tree, strings.NewReader(input), LoadOptions{})
	if err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}
	if stats != (LoadStats{Inserted: 2, Duplicates: 1}) {
		t.Errorf("stats = %+v; want 2 inserted, 1 duplicate", stats)
	}

	a, _ := tree.RetrieveAccount("x", 1)
	if a.Description != "first" {
		t.Errorf("duplicate overwrote the first record: %+v", a)
	}

	// Appending the same data again only finds duplicates
	stats, err = LoadAccounts(tree, strings.NewReader(input), LoadOptions{Append: true})
	if err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}
	if stats != (LoadStats{Duplicates: 3}) {
		t.Errorf("append stats = %+v; want 3 duplicates", stats)
	}
}

func TestLoadAccountsReplacesWithoutAppend(t *testing.T) {
	tree := utree.New()
	if err := tree.Insert(account.New("old", 1)); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	if _, err := LoadAccounts(tree, strings.NewReader("new,1,0,N,x\n"), LoadOptions{Append: false}); err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}
	if _, err := tree.Retrieve("old"); !errors.Is(err, utree.ErrNotFound) {
		t.Errorf("old account survived a non-append load")
	}
	if tree.Len() != 1 {
		t.Errorf("Len() = %d; want 1", tree.Len())
	}
}

func TestLoadAccountsWithProgress(t *testing.T) {
	var progress bytes.Buffer
	tree := utree.New()
	stats, err := LoadAccounts(tree, strings.NewReader(sampleAccounts), LoadOptions{ShowProgress: true, Progress: &progress})
	if err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}
	if stats.Inserted != 5 {
		t.Errorf("Inserted = %d; want 5", stats.Inserted)
	}
	if progress.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	if err := os.WriteFile(first, []byte("a,1,0,A,x\nb,1,0,B,x\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(second, []byte("b,2,0,B2,x\nc,1,0,C,x\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tree := utree.New()
	stats, err := LoadFiles(tree, []string{first, second}, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadFiles returned error: %v", err)
	}
	if stats.Inserted != 4 {
		t.Errorf("Inserted = %d; want 4", stats.Inserted)
	}
	if got := tree.String(); got != "((a:0:1)b:1:2(c:0:1))" {
		t.Errorf("String() = %q", got)
	}

	if _, err := LoadFiles(tree, []string{filepath.Join(dir, "missing.csv")}, LoadOptions{Append: true}); err == nil {
		t.Error("expected error for missing file")
	}
}

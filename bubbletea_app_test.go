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
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cybrota/nametag/utree"
)

func newBrowserTree(t *testing.T) *utree.Tree {
	t.Helper()
	tree := utree.New()
	if _, err := LoadAccounts(tree, strings.NewReader(sampleAccounts), LoadOptions{}); err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}
	return tree
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func resultTags(m Model) []string {
	var tags []string
	for _, item := range m.results {
		tags = append(tags, item.acct.Tag())
	}
	return tags
}

func TestBrowserListsAllAccounts(t *testing.T) {
	tree := newBrowserTree(t)
	m := InitialModel(tree, NewPageCache(defaultConfig.Cache), nil)

	expected := []string{"Chubbs#1003", "Chutts#1002", "Timpura#1000", "kapish#1001", "kapish#1004"}
	got := resultTags(m)
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("results = %v; want %v", got, expected)
	}

	// The first account's page is rendered and cached up front
	if GetPage(m.pageCache, "Chubbs#1003") == "" {
		t.Error("expected the selected account's page to be cached")
	}
}

func TestBrowserPrefixSearch(t *testing.T) {
	tree := newBrowserTree(t)
	m := InitialModel(tree, NewPageCache(defaultConfig.Cache), nil)

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Ch")})
	if got := strings.Join(resultTags(m), ","); got != "Chubbs#1003,Chutts#1002" {
		t.Errorf("results for Ch = %s", got)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if len(m.results) != 0 {
		t.Errorf("results for Chx = %v; want none", resultTags(m))
	}
	if _, ok := m.selectedItem(); ok {
		t.Error("nothing should be selected without results")
	}
}

func TestBrowserRemoveSelected(t *testing.T) {
	tree := newBrowserTree(t)
	pc := NewPageCache(defaultConfig.Cache)
	m := InitialModel(tree, pc, nil)

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ka")})
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focusIndex != focusResults {
		t.Fatalf("focusIndex = %d; want results", m.focusIndex)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	if item, _ := m.selectedItem(); item.acct.Tag() != "kapish#1004" {
		t.Fatalf("selected %s; want kapish#1004", item.acct.Tag())
	}
	if GetPage(pc, "kapish#1004") == "" {
		t.Fatal("expected kapish#1004 page to be cached after selecting it")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.status != "Removed kapish#1004" || m.statusErr {
		t.Errorf("status = %q (error %v)", m.status, m.statusErr)
	}
	if GetPage(pc, "kapish#1004") != "" {
		t.Error("removed account's page is still cached")
	}
	if got := strings.Join(resultTags(m), ","); got != "kapish#1001" {
		t.Errorf("results after removal = %s", got)
	}
	if m.selected != 0 {
		t.Errorf("selected = %d; want 0", m.selected)
	}
	if n, err := tree.Count("kapish"); err != nil || n != 1 {
		t.Errorf("Count(kapish) = (%d, %v); want (1, nil)", n, err)
	}

	// Removing the last kapish account removes the user
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if len(m.results) != 0 {
		t.Errorf("results = %v; want none", resultTags(m))
	}
	if _, err := tree.Retrieve("kapish"); err == nil {
		t.Error("kapish should be gone from the tree")
	}
	if err := tree.Verify(); err != nil {
		t.Errorf("Verify() = %v", err)
	}
}

func TestBrowserView(t *testing.T) {
	tree := newBrowserTree(t)
	m := InitialModel(tree, NewPageCache(defaultConfig.Cache), nil)

	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before sizing = %q", got)
	}

	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	if !strings.Contains(view, "Accounts (5)") {
		t.Errorf("view does not show the account count:\n%s", view)
	}
	if !strings.Contains(view, "remove account") {
		t.Errorf("view does not show the key help:\n%s", view)
	}

	m = send(m, tea.WindowSizeMsg{Width: 10, Height: 5})
	if !strings.Contains(m.View(), "Terminal too small") {
		t.Error("expected the too-small message")
	}
}

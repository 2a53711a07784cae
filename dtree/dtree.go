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

// Package dtree holds the accounts of one username, keyed by discriminator.
//
// The tree is weight balanced: a subtree whose sides differ too much in size
// is rebuilt from its live nodes. Removal is lazy; a removed account leaves a
// vacant node behind that is either reused by a later insert of the same
// discriminator or dropped by the next rebuild that covers it. Removals
// rebuild the whole tree once more than half of its nodes are vacant.
package dtree

import (
	"fmt"
	"io"

	"github.com/cybrota/nametag/account"
)

const (
	// Subtrees smaller than this on both sides are never rebuilt.
	minRebuildSize = 4
	// A side may be at most this many times larger than the other.
	imbalanceRatio = 1.5
)

type node struct {
	acct      account.Account
	size      int // nodes in this subtree, vacant ones included
	numVacant int // vacant nodes in this subtree
	vacant    bool
	left      *node
	right     *node
}

func (n *node) getSize() int {
	if n == nil {
		return 0
	}
	return n.size
}

func (n *node) getNumVacant() int {
	if n == nil {
		return 0
	}
	return n.numVacant
}

func (n *node) update() {
	n.size = 1 + n.left.getSize() + n.right.getSize()
	n.numVacant = n.left.getNumVacant() + n.right.getNumVacant()
	if n.vacant {
		n.numVacant++
	}
}

func (n *node) imbalanced() bool {
	l, r := n.left.getSize(), n.right.getSize()
	if l < minRebuildSize && r < minRebuildSize {
		return false
	}
	return float64(l) > imbalanceRatio*float64(r) || float64(r) > imbalanceRatio*float64(l)
}

// Tree is a discriminator store for a single username. The zero value is an
// empty tree ready to use.
type Tree struct {
	root *node
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{}
}

// Insert stores a. It fails with ErrDuplicate when a live account with the
// same discriminator exists.
func (t *Tree) Insert(a account.Account) error {
	root, err := t.insert(t.root, a)
	if err != nil {
		return fmt.Errorf("insert %s: %w", a.Tag(), err)
	}
	t.root = root
	return nil
}

func (t *Tree) insert(n *node, a account.Account) (*node, error) {
	if n == nil {
		return &node{acct: a, size: 1}, nil
	}

	if a.Discriminator < n.acct.Discriminator {
		left, err := t.insert(n.left, a)
		if err != nil {
			return n, err
		}
		n.left = left
	} else if a.Discriminator > n.acct.Discriminator {
		right, err := t.insert(n.right, a)
		if err != nil {
			return n, err
		}
		n.right = right
	} else {
		if !n.vacant {
			return n, ErrDuplicate
		}
		// Reuse the vacant slot
		n.acct = a
		n.vacant = false
	}

	n.update()
	if n.imbalanced() {
		return rebuild(n), nil
	}
	return n, nil
}

// rebuild returns a perfectly balanced copy of the subtree holding only its
// live nodes.
func rebuild(n *node) *node {
	live := make([]*node, 0, n.size-n.numVacant)
	collectLive(n, &live)
	return buildBalanced(live)
}

func collectLive(n *node, live *[]*node) {
	if n == nil {
		return
	}
	collectLive(n.left, live)
	if !n.vacant {
		*live = append(*live, n)
	}
	collectLive(n.right, live)
}

func buildBalanced(nodes []*node) *node {
	if len(nodes) == 0 {
		return nil
	}
	mid := len(nodes) / 2
	n := nodes[mid]
	n.left = buildBalanced(nodes[:mid])
	n.right = buildBalanced(nodes[mid+1:])
	n.update()
	return n
}

// Remove marks the account with the given discriminator as removed and
// returns it. The second result is false if no live account matched.
// Once vacant nodes outnumber live ones the whole tree is rebuilt, so at
// most half of the nodes are ever vacant after a removal.
func (t *Tree) Remove(disc int) (account.Account, bool) {
	removed, ok := remove(t.root, disc)
	if ok && 2*t.root.getNumVacant() > t.root.getSize() {
		// With nothing live left this drops the tree entirely.
		t.root = rebuild(t.root)
	}
	return removed, ok
}

func remove(n *node, disc int) (account.Account, bool) {
	if n == nil {
		return account.Account{}, false
	}

	var removed account.Account
	var ok bool
	switch {
	case disc < n.acct.Discriminator:
		removed, ok = remove(n.left, disc)
	case disc > n.acct.Discriminator:
		removed, ok = remove(n.right, disc)
	default:
		if n.vacant {
			return account.Account{}, false
		}
		n.vacant = true
		removed, ok = n.acct, true
	}

	if ok {
		n.update()
	}
	return removed, ok
}

// Retrieve returns the live account with the given discriminator.
func (t *Tree) Retrieve(disc int) (account.Account, bool) {
	n := t.root
	for n != nil {
		switch {
		case disc < n.acct.Discriminator:
			n = n.left
		case disc > n.acct.Discriminator:
			n = n.right
		default:
			if n.vacant {
				return account.Account{}, false
			}
			return n.acct, true
		}
	}
	return account.Account{}, false
}

// Count returns the number of live accounts.
func (t *Tree) Count() int {
	return t.root.getSize() - t.root.getNumVacant()
}

// Size returns the number of nodes, vacant ones included.
func (t *Tree) Size() int {
	return t.root.getSize()
}

// Vacant returns the number of removed accounts still occupying a node.
func (t *Tree) Vacant() int {
	return t.root.getNumVacant()
}

// Clear drops every account.
func (t *Tree) Clear() {
	t.root = nil
}

// ForEach calls fn for every live account in discriminator order.
func (t *Tree) ForEach(fn func(account.Account)) {
	forEach(t.root, fn)
}

func forEach(n *node, fn func(account.Account)) {
	if n == nil {
		return
	}
	forEach(n.left, fn)
	if !n.vacant {
		fn(n.acct)
	}
	forEach(n.right, fn)
}

// Dump writes the tree in "(left disc:size:vacant right)" notation. Vacant
// nodes are included and marked with a trailing '*'.
func (t *Tree) Dump(w io.Writer) error {
	return dump(w, t.root)
}

func dump(w io.Writer, n *node) error {
	if n == nil {
		return nil
	}
	if _, err := io.WriteString(w, "("); err != nil {
		return err
	}
	if err := dump(w, n.left); err != nil {
		return err
	}
	mark := ""
	if n.vacant {
		mark = "*"
	}
	if _, err := fmt.Fprintf(w, "%d:%d:%d%s", n.acct.Discriminator, n.size, n.numVacant, mark); err != nil {
		return err
	}
	if err := dump(w, n.right); err != nil {
		return err
	}
	_, err := io.WriteString(w, ")")
	return err
}

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

// Package utree implements the user tree: an AVL tree keyed by username in
// which every node owns the store of all accounts sharing that username.
//
// A username is present in the tree exactly as long as its store holds at
// least one account. The tree is not safe for concurrent use.
package utree

import (
	"fmt"
	"io"
	"strings"

	"github.com/cybrota/nametag/account"
	"github.com/cybrota/nametag/dtree"
)

type Tree struct {
	root     *Node
	size     int
	newStore StoreFactory
}

// New returns an empty tree whose nodes keep their accounts in a dtree.Tree.
func New() *Tree {
	return NewWithStore(func() Store { return dtree.New() })
}

// NewWithStore returns an empty tree that builds node stores with factory.
func NewWithStore(factory StoreFactory) *Tree {
	return &Tree{newStore: factory}
}

func (tree *Tree) getHeight(node *Node) int {
	if node == nil {
		return -1
	}
	return node.height
}

func (tree *Tree) updateHeight(node *Node) {
	node.height = max(tree.getHeight(node.left), tree.getHeight(node.right)) + 1
}

func (tree *Tree) getBalanceFactor(node *Node) int {
	if node == nil {
		return 0
	}
	return tree.getHeight(node.left) - tree.getHeight(node.right)
}

// rotateLeft promotes node's right child and returns it.
func (tree *Tree) rotateLeft(node *Node) *Node {
	if node == nil || node.right == nil {
		return node
	}

	pivot := node.right
	node.right = pivot.left
	pivot.left = node

	tree.updateHeight(node)
	tree.updateHeight(pivot)

	return pivot
}

// rotateRight promotes node's left child and returns it.
func (tree *Tree) rotateRight(node *Node) *Node {
	if node == nil || node.left == nil {
		return node
	}

	pivot := node.left
	node.left = pivot.right
	pivot.right = node

	tree.updateHeight(node)
	tree.updateHeight(pivot)

	return pivot
}

func (tree *Tree) rotateLeftRight(node *Node) *Node {
	node.left = tree.rotateLeft(node.left)
	return tree.rotateRight(node)
}

func (tree *Tree) rotateRightLeft(node *Node) *Node {
	node.right = tree.rotateRight(node.right)
	return tree.rotateLeft(node)
}

// rebalance restores the AVL property at node, whose children are already
// balanced and whose height is current. Insert and removal share it.
func (tree *Tree) rebalance(node *Node) *Node {
	balanceFactor := tree.getBalanceFactor(node)

	// Left-heavy
	if balanceFactor > 1 {
		if tree.getBalanceFactor(node.left) >= 0 {
			return tree.rotateRight(node)
		}
		return tree.rotateLeftRight(node)
	}

	// Right-heavy
	if balanceFactor < -1 {
		if tree.getBalanceFactor(node.right) <= 0 {
			return tree.rotateLeft(node)
		}
		return tree.rotateRightLeft(node)
	}

	return node
}

// Insert adds a to the tree. A new username gets a new node with a fresh
// store; a known username hands a to its existing store. The only failure is
// the store refusing a, in which case the tree is unchanged.
func (tree *Tree) Insert(a account.Account) error {
	root, _, err := tree.insertRecursive(tree.root, a)
	if err != nil {
		return err
	}
	tree.root = root
	return nil
}

// insertRecursive returns the new subtree root and whether the subtree's
// shape changed. Ancestors of an unchanged subtree skip height and balance
// work.
func (tree *Tree) insertRecursive(node *Node, a account.Account) (*Node, bool, error) {
	if node == nil {
		node = &Node{username: a.Username, store: tree.newStore()}
		if err := node.store.Insert(a); err != nil {
			return nil, false, fmt.Errorf("user %q: %w", a.Username, err)
		}
		tree.size++
		return node, true, nil
	}

	var changed bool
	var err error
	if a.Username < node.username {
		node.left, changed, err = tree.insertRecursive(node.left, a)
	} else if a.Username > node.username {
		node.right, changed, err = tree.insertRecursive(node.right, a)
	} else {
		if node.store == nil {
			node.store = tree.newStore()
		}
		if err := node.store.Insert(a); err != nil {
			return node, false, fmt.Errorf("user %q: %w", a.Username, err)
		}
		return node, false, nil
	}

	if err != nil || !changed {
		return node, false, err
	}

	tree.updateHeight(node)
	return tree.rebalance(node), true, nil
}

// RemoveUser removes the account username#disc and returns it. When this
// empties the username's store the node is removed from the tree as well.
func (tree *Tree) RemoveUser(username string, disc int) (account.Account, error) {
	node := tree.retrieve(username)
	if node == nil {
		return account.Account{}, fmt.Errorf("%w: username %q", ErrNotFound, username)
	}

	removed, ok := node.store.Remove(disc)
	if !ok {
		return account.Account{}, fmt.Errorf("%w: %s", ErrNotFound, account.FormatTag(username, disc))
	}

	if node.store.Count() == 0 {
		tree.root = tree.deleteRecursive(tree.root, username)
	}
	return removed, nil
}

func (tree *Tree) deleteRecursive(node *Node, username string) *Node {
	if node == nil {
		return nil
	}

	if username < node.username {
		node.left = tree.deleteRecursive(node.left, username)
	} else if username > node.username {
		node.right = tree.deleteRecursive(node.right, username)
	} else if node.left != nil && node.right != nil {
		// Take over the successor's key and store, then unlink the
		// successor. Its store slot is emptied first so the store keeps a
		// single owner and is not released with the successor.
		successor := tree.findMin(node.right)
		node.release()
		node.username = successor.username
		node.store, successor.store = successor.store, nil
		node.right = tree.deleteRecursive(node.right, successor.username)
	} else {
		child := node.left
		if child == nil {
			child = node.right
		}
		node.release()
		node.left, node.right = nil, nil
		tree.size--
		return child
	}

	tree.updateHeight(node)
	return tree.rebalance(node)
}

func (tree *Tree) findMin(node *Node) *Node {
	for node.left != nil {
		node = node.left
	}
	return node
}

// Retrieve returns the node for username. The node is only valid until the
// next Insert, RemoveUser or Clear.
func (tree *Tree) Retrieve(username string) (*Node, error) {
	node := tree.retrieve(username)
	if node == nil {
		return nil, fmt.Errorf("%w: username %q", ErrNotFound, username)
	}
	return node, nil
}

func (tree *Tree) retrieve(username string) *Node {
	node := tree.root
	for node != nil {
		if username < node.username {
			node = node.left
		} else if username > node.username {
			node = node.right
		} else {
			return node
		}
	}
	return nil
}

// RetrieveAccount returns the account username#disc.
func (tree *Tree) RetrieveAccount(username string, disc int) (account.Account, error) {
	node, err := tree.Retrieve(username)
	if err != nil {
		return account.Account{}, err
	}
	a, ok := node.store.Retrieve(disc)
	if !ok {
		return account.Account{}, fmt.Errorf("%w: %s", ErrNotFound, account.FormatTag(username, disc))
	}
	return a, nil
}

// Count returns the number of accounts sharing username. A username that
// is not in the tree is ErrNotFound rather than zero.
func (tree *Tree) Count(username string) (int, error) {
	node, err := tree.Retrieve(username)
	if err != nil {
		return 0, err
	}
	return node.store.Count(), nil
}

// Len returns the number of distinct usernames.
func (tree *Tree) Len() int {
	return tree.size
}

// Height returns the height of the tree; -1 when empty.
func (tree *Tree) Height() int {
	return tree.getHeight(tree.root)
}

// Clear removes every node and releases every store.
func (tree *Tree) Clear() {
	tree.clearRecursive(tree.root)
	tree.root = nil
	tree.size = 0
}

func (tree *Tree) clearRecursive(node *Node) {
	if node == nil {
		return
	}
	tree.clearRecursive(node.left)
	tree.clearRecursive(node.right)
	node.release()
	node.left, node.right = nil, nil
}

// Walk calls fn for every node in username order.
func (tree *Tree) Walk(fn func(*Node)) {
	walk(tree.root, fn)
}

func walk(node *Node, fn func(*Node)) {
	if node == nil {
		return
	}
	walk(node.left, fn)
	fn(node)
	walk(node.right, fn)
}

// prefixSearch appends every node below 'node' whose username starts with
// prefix, in ascending order. Usernames sharing a prefix form one contiguous
// run in byte order, so a node above prefix that does not match closes the
// run and its right subtree is skipped.
func prefixSearch(node *Node, prefix string, results *[]*Node) {
	if node == nil {
		return
	}

	matches := strings.HasPrefix(node.username, prefix)
	if node.username >= prefix {
		prefixSearch(node.left, prefix, results)
	}

	if matches {
		*results = append(*results, node)
	}

	if node.username < prefix || matches {
		prefixSearch(node.right, prefix, results)
	}
}

// SearchPrefix returns the nodes whose username starts with prefix, in
// username order. An empty prefix returns every node.
func (tree *Tree) SearchPrefix(prefix string) []*Node {
	var results []*Node
	if prefix == "" {
		tree.Walk(func(node *Node) {
			results = append(results, node)
		})
		return results
	}

	prefixSearch(tree.root, prefix, &results)
	return results
}

// Dump writes the tree in "(left username:height:count right)" notation,
// in order.
func (tree *Tree) Dump(w io.Writer) error {
	return dump(w, tree.root)
}

func dump(w io.Writer, node *Node) error {
	if node == nil {
		return nil
	}
	if _, err := io.WriteString(w, "("); err != nil {
		return err
	}
	if err := dump(w, node.left); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s:%d:%d", node.username, node.height, node.store.Count()); err != nil {
		return err
	}
	if err := dump(w, node.right); err != nil {
		return err
	}
	_, err := io.WriteString(w, ")")
	return err
}

func (tree *Tree) String() string {
	var sb strings.Builder
	_ = tree.Dump(&sb)
	return sb.String()
}

// PrintUsers writes every account, one per line, ordered by username and
// then by the store's order.
func (tree *Tree) PrintUsers(w io.Writer) error {
	var err error
	tree.Walk(func(node *Node) {
		node.store.ForEach(func(a account.Account) {
			if err == nil {
				_, err = fmt.Fprintln(w, a)
			}
		})
	})
	return err
}

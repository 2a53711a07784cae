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

package utree

import "github.com/cybrota/nametag/account"

// Store is the per-username index of accounts keyed by discriminator.
type Store interface {
	Insert(a account.Account) error
	Remove(disc int) (account.Account, bool)
	Retrieve(disc int) (account.Account, bool)
	Count() int
	Clear()
	ForEach(fn func(account.Account))
}

// StoreFactory returns a new, empty Store.
type StoreFactory func() Store

// Node is one username in the tree. Callers get read-only access; the tree
// owns the node, its children and its store.
type Node struct {
	username string
	height   int // leaf is 0
	left     *Node
	right    *Node
	store    Store
}

// Username returns the node's key.
func (n *Node) Username() string { return n.username }

// Height returns the height of the subtree rooted at n. A leaf has height 0.
func (n *Node) Height() int { return n.height }

// Count returns the number of accounts under this username.
func (n *Node) Count() int { return n.store.Count() }

// Retrieve returns the account with the given discriminator.
func (n *Node) Retrieve(disc int) (account.Account, bool) {
	return n.store.Retrieve(disc)
}

// Accounts returns the node's accounts in the store's iteration order.
func (n *Node) Accounts() []account.Account {
	accts := make([]account.Account, 0, n.store.Count())
	n.store.ForEach(func(a account.Account) {
		accts = append(accts, a)
	})
	return accts
}

// release clears the node's store and drops the reference to it.
func (n *Node) release() {
	if n.store != nil {
		n.store.Clear()
		n.store = nil
	}
}

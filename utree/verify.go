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

import (
	"fmt"
	"reflect"
)

type verifier struct {
	prev   *Node
	nodes  int
	stores map[Store]string
}

// Verify walks the whole tree and reports the first broken structural rule:
// strict username order, cached heights, AVL balance, one non-empty store per
// node and no store shared by two nodes. Returned errors wrap ErrInvariant.
func (tree *Tree) Verify() error {
	v := &verifier{stores: make(map[Store]string)}
	if _, err := v.check(tree.root); err != nil {
		return err
	}
	if v.nodes != tree.size {
		return fmt.Errorf("%w: counted %d nodes, tree reports %d", ErrInvariant, v.nodes, tree.size)
	}
	return nil
}

// check verifies the subtree in order and returns its computed height.
func (v *verifier) check(node *Node) (int, error) {
	if node == nil {
		return -1, nil
	}

	lh, err := v.check(node.left)
	if err != nil {
		return 0, err
	}

	if v.prev != nil && v.prev.username >= node.username {
		return 0, fmt.Errorf("%w: %q follows %q in order", ErrInvariant, node.username, v.prev.username)
	}
	v.prev = node
	v.nodes++

	if node.store == nil {
		return 0, fmt.Errorf("%w: %q has no store", ErrInvariant, node.username)
	}
	if node.store.Count() <= 0 {
		return 0, fmt.Errorf("%w: %q has an empty store", ErrInvariant, node.username)
	}
	// Only comparable stores can be checked for sharing.
	if reflect.TypeOf(node.store).Comparable() {
		if owner, ok := v.stores[node.store]; ok {
			return 0, fmt.Errorf("%w: %q and %q share a store", ErrInvariant, owner, node.username)
		}
		v.stores[node.store] = node.username
	}

	rh, err := v.check(node.right)
	if err != nil {
		return 0, err
	}

	h := max(lh, rh) + 1
	if node.height != h {
		return 0, fmt.Errorf("%w: %q has height %d, want %d", ErrInvariant, node.username, node.height, h)
	}
	if bf := lh - rh; bf > 1 || bf < -1 {
		return 0, fmt.Errorf("%w: %q has balance factor %d", ErrInvariant, node.username, bf)
	}
	return h, nil
}

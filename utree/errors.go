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

import "errors"

var (
	// ErrNotFound indicates that a username, or a discriminator under an
	// existing username, is not in the tree.
	ErrNotFound = errors.New("utree: not found")

	// ErrInvariant is wrapped by every error Verify returns.
	ErrInvariant = errors.New("utree: invariant violated")
)

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

// Package account defines the identity record stored in the index.
package account

import (
	"fmt"
	"strconv"
	"strings"
)

// Account is a single identity. Several accounts may share a Username;
// the Discriminator tells them apart.
type Account struct {
	// Username is the shared display name (e.g., "kapish").
	Username string
	// Discriminator is the per-username tag (e.g., 1004 in "kapish#1004").
	Discriminator int
	// Posts is the number of posts made by the account.
	Posts int
	// RealName is the free-form legal or display name of the owner.
	RealName string
	// Description is the account bio.
	Description string
}

// New creates an Account with empty payload fields.
func New(username string, disc int) Account {
	return Account{Username: username, Discriminator: disc}
}

// Tag renders the account's name#tag handle. The discriminator is
// zero-padded to four digits.
func (a Account) Tag() string {
	return FormatTag(a.Username, a.Discriminator)
}

// FormatTag renders a name#tag handle for a username and discriminator.
func FormatTag(username string, disc int) string {
	return fmt.Sprintf("%s#%04d", username, disc)
}

// ParseTag splits a "name#tag" handle. The username part may itself contain
// '#'; only the last one separates the discriminator.
func ParseTag(tag string) (string, int, error) {
	i := strings.LastIndexByte(tag, '#')
	if i <= 0 || i == len(tag)-1 {
		return "", 0, fmt.Errorf("malformed tag %q: want name#discriminator", tag)
	}
	disc, err := strconv.Atoi(tag[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed tag %q: %v", tag, err)
	}
	return tag[:i], disc, nil
}

func (a Account) String() string {
	return fmt.Sprintf("%s, posts: %d, real name: %s, description: %s",
		a.Tag(), a.Posts, a.RealName, a.Description)
}

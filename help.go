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
	"fmt"
	"runtime"

	markdown "github.com/MichaelMure/go-term-markdown"
)

func getHelpMessage() string {
	message := fmt.Sprintf(`

 **Nametag %s**

An in-memory index of name#tag accounts. Many accounts may share a username;
the discriminator tells them apart.

Built with Go %s

# 1. Features
* Balanced user tree keyed by username, one discriminator store per user
* Load accounts from CSV files (username,discriminator,posts,real name,description)
* Interactive shell to insert, remove and query accounts
* Terminal browser with prefix search and account pages

# 2. Commands
* nametag dump -f accounts.csv
* nametag get kapish#1001 -f accounts.csv
* nametag find ka -f accounts.csv
* nametag shell -f accounts.csv
* nametag browse -f accounts.csv
* nametag settings

# 3. Configuration
Settings live in ~/.nametag.yaml and are created with defaults by the settings command.

# Please be aware
* Copy to clipboard feature on Linux or Unix requires 'xclip' or 'xsel' command to be installed

# License
Licensed under the Apache License, Version 2.0
Copyright © 2025 Naren Yellavula

`, version, runtime.Version())
	result := markdown.Render(string(message), 80, 3)
	return string(result)
}

// cache.go

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
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/cybrota/nametag/account"
)

// NewPageCache creates a cache for rendered account pages, keyed by name#tag.
func NewPageCache(c CacheConfig) *cache.Cache {
	return cache.New(c.Expiration, c.Cleanup)
}

func CachePage(c *cache.Cache, tag string, page string) {
	// Use Set instead of Add to allow overwriting
	c.Set(tag, page, cache.DefaultExpiration)
}

func GetPage(c *cache.Cache, tag string) string {
	val, ok := c.Get(tag)
	if !ok {
		return ""
	}
	return val.(string)
}

// EvictPage drops a page, e.g. after its account was removed.
func EvictPage(c *cache.Cache, tag string) {
	c.Delete(tag)
}

// accountMarkdown renders the markdown page for an account.
func accountMarkdown(a account.Account, siblings int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", a.Tag())
	fmt.Fprintf(&sb, "| field | value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| username | %s |\n", a.Username)
	fmt.Fprintf(&sb, "| discriminator | %d |\n", a.Discriminator)
	fmt.Fprintf(&sb, "| posts | %d |\n", a.Posts)
	fmt.Fprintf(&sb, "| real name | %s |\n", a.RealName)
	fmt.Fprintf(&sb, "| accounts named %s | %d |\n\n", a.Username, siblings)
	if a.Description != "" {
		fmt.Fprintf(&sb, "> %s\n", a.Description)
	}
	return sb.String()
}

// GetOrFillPage returns the cached page for a, rendering it with render on
// a miss. A render error falls back to the raw markdown.
func GetOrFillPage(c *cache.Cache, a account.Account, siblings int, render func(string) (string, error)) string {
	tag := a.Tag()
	if page := GetPage(c, tag); page != "" {
		return page
	}

	page := accountMarkdown(a, siblings)
	if render != nil {
		if rendered, err := render(page); err == nil {
			page = rendered
		}
	}
	CachePage(c, tag, page)
	return page
}

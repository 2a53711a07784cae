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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cybrota/nametag/account"
)

func TestCachePageAndGetPage(t *testing.T) {
	c := NewPageCache(defaultConfig.Cache)
	tag := "kapish#1001"
	page := "rendered page for kapish"

	// Initially, GetPage should return an empty string for a missing tag.
	if got := GetPage(c, tag); got != "" {
		t.Errorf("GetPage(%q) = %q; want empty string", tag, got)
	}

	CachePage(c, tag, page)

	if got := GetPage(c, tag); got != page {
		t.Errorf("GetPage(%q) = %q; want %q", tag, got, page)
	}

	EvictPage(c, tag)
	if got := GetPage(c, tag); got != "" {
		t.Errorf("after EvictPage, GetPage(%q) = %q; want empty string", tag, got)
	}
}

func TestCacheExpiration(t *testing.T) {
	// Create a cache with a very short expiration time to test expiry behavior.
	c := NewPageCache(CacheConfig{Expiration: 100 * time.Millisecond, Cleanup: 50 * time.Millisecond})
	tag := "expiring#0001"
	page := "This page should expire soon."

	CachePage(c, tag, page)

	if got := GetPage(c, tag); got != page {
		t.Errorf("GetPage(%q) = %q; want %q", tag, got, page)
	}

	// Wait longer than the expiration duration.
	time.Sleep(150 * time.Millisecond)

	if got := GetPage(c, tag); got != "" {
		t.Errorf("After expiration, GetPage(%q) = %q; want empty string", tag, got)
	}
}

func TestGetOrFillPage(t *testing.T) {
	c := NewPageCache(defaultConfig.Cache)
	a := account.Account{Username: "Chubbs", Discriminator: 1003, Posts: 7, RealName: "Chubbs C", Description: "hello"}

	calls := 0
	render := func(md string) (string, error) {
		calls++
		return "R:" + md, nil
	}

	first := GetOrFillPage(c, a, 1, render)
	if !strings.HasPrefix(first, "R:# Chubbs#1003") {
		t.Errorf("unexpected page:\n%s", first)
	}
	if !strings.Contains(first, "> hello") {
		t.Errorf("page is missing the description:\n%s", first)
	}

	second := GetOrFillPage(c, a, 1, render)
	if second != first || calls != 1 {
		t.Errorf("second lookup should hit the cache (calls = %d)", calls)
	}

	// A failing renderer falls back to the markdown source
	failing := func(string) (string, error) { return "", errors.New("no renderer") }
	b := account.New("plain", 1)
	if got := GetOrFillPage(c, b, 1, failing); !strings.HasPrefix(got, "# plain#0001") {
		t.Errorf("fallback page = %q", got)
	}
}

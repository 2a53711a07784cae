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

package account

import "testing"

func TestTag(t *testing.T) {
	tests := []struct {
		acct     Account
		expected string
	}{
		{New("kapish", 1004), "kapish#1004"},
		{New("Lemon", 7), "Lemon#0007"},
		{New("a#b", 12), "a#b#0012"},
	}

	for _, tc := range tests {
		if got := tc.acct.Tag(); got != tc.expected {
			t.Errorf("Tag() = %q; want %q", got, tc.expected)
		}
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		input    string
		username string
		disc     int
		wantErr  bool
	}{
		{"kapish#1004", "kapish", 1004, false},
		{"Lemon#0007", "Lemon", 7, false},
		{"a#b#0012", "a#b", 12, false},
		{"nohash", "", 0, true},
		{"#12", "", 0, true},
		{"trailing#", "", 0, true},
		{"bad#disc", "", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			username, disc, err := ParseTag(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseTag(%q) expected error, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTag(%q) returned error: %v", tc.input, err)
			}
			if username != tc.username || disc != tc.disc {
				t.Errorf("ParseTag(%q) = (%q, %d); want (%q, %d)", tc.input, username, disc, tc.username, tc.disc)
			}
		})
	}
}

func TestString(t *testing.T) {
	a := Account{Username: "Chubbs", Discriminator: 1003, Posts: 5, RealName: "Chubbs C", Description: "hi"}
	expected := "Chubbs#1003, posts: 5, real name: Chubbs C, description: hi"
	if got := a.String(); got != expected {
		t.Errorf("String() = %q; want %q", got, expected)
	}
}

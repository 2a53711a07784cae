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
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileName = ".nametag.yaml"

type LoaderConfig struct {
	Append       bool `yaml:"append"`
	ShowProgress bool `yaml:"show_progress"`
	Strict       bool `yaml:"strict"`
	BloomSize    uint `yaml:"bloom_size"`
	BloomHashes  uint `yaml:"bloom_hashes"`
}

type CacheConfig struct {
	Expiration time.Duration `yaml:"expiration"`
	Cleanup    time.Duration `yaml:"cleanup"`
}

type BrowserConfig struct {
	WordWrap int `yaml:"word_wrap"`
}

type Config struct {
	Loader  LoaderConfig  `yaml:"loader"`
	Cache   CacheConfig   `yaml:"cache"`
	Browser BrowserConfig `yaml:"browser"`
}

var defaultConfig = Config{
	Loader: LoaderConfig{
		Append:       true,
		ShowProgress: false,
		Strict:       false,
		BloomSize:    1 << 20,
		BloomHashes:  5,
	},
	Cache: CacheConfig{
		Expiration: 30 * time.Minute,
		Cleanup:    5 * time.Minute,
	},
	Browser: BrowserConfig{
		WordWrap: 72,
	},
}

// DefaultConfig returns a copy of the built-in settings.
func DefaultConfig() *Config {
	c := defaultConfig
	return &c
}

func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, configFileName), nil
}

// LoadConfig reads the config file at path, or ~/.nametag.yaml when path is
// empty. A missing or unreadable file yields the defaults; only a file that
// exists but does not parse is an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), nil
	}

	// Start from the defaults so a partial file only overrides what it sets
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	config.fillDefaults()

	return config, nil
}

// fillDefaults replaces zero values that would make the config unusable.
func (c *Config) fillDefaults() {
	if c.Loader.BloomSize == 0 {
		c.Loader.BloomSize = defaultConfig.Loader.BloomSize
	}
	if c.Loader.BloomHashes == 0 {
		c.Loader.BloomHashes = defaultConfig.Loader.BloomHashes
	}
	if c.Cache.Expiration <= 0 {
		c.Cache.Expiration = defaultConfig.Cache.Expiration
	}
	if c.Cache.Cleanup <= 0 {
		c.Cache.Cleanup = defaultConfig.Cache.Cleanup
	}
	if c.Browser.WordWrap <= 0 {
		c.Browser.WordWrap = defaultConfig.Browser.WordWrap
	}
}

func createDefaultConfigFile(path string) error {
	data, err := yaml.Marshal(&defaultConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %v", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

// displaySettings prints the effective configuration, creating the default
// file first when there is none.
func displaySettings(w io.Writer, path string) error {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %v", err)
		}
		path = p
	}

	created := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultConfigFile(path); err != nil {
			return err
		}
		created = true
	}

	config, err := LoadConfig(path)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(w, "📍 Config file: %s (newly created)\n\n", path)
	} else {
		fmt.Fprintf(w, "📍 Config file: %s\n\n", path)
	}

	fmt.Fprintf(w, "📥 %sLoader:%s\n", Green, Reset)
	fmt.Fprintf(w, "  • append: %t\n", config.Loader.Append)
	fmt.Fprintf(w, "  • show_progress: %t\n", config.Loader.ShowProgress)
	fmt.Fprintf(w, "  • strict: %t\n", config.Loader.Strict)
	fmt.Fprintf(w, "  • bloom_size: %d\n", config.Loader.BloomSize)
	fmt.Fprintf(w, "  • bloom_hashes: %d\n\n", config.Loader.BloomHashes)

	fmt.Fprintf(w, "🗄  %sCache:%s\n", Green, Reset)
	fmt.Fprintf(w, "  • expiration: %s\n", config.Cache.Expiration)
	fmt.Fprintf(w, "  • cleanup: %s\n\n", config.Cache.Cleanup)

	fmt.Fprintf(w, "🔍 %sBrowser:%s\n", Green, Reset)
	fmt.Fprintf(w, "  • word_wrap: %d\n", config.Browser.WordWrap)

	return nil
}

// Copyright 2024 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

package cache

import (
	"bufio"
	"os"

	"github.com/naoina/toml"
)

// tomlSettings mirrors go-core's own node-config decoder: a bare
// toml.Config relying on Config's struct tags below for field names.
var tomlSettings = toml.Config{}

// Config is the on-disk cache configuration, loaded the same way
// go-core's node config is: a TOML file decoded with naoina/toml.
type Config struct {
	// Root overrides the cache directory; empty selects DefaultRoot().
	Root string `toml:"root"`
	// MemBudget overrides the in-memory fastcache layer's byte budget;
	// 0 selects New's built-in default.
	MemBudget int `toml:"membudget"`
}

// LoadConfig decodes a Config from a TOML file at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Open builds a Store from this Config, resolving Root to DefaultRoot()
// when unset.
func (c *Config) Open() (*Store, error) {
	root := c.Root
	if root == "" {
		var err error
		if root, err = DefaultRoot(); err != nil {
			return nil, err
		}
	}
	return New(root, c.MemBudget)
}

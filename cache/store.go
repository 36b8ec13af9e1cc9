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

// Package cache fronts the on-disk artifact cache (RPC storage dumps,
// Etherscan source lookups, solc compiler output, backend replies) with
// an in-memory, size-bounded layer so a single process never re-reads
// and re-parses the same JSON file twice. Every entry on disk carries
// its own expiry; a stale or unparseable entry is deleted silently and
// reported to the caller as a miss, never as an error.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/edb-core/edb-go/log"
)

// category is one of the four on-disk top-level directories the store
// understands. The literal layout is rpc/<chain>/<block>/storage.json,
// etherscan/<chain>/<addr>.json, solc/<chain>/<addr>.json and
// backend/<chain>/<addr>.json.
type category string

const (
	categoryRPC        category = "rpc"
	categoryEtherscan  category = "etherscan"
	categorySolc       category = "solc"
	categoryBackend    category = "backend"
	defaultMemBudget            = 32 * 1024 * 1024
	storageFileName             = "storage.json"
)

// envelope is the on-disk wrapper around every cached value: the raw
// payload plus a Unix-seconds expiry. ExpiresAt == 0 means the entry
// never expires.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt int64           `json:"expires_at"`
}

// Store is the cache front end. The zero value is not usable; build one
// with New.
type Store struct {
	root string
	mem  *fastcache.Cache
}

// New opens a Store rooted at root, creating it if it does not yet
// exist. memBytes bounds the in-memory fastcache layer; 0 selects a
// conservative default.
func New(root string, memBytes int) (*Store, error) {
	if memBytes <= 0 {
		memBytes = defaultMemBudget
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root, mem: fastcache.New(memBytes)}, nil
}

// DefaultRoot returns "<home>/.edb/cache", the root a Config with an
// empty Root resolves to.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".edb", "cache"), nil
}

func (s *Store) path(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

// GetRPCStorage looks up a cached storage dump for chain/block, decoding
// it into out. ok is false on a miss; err is non-nil only for an I/O
// failure other than "file does not exist".
func (s *Store) GetRPCStorage(chain string, block uint64, out interface{}) (ok bool, err error) {
	return s.get(s.path(string(categoryRPC), chain, uint64ToDir(block), storageFileName), out)
}

// PutRPCStorage stores a storage dump for chain/block with the given
// time-to-live; ttl <= 0 means the entry never expires.
func (s *Store) PutRPCStorage(chain string, block uint64, data interface{}, ttl time.Duration) error {
	return s.put(s.path(string(categoryRPC), chain, uint64ToDir(block), storageFileName), data, ttl)
}

// GetEtherscanSource looks up a cached Etherscan source lookup for
// chain/addr.
func (s *Store) GetEtherscanSource(chain, addr string, out interface{}) (ok bool, err error) {
	return s.get(s.addrPath(categoryEtherscan, chain, addr), out)
}

// PutEtherscanSource stores an Etherscan source lookup for chain/addr.
func (s *Store) PutEtherscanSource(chain, addr string, data interface{}, ttl time.Duration) error {
	return s.put(s.addrPath(categoryEtherscan, chain, addr), data, ttl)
}

// GetSolcArtifact looks up a cached solc compiler artifact for
// chain/addr.
func (s *Store) GetSolcArtifact(chain, addr string, out interface{}) (ok bool, err error) {
	return s.get(s.addrPath(categorySolc, chain, addr), out)
}

// PutSolcArtifact stores a solc compiler artifact for chain/addr.
func (s *Store) PutSolcArtifact(chain, addr string, data interface{}, ttl time.Duration) error {
	return s.put(s.addrPath(categorySolc, chain, addr), data, ttl)
}

// GetBackendReply looks up a cached backend reply for chain/addr.
func (s *Store) GetBackendReply(chain, addr string, out interface{}) (ok bool, err error) {
	return s.get(s.addrPath(categoryBackend, chain, addr), out)
}

// PutBackendReply stores a backend reply for chain/addr.
func (s *Store) PutBackendReply(chain, addr string, data interface{}, ttl time.Duration) error {
	return s.put(s.addrPath(categoryBackend, chain, addr), data, ttl)
}

func (s *Store) addrPath(c category, chain, addr string) string {
	return s.path(string(c), chain, addr+".json")
}

func uint64ToDir(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func (s *Store) get(path string, out interface{}) (bool, error) {
	if raw, ok := s.mem.HasGet(nil, []byte(path)); ok {
		return decode(raw, out, func() { s.mem.Del([]byte(path)) })
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	ok, err := decode(raw, out, func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn("cache: failed to evict stale entry", "path", path, "err", rmErr)
		}
	})
	if err != nil {
		return false, err
	}
	if ok {
		s.mem.Set([]byte(path), raw)
	}
	return ok, nil
}

// decode unmarshals an envelope and its payload, invoking evict and
// reporting a miss (never an error) for an expired or malformed entry,
// both of which are the "silently deleted" cases the cache layout calls
// for.
func decode(raw []byte, out interface{}, evict func()) (bool, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		evict()
		return false, nil
	}
	if env.ExpiresAt > 0 && env.ExpiresAt <= time.Now().Unix() {
		evict()
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		evict()
		return false, nil
	}
	return true, nil
}

func (s *Store) put(path string, data interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var expires int64
	if ttl > 0 {
		expires = time.Now().Add(ttl).Unix()
	}
	blob, err := json.Marshal(envelope{Data: raw, ExpiresAt: expires})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	s.mem.Set([]byte(path), blob)
	return nil
}

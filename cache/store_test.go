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
	"os"
	"path/filepath"
	"testing"
	"time"
)

type storageDump struct {
	Slots map[string]string `json:"slots"`
}

func TestStoreRPCStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := storageDump{Slots: map[string]string{"0x0": "0x1"}}
	if err := s.PutRPCStorage("mainnet", 42, want, time.Hour); err != nil {
		t.Fatalf("PutRPCStorage: %v", err)
	}

	wantPath := filepath.Join(dir, "rpc", "mainnet", "42", "storage.json")
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("expected cache file at %s: %v", wantPath, err)
	}

	var got storageDump
	ok, err := s.GetRPCStorage("mainnet", 42, &got)
	if err != nil {
		t.Fatalf("GetRPCStorage: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if got.Slots["0x0"] != "0x1" {
		t.Fatalf("unexpected round-tripped data: %+v", got)
	}
}

func TestStoreMissReturnsFalseNotError(t *testing.T) {
	s, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out storageDump
	ok, err := s.GetRPCStorage("mainnet", 1, &out)
	if err != nil {
		t.Fatalf("unexpected error on a miss: %v", err)
	}
	if ok {
		t.Fatalf("expected a miss")
	}
}

func TestStoreExpiredEntryIsEvictedSilently(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.PutEtherscanSource("mainnet", "0xabc", storageDump{}, -time.Second); err != nil {
		t.Fatalf("PutEtherscanSource: %v", err)
	}

	var out storageDump
	ok, err := s.GetEtherscanSource("mainnet", "0xabc", &out)
	if err != nil {
		t.Fatalf("unexpected error for an expired entry: %v", err)
	}
	if ok {
		t.Fatalf("expected an expired entry to read back as a miss")
	}

	path := filepath.Join(dir, "etherscan", "mainnet", "0xabc.json")
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected the expired entry's file to be deleted, stat err=%v", statErr)
	}
}

func TestStoreMalformedEntryIsEvictedSilently(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := filepath.Join(dir, "solc", "mainnet", "0xdead.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var out storageDump
	ok, err := s.GetSolcArtifact("mainnet", "0xdead", &out)
	if err != nil {
		t.Fatalf("unexpected error for malformed content: %v", err)
	}
	if ok {
		t.Fatalf("expected malformed content to read back as a miss")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected the malformed entry's file to be deleted, stat err=%v", statErr)
	}
}

func TestStoreNoExpiryEntryNeverEvicted(t *testing.T) {
	s, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.PutBackendReply("mainnet", "0xfeed", storageDump{Slots: map[string]string{"a": "b"}}, 0); err != nil {
		t.Fatalf("PutBackendReply: %v", err)
	}
	var out storageDump
	ok, err := s.GetBackendReply("mainnet", "0xfeed", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || out.Slots["a"] != "b" {
		t.Fatalf("expected the zero-ttl entry to remain cached, got ok=%v out=%+v", ok, out)
	}
}

func TestConfigOpenResolvesDefaultRoot(t *testing.T) {
	cfg := &Config{}
	store, err := cfg.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	wantRoot, err := DefaultRoot()
	if err != nil {
		t.Fatalf("DefaultRoot: %v", err)
	}
	if store.root != wantRoot {
		t.Fatalf("expected root %q, got %q", wantRoot, store.root)
	}
	os.RemoveAll(wantRoot)
}

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

package runtime

import (
	"sync"

	"github.com/edb-core/edb-go/common"
	"github.com/edb-core/edb-go/crypto"
)

// VisitedAddressSet tracks every Address touched during one replay, the
// raw bytecode visited as the replay walks into each call and create.
// Modeled on MEDGA-eth/EDB's visited_address.rs: an insert-once
// registry, since re-visiting an address mid-replay (a reentrant call)
// must not re-trigger analysis of bytecode already analyzed.
type VisitedAddressSet struct {
	mu       sync.Mutex
	seen     map[Address]*AnalyzedBytecode
	codeHash map[Address]common.Hash
}

func NewVisitedAddressSet() *VisitedAddressSet {
	return &VisitedAddressSet{
		seen:     make(map[Address]*AnalyzedBytecode),
		codeHash: make(map[Address]common.Hash),
	}
}

// Visit registers addr's code the first time it is seen, analyzing it
// via Analyze; subsequent visits with the same Address and identical
// code are no-ops that return the cached AnalyzedBytecode. A later
// visit to the same Address carrying different code (a SELFDESTRUCT
// followed by a redeploy to the same address within one replay)
// re-analyzes the new code rather than silently reusing stale pc<->ic
// maps, using crypto.CodeHash to detect the change cheaply.
func (s *VisitedAddressSet) Visit(addr Address, code []byte) (*AnalyzedBytecode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := crypto.CodeHash(code)
	if ab, ok := s.seen[addr]; ok && s.codeHash[addr] == hash {
		return ab, nil
	}
	ab, err := Analyze(code)
	if err != nil {
		return nil, err
	}
	s.seen[addr] = ab
	s.codeHash[addr] = hash
	return ab, nil
}

// Get returns the AnalyzedBytecode for addr, if it has been visited.
func (s *VisitedAddressSet) Get(addr Address) (*AnalyzedBytecode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ab, ok := s.seen[addr]
	return ab, ok
}

// Addresses returns every Address visited so far, in no particular order.
func (s *VisitedAddressSet) Addresses() []Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Address, 0, len(s.seen))
	for a := range s.seen {
		out = append(out, a)
	}
	return out
}

// Len returns the number of distinct addresses visited.
func (s *VisitedAddressSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

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

package explorer

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
)

// memoizing wraps a Client with a bounded in-process LRU, keyed by
// chain+addr. This sits in front of the rate limiter and is distinct
// from cache.Store's persisted, cross-process cache: it only exists to
// stop a single CLI invocation from re-asking the explorer for the same
// address twice (e.g. a contract called repeatedly within one trace).
type memoizing struct {
	next  Client
	cache *lru.Cache
}

// WithMemo wraps next in an LRU of the given size; size <= 0 selects a
// small built-in default sized for one replay's worth of distinct
// addresses.
func WithMemo(next Client, size int) Client {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New(size)
	if err != nil {
		// only returns an error for a non-positive size, already guarded.
		panic(err)
	}
	return &memoizing{next: next, cache: c}
}

type memoKey struct {
	chain, addr string
}

func (m *memoizing) FetchSource(ctx context.Context, chain, addr string) (*CompilerArtifact, error) {
	key := memoKey{chain, addr}
	if v, ok := m.cache.Get(key); ok {
		return v.(*CompilerArtifact), nil
	}
	artifact, err := m.next.FetchSource(ctx, chain, addr)
	if err != nil {
		return nil, err
	}
	m.cache.Add(key, artifact)
	return artifact, nil
}

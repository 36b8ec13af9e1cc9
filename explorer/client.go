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

// Package explorer names the on-chain source-acquisition boundary: a
// Client fetches a contract's verified source and compiler metadata
// from a block explorer so the analysis core can build an AST (§4.3)
// and source map (§4.4) for an address it did not compile itself. Only
// the interface and its rate-limiting contract are implemented here; no
// concrete HTTP-backed Client ships in this module.
package explorer

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/edb-core/edb-go/analysis/ast"
)

// CompilerArtifact is everything a concrete Client must recover from an
// explorer to let the analysis core proceed: the Solidity source, the
// compiler's own source map string, and the already-parsed debug
// scopes the rest of the pipeline consumes.
type CompilerArtifact struct {
	Chain       string
	Address     string
	Source      string
	CompilerTag string
	SourceMap   string
	Scopes      []ast.DebugUnit
}

// ErrNotVerified is returned by a Client when the explorer has no
// verified source for the requested address.
var ErrNotVerified = errors.New("explorer: contract source not verified")

// Client fetches a verified contract's compiler artifact by chain and
// address. Implementations are expected to rate-limit themselves
// against the explorer's own API quota; NewLimiter below is the shared
// knob every implementation should embed rather than inventing its own.
type Client interface {
	FetchSource(ctx context.Context, chain, addr string) (*CompilerArtifact, error)
}

// NewLimiter builds the rate limiter a Client implementation embeds to
// stay under an explorer's request quota: ratePerSecond sustained
// requests with a burst of up to burst.
func NewLimiter(ratePerSecond float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(ratePerSecond), burst)
}

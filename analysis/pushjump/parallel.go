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

package pushjump

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/edb-core/edb-go/analysis/hint"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/analysis/sourcemap"
)

// SourceMapProvider resolves the refined source map for addr, or nil if
// none is available (e.g. an unverified contract); refinement is then
// silently skipped for that address.
type SourceMapProvider func(addr runtime.Address) *sourcemap.RefinedSourceMap

// RunPosteriorAndRefinement runs the §4.2 posterior heuristic pass and
// the source-map refinement pass over every visited address's PJHint, in
// parallel, one goroutine per address. Both passes only ever touch the
// PJHint belonging to their own address, so no synchronization is needed
// across goroutines, matching §5's "no shared mutable state" guarantee
// for these two phases.
func RunPosteriorAndRefinement(visited *runtime.VisitedAddressSet, hints map[runtime.Address]*hint.PJHint, sourceMaps SourceMapProvider) error {
	g, _ := errgroup.WithContext(context.Background())
	for addr, h := range hints {
		addr, h := addr, h
		ab, ok := visited.Get(addr)
		if !ok {
			continue
		}
		g.Go(func() error {
			RefinePosterior(ab, h)
			if sourceMaps != nil {
				RefineWithSourceMap(ab, h, sourceMaps(addr))
			}
			return nil
		})
	}
	return g.Wait()
}

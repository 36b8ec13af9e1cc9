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

// Package runtime holds the analysis core's two leaf data types: the
// key every per-contract artifact is indexed by (Address), and the
// bytecode analyzer that builds the pc<->ic maps for one such key (§4.1
// of the spec).
package runtime

import (
	"fmt"

	"github.com/edb-core/edb-go/common"
)

// Address identifies one analysis subject: a contract's constructor
// code and its deployed code are distinct subjects, keyed independently
// by IsConstructor, since the same on-chain address runs different
// bytecode during CREATE than it does afterwards.
type Address struct {
	Addr          common.Address
	IsConstructor bool
}

func New(addr common.Address, isConstructor bool) Address {
	return Address{Addr: addr, IsConstructor: isConstructor}
}

func (a Address) String() string {
	if a.IsConstructor {
		return fmt.Sprintf("%s(constructor)", a.Addr.Hex())
	}
	return a.Addr.Hex()
}

// Copyright 2014 The go-core Authors
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

// Package crypto provides the single hash primitive the analysis core
// needs: a stable identity for a contract's code, independent of the
// chain/address a given replay happened to observe it at (see
// runtime.VisitedAddressSet).
package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/edb-core/edb-go/common"
)

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input
// data, converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// CodeHash is the identity of a contract's code itself, not the address
// it happened to be observed at, since the same code can be deployed
// under many addresses. runtime.VisitedAddressSet compares it to detect
// new code at an already-visited address; cache.Store does not use it
// (its keys are chain/address/block paths).
func CodeHash(code []byte) common.Hash {
	return Keccak256Hash(code)
}

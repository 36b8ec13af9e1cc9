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

package ast

import "encoding/json"

// Prune applies §6.1's three rewrite rules to n and every descendant,
// in place:
//   - null out "documentation" (doc comments carry no analysis value
//     and bloat the tree)
//   - an InlineAssembly node with no "AST" child (older solc) gets a
//     synthesized empty YulBlock, an empty externalReferences list, and
//     has any "operations" child removed
//   - "symbolAliases" (import-alias lists) are cleared to empty
func Prune(n *Node) {
	if n == nil {
		return
	}

	delete(n.Object, "documentation")
	delete(n.nodeFields, "documentation")

	if n.NodeType == "InlineAssembly" {
		if _, hasAST := n.nodeFields["AST"]; !hasAST {
			n.nodeFields["AST"] = emptyYulBlock(n.Src)
			n.arrayFields["externalReferences"] = nil
			delete(n.nodeFields, "operations")
			delete(n.arrayFields, "operations")
			delete(n.Object, "operations")
		}
	}

	if _, ok := n.arrayFields["symbolAliases"]; ok {
		n.arrayFields["symbolAliases"] = nil
	}

	for _, child := range n.nodeFields {
		Prune(child)
	}
	for _, children := range n.arrayFields {
		for _, child := range children {
			Prune(child)
		}
	}
}

func emptyYulBlock(src Loc) *Node {
	return &Node{
		NodeType:    "YulBlock",
		Src:         src,
		Object:      make(map[string]json.RawMessage),
		nodeFields:  make(map[string]*Node),
		arrayFields: map[string][]*Node{"statements": nil},
	}
}

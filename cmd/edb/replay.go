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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pborman/uuid"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/edb-core/edb-go/analysis/calltrace"
	"github.com/edb-core/edb-go/log"
)

var showCommand = cli.Command{
	Name:      "show",
	Usage:     "print a call trace as a table and exit",
	ArgsUsage: "<trace.json>",
	Action:    showCmd,
}

var replCommand = cli.Command{
	Name:      "repl",
	Usage:     "interactively walk a call trace, one node at a time",
	ArgsUsage: "<trace.json>",
	Action:    replCmd,
}

func loadTrace(path string) (*calltrace.AnalyzedCallTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var t calltrace.AnalyzedCallTrace
	if err := json.NewDecoder(f).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &t, nil
}

func showCmd(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: edb show <trace.json>", 1)
	}
	t, err := loadTrace(ctx.Args().First())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	renderTrace(os.Stdout, t)
	return nil
}

// renderTrace prints one row per call-trace node, skipping nodes
// flattened away by the tail-call handling in analysis/calltrace;
// Discard marks those as no longer part of the logical tree.
func renderTrace(w io.Writer, t *calltrace.AnalyzedCallTrace) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"node", "addr", "edge", "depth(msg/intra)", "blocks", "reverted"})
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Discard {
			continue
		}
		edge := "root"
		if n.Parent != nil {
			edge = n.Parent.Callsite.Edge.Kind.String()
		}
		depth := "-"
		if n.Depth != nil {
			depth = fmt.Sprintf("%d/%d", n.Depth.Message, n.Depth.IntraContract)
		}
		reverted := "-"
		if n.Ret != nil {
			reverted = fmt.Sprintf("%v", n.Ret.Reverted)
		}
		table.Append([]string{
			strconv.Itoa(n.Loc),
			n.Addr.Addr.String(),
			edge,
			depth,
			strconv.Itoa(len(n.Trace)),
			reverted,
		})
	}
	table.Render()
}

func replCmd(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: edb repl <trace.json>", 1)
	}
	t, err := loadTrace(ctx.Args().First())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	cur := 0
	sessionID := uuid.NewRandom()
	log.Info("starting repl session", "id", sessionID, "nodes", len(t.Nodes))
	fmt.Println("edb repl, commands: show, node <id>, up, down <child-index>, quit")
	for {
		input, err := line.Prompt(fmt.Sprintf("node(%d)> ", cur))
		if err != nil {
			if err == liner.ErrPromptAborted || err == liner.ErrNotTerminatedInput {
				return nil
			}
			return cli.NewExitError(err.Error(), 1)
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "show":
			renderTrace(os.Stdout, t)
		case "node":
			if len(fields) != 2 {
				fmt.Println("usage: node <id>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil || id < 0 || id >= len(t.Nodes) {
				fmt.Println("no such node")
				continue
			}
			cur = id
		case "up":
			if p := t.Nodes[cur].Parent; p != nil {
				cur = p.ID
			} else {
				fmt.Println("already at the root")
			}
		case "down":
			if len(fields) != 2 {
				fmt.Println("usage: down <child-index>")
				continue
			}
			idx, err := strconv.Atoi(fields[1])
			children := t.Nodes[cur].Children
			if err != nil || idx < 0 || idx >= len(children) {
				fmt.Println("no such child")
				continue
			}
			cur = children[idx].ID
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

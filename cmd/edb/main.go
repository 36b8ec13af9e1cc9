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

// edb is the command-line front end for the analysis core: it loads an
// already-built call trace (the output of analysis/calltrace, handed to
// it as JSON by whatever replays the transaction) and lets a user walk
// it, either as a one-shot table dump or an interactive session.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/edb-core/edb-go/log"
)

var gitTag = ""
var gitCommit = ""
var gitDate = ""

var (
	app = cli.NewApp()

	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "sets the logging verbosity (0=crit .. 5=trace)",
		Value: int(log.LvlInfo),
	}
)

func init() {
	app.Name = "edb"
	app.Usage = "explore an analyzed call trace"
	app.Version = fmt.Sprintf("%s-%s-%s", gitTag, gitCommit, gitDate)
	app.Flags = []cli.Flag{VerbosityFlag}
	app.Commands = []cli.Command{
		showCommand,
		replCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		lvl := log.Lvl(ctx.GlobalInt(VerbosityFlag.Name))
		log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat(false))))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

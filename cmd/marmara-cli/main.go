// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// marmara-cli - inspect credit loops and assemble settlements
// against a local chain database
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/marmarachain/marmara/configuration"
	"github.com/marmarachain/marmara/marmara"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/mode"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	defer exitwithstatus.Handler()

	app := cli.NewApp()
	app.Name = "marmara-cli"
	app.Usage = "inspect marmara credit loops"
	app.Version = version

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "marmara.conf",
			Usage: " configuration `FILE`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "decode",
			Usage:     "decode a hex opret to JSON",
			ArgsUsage: "HEX",
			Action:    runDecode,
		},
		{
			Name:      "creditloop",
			Usage:     "walk a credit loop from any of its txids",
			ArgsUsage: "TXID",
			Action:    withStore(runCreditLoop),
		},
		{
			Name:      "settle",
			Usage:     "assemble the settlement of a matured loop",
			ArgsUsage: "TXID",
			Action:    withStore(runSettle),
		},
	}

	if err := app.Run(os.Args); nil != err {
		exitwithstatus.Message("%s: error: %s", app.Name, err)
	}
}

// runDecode - no chain access needed
func runDecode(c *cli.Context) error {
	data, err := hex.DecodeString(c.Args().First())
	if nil != err {
		return err
	}

	decoded, funcID, err := opret.DecodeAny(data)
	if nil != err {
		return err
	}

	return printJSON(c, struct {
		FuncID string      `json:"funcid"`
		Data   interface{} `json:"data,omitempty"`
	}{
		FuncID: funcID.String(),
		Data:   decoded,
	})
}

// withStore - bring up configuration, logging and the database
// around a command
func withStore(action func(*cli.Context, *storage.ChainStore) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		options, err := configuration.GetConfiguration(c.GlobalString("config"))
		if nil != err {
			return err
		}

		if err := logger.Initialise(logger.Configuration{
			Directory: filepath.Join(options.DataDir, options.Logging.Directory),
			File:      options.Logging.File,
			Size:      options.Logging.Size,
			Count:     options.Logging.Count,
			Console:   options.Logging.Console,
			Levels:    options.Logging.Levels,
		}); nil != err {
			return err
		}
		defer logger.Finalise()

		if err := mode.Initialise(options.Chain, options.Marmara); nil != err {
			return err
		}
		defer mode.Finalise()

		if err := storage.Initialise(filepath.Join(options.DataDir, "marmara.leveldb"), storage.ReadOnly); nil != err {
			return err
		}
		defer storage.Finalise()

		return action(c, storage.Store())
	}
}

func runCreditLoop(c *cli.Context, store *storage.ChainStore) error {
	txid, err := parseTxid(c.Args().First())
	if nil != err {
		return err
	}

	loop, err := marmara.GetBaton(store, txid)
	if nil != err {
		return err
	}

	result := struct {
		CreateTxId merkle.Digest   `json:"createTxid"`
		Chain      []merkle.Digest `json:"chain"`
		Baton      merkle.Digest   `json:"baton"`
		Endorsers  int             `json:"endorsers"`
		FalseBaton bool            `json:"falseBaton,omitempty"`
		Empty      bool            `json:"empty,omitempty"`
	}{
		CreateTxId: loop.CreateTxId,
		Chain:      loop.Chain,
		Baton:      loop.Baton,
		Endorsers:  loop.Endorsers,
		FalseBaton: loop.FalseBaton,
		Empty:      loop.IsEmpty(),
	}
	return printJSON(c, result)
}

func runSettle(c *cli.Context, store *storage.ChainStore) error {
	txid, err := parseTxid(c.Args().First())
	if nil != err {
		return err
	}

	settlement, err := marmara.CreateSettlement(store, nil, txid)
	if nil != err {
		return err
	}

	result := struct {
		TxId      merkle.Digest `json:"txid"`
		Holder    string        `json:"holder"`
		Settled   int64         `json:"settled"`
		Remaining int64         `json:"remaining"`
		Partial   bool          `json:"partial"`
		Packed    string        `json:"packed"`
	}{
		TxId:      settlement.Tx.TxId(),
		Holder:    settlement.Holder.String(),
		Settled:   settlement.Settled,
		Remaining: settlement.Remaining,
		Partial:   settlement.IsPartial(),
		Packed:    hex.EncodeToString(settlement.Tx.Pack()),
	}
	return printJSON(c, result)
}

func parseTxid(s string) (merkle.Digest, error) {
	var txid merkle.Digest
	if _, err := fmt.Sscan(s, &txid); nil != err {
		return merkle.Digest{}, err
	}
	return txid, nil
}

func printJSON(c *cli.Context, result interface{}) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if nil != err {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\n", b)
	return nil
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmarachain/marmara/configuration"
)

const testConfig = `
local M = {
    chain = "testing",
    marmara = true,

    logging = {
        file = "test.log",
        size = 262144,
        count = 5,
        console = true,
        levels = {
            DEFAULT = "info",
        },
    },
}
return M
`

func TestGetConfiguration(t *testing.T) {
	dir, err := ioutil.TempDir("", "marmara-config")
	if nil != err {
		t.Fatalf("tempdir error: %s", err)
	}
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "marmara.conf")
	if err := ioutil.WriteFile(fileName, []byte(testConfig), 0600); nil != err {
		t.Fatalf("write config error: %s", err)
	}

	options, err := configuration.GetConfiguration(fileName)
	if nil != err {
		t.Fatalf("configuration error: %s", err)
	}

	if "testing" != options.Chain {
		t.Errorf("wrong chain: %q", options.Chain)
	}
	if !options.Marmara {
		t.Error("marmara flag not set")
	}
	if dir != options.DataDir {
		t.Errorf("wrong data directory: %q", options.DataDir)
	}
	if "test.log" != options.Logging.File {
		t.Errorf("wrong log file: %q", options.Logging.File)
	}
	if 5 != options.Logging.Count {
		t.Errorf("wrong log count: %d", options.Logging.Count)
	}
	if "info" != options.Logging.Levels["DEFAULT"] {
		t.Errorf("wrong log levels: %v", options.Logging.Levels)
	}
}

func TestBadChain(t *testing.T) {
	dir, err := ioutil.TempDir("", "marmara-config")
	if nil != err {
		t.Fatalf("tempdir error: %s", err)
	}
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "marmara.conf")
	if err := ioutil.WriteFile(fileName, []byte(`return { chain = "doge" }`), 0600); nil != err {
		t.Fatalf("write config error: %s", err)
	}

	if _, err := configuration.GetConfiguration(fileName); nil == err {
		t.Fatal("invalid chain accepted")
	}
}

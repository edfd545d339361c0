// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse the Lua configuration file
package configuration

import (
	"os"
	"path/filepath"

	"github.com/marmarachain/marmara/chain"
	"github.com/marmarachain/marmara/fault"
)

// LoggerConfiguration - the log file settings
type LoggerConfiguration struct {
	Directory string            `gluamapper:"directory" json:"directory"`
	File      string            `gluamapper:"file" json:"file"`
	Size      int               `gluamapper:"size" json:"size"`
	Count     int               `gluamapper:"count" json:"count"`
	Console   bool              `gluamapper:"console" json:"console"`
	Levels    map[string]string `gluamapper:"levels" json:"levels"`
}

// Configuration - the top level of the configuration file
type Configuration struct {
	Chain   string              `gluamapper:"chain" json:"chain"`
	Marmara bool                `gluamapper:"marmara" json:"marmara"`
	DataDir string              `gluamapper:"data_directory" json:"data_directory"`
	Logging LoggerConfiguration `gluamapper:"logging" json:"logging"`
}

// GetConfiguration - read and execute a configuration file
func GetConfiguration(fileName string) (*Configuration, error) {

	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	// set up the defaults
	options := &Configuration{
		Chain:   chain.Marmara,
		Marmara: true,
		DataDir: filepath.Dir(fileName),
		Logging: LoggerConfiguration{
			Directory: "log",
			File:      "marmara.log",
			Size:      1048576,
			Count:     10,
		},
	}

	if err := ParseConfigurationFile(fileName, options); nil != err {
		return nil, err
	}

	if !chain.Valid(options.Chain) {
		return nil, fault.ErrInvalidChain
	}

	// fail early on an unusable data directory
	if info, err := os.Stat(options.DataDir); nil != err || !info.IsDir() {
		return nil, fault.ErrConfigDataDirectory
	}

	return options, nil
}

// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"upspin.io/errors"
)

// Environment variables consulted by FromEnv.
const (
	EnvClientID = "DRIVEBACKUP_CLIENT_ID"
	EnvScopes   = "DRIVEBACKUP_SCOPES"
)

// Load reads a YAML configuration file. Fields absent from the file keep
// their values from Default. The result is validated.
func Load(path string) (*AppConfig, error) {
	const op = "config.Load"
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.E(op, errors.NotExist, err)
	}
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return parse(op, data)
}

func parse(op string, data []byte) (*AppConfig, error) {
	var file AppConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.E(op, errors.Invalid, errors.Errorf("yaml parse: %v", err))
	}
	cfg := Default.Clone()
	if file.ClientID != "" {
		cfg.ClientID = file.ClientID
	}
	if file.Scopes != nil {
		cfg.Scopes = file.Scopes
	}
	if file.DiscoveryDocs != nil {
		cfg.DiscoveryDocs = file.DiscoveryDocs
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.E(op, err)
	}
	return cfg, nil
}

// FromEnv returns a copy of base with the client ID and scopes overridden by
// DRIVEBACKUP_CLIENT_ID and DRIVEBACKUP_SCOPES (space separated), when set.
// A nil base means Default.
func FromEnv(base *AppConfig) *AppConfig {
	if base == nil {
		base = Default
	}
	cfg := base.Clone()
	if v := os.Getenv(EnvClientID); v != "" {
		cfg.ClientID = v
	}
	if v := strings.Fields(os.Getenv(EnvScopes)); len(v) > 0 {
		cfg.Scopes = v
	}
	return cfg
}

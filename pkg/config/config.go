/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// Package config loads heapctl's tunables — chunk size, initial heap
// size, and fuzz parameters — from flags, environment variables, and an
// optional ~/.heapctlrc, merged over built-in defaults.
package config

import (
	"path/filepath"

	"github.com/imdario/mergo"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every value heapctl's subcommands read at startup.
type Config struct {
	ChunkSize   string `mapstructure:"chunk_size"`
	InitialSize string `mapstructure:"initial_size"`
	FillPattern string `mapstructure:"fill_pattern"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Defaults returns the built-in configuration every other source is
// merged over.
func Defaults() Config {
	return Config{
		ChunkSize:   "192B",
		InitialSize: "192B",
		FillPattern: "random",
		Verbose:     false,
	}
}

// Load reads ~/.heapctlrc (if present), environment variables prefixed
// HEAPCTL_, and the bound pflag set, in that order of increasing
// precedence, merged over Defaults().
func Load(flags *pflag.FlagSet) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetEnvPrefix("heapctl")
	v.AutomaticEnv()

	if home, err := homedir.Dir(); err == nil {
		v.SetConfigName(".heapctlrc")
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return cfg, errors.Wrap(err, "config: reading ~/.heapctlrc")
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return cfg, errors.Wrap(err, "config: binding flags")
		}
	}

	var fromFile Config
	if err := v.Unmarshal(&fromFile); err != nil {
		return cfg, errors.Wrap(err, "config: unmarshalling")
	}

	if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
		return cfg, errors.Wrap(err, "config: merging sources")
	}

	return cfg, nil
}

// DefaultRCPath returns the conventional location of the per-user config
// file, for error messages and `heapctl config path`-style diagnostics.
func DefaultRCPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".heapctlrc")
}

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package flag

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/pflag"
)

// ByteSizeFlag is a Flag backed by a human-readable byte-size string
// ("192B", "64KiB"), the same convention the allocator's own chunk and
// initial-heap-size knobs use.
type ByteSizeFlag struct {
	FlagPart
	Value   string
	Default string
}

// NewByteSizeFlag returns a ByteSizeFlag with the given default value.
func NewByteSizeFlag(key, usage string, def string, hidden bool) *ByteSizeFlag {
	return &ByteSizeFlag{
		FlagPart: NewFlagPart(key, usage, hidden),
		Default:  def,
	}
}

// Bytes parses the flag's current value into a byte count.
func (f *ByteSizeFlag) Bytes() (uint64, error) {
	return bytefmt.ToBytes(f.Value)
}

// FlagValidate confirms the flag's value parses as a byte size.
func (f *ByteSizeFlag) FlagValidate() error {
	if _, err := bytefmt.ToBytes(f.Value); err != nil {
		return fmt.Errorf("%s: %w", f.Key, err)
	}
	return nil
}

// AddTo registers the flag, hidden if FlagPart says so.
func (f *ByteSizeFlag) AddTo(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Value, f.Key, f.Default, f.usage)
	if f.hidden {
		_ = flagSet.MarkHidden(f.Key)
	}
}

// AddUnhiddenTo registers the flag regardless of FlagPart's hidden bit.
func (f *ByteSizeFlag) AddUnhiddenTo(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Value, f.Key, f.Default, f.usage)
}

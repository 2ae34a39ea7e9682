/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// Command heapctl is a test driver for pkg/heap: it replaces the
// malloc/free/realloc/calloc calls in a recorded operation script with
// calls into the allocator, checking or reporting on the result.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heapwright/heapwright/pkg/clilog"
	"github.com/heapwright/heapwright/pkg/config"
	flagpkg "github.com/heapwright/heapwright/pkg/flag"
)

var (
	log        *clilog.CLI
	verboseFl  bool
	debugFl    bool
	chunkSzFl  = flagpkg.NewByteSizeFlag("chunk-size", "heap growth increment", "192B", false)
	initSzFl   = flagpkg.NewByteSizeFlag("initial-size", "not read; the initial wilderness is sized by --chunk-size", "192B", true)
	activeCfg  config.Config
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise the segregated-fit allocator against recorded operation scripts",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = clilog.New(verboseFl, debugFl)
		logrus.SetFormatter(log)
		if debugFl {
			logrus.SetLevel(logrus.TraceLevel)
		} else if verboseFl {
			logrus.SetLevel(logrus.DebugLevel)
		}

		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		activeCfg = cfg
		return nil
	},
}

func commandInit() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFl, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debugFl, "debug", false, "debug output")
	chunkSzFl.AddTo(rootCmd.PersistentFlags())
	initSzFl.AddUnhiddenTo(rootCmd.PersistentFlags())

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	commandInit()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

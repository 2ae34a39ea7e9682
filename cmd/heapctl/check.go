/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/heapwright/heapwright/pkg/heap"
	"github.com/heapwright/heapwright/pkg/region"
	"github.com/heapwright/heapwright/pkg/script"
)

var checkMatchFl string

var checkCmd = &cobra.Command{
	Use:   "check <script|dir> [scripts...]",
	Short: "Replay operation scripts, running the consistency checker after every line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := expandScriptPaths(args, checkMatchFl)
		if err != nil {
			return err
		}
		for _, path := range paths {
			if err := checkOne(path); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkMatchFl, "match", "*.script", "glob used to select scripts when a directory is given")
}

func checkOne(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ops, err := script.Parse(f)
	if err != nil {
		return err
	}

	chunk, err := chunkSzFl.Bytes()
	if err != nil {
		return err
	}
	h := heap.NewWithGrowthChunk(region.New(), uint32(chunk))
	if err := h.Initialize(); err != nil {
		return err
	}

	runner := script.NewRunner(h)
	runner.Check = func() error { return h.Check(activeCfg.Verbose) }

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for i, op := range ops {
		if err := runner.Run(op); err != nil {
			log.Printf("%s line %d: %s — %s", red("FAIL"), i+1, op.Raw, err)
			return err
		}
		log.Debugf("%s line %d: %s", green("PASS"), i+1, op.Raw)
	}
	log.Printf("%s: %d operations, %s", path, len(ops), green("PASS"))
	return nil
}

func expandScriptPaths(args []string, match string) ([]string, error) {
	var out []string
	g, err := glob.Compile(match)
	if err != nil {
		return nil, err
	}
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && g.Match(e.Name()) {
				out = append(out, a+string(os.PathSeparator)+e.Name())
			}
		}
	}
	return out, nil
}

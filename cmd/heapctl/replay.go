/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/heapwright/heapwright/pkg/heap"
	"github.com/heapwright/heapwright/pkg/region"
	"github.com/heapwright/heapwright/pkg/script"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Deterministically replay a recorded operation trace, checking after every line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
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

		for i, op := range ops {
			if err := runner.Run(op); err != nil {
				log.Errorf("replay stopped at line %d (%s): %s", i+1, op.Raw, err)
				return err
			}
		}
		log.Printf("replayed %d operations from %s", len(ops), args[0])
		return nil
	},
}

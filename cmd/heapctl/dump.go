/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package main

import (
	"fmt"
	"os"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/sisatech/tablewriter"
	"github.com/spf13/cobra"

	"github.com/heapwright/heapwright/pkg/heap"
	"github.com/heapwright/heapwright/pkg/region"
	"github.com/heapwright/heapwright/pkg/script"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <script>",
	Short: "Replay a script and render the final segregated-list occupancy and utilization",
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
		for _, op := range ops {
			if err := runner.Run(op); err != nil {
				return err
			}
		}

		stats := h.Stats()
		fmt.Printf("footprint:    %s\n", bytefmt.ByteSize(stats.Footprint))
		fmt.Printf("payload:      %s\n", bytefmt.ByteSize(stats.PayloadBytes))
		fmt.Printf("free:         %s\n", bytefmt.ByteSize(stats.FreeBytes))
		fmt.Printf("utilization:  %.1f%%\n", stats.Utilization()*100)
		fmt.Printf("live ids:     %d\n\n", len(runner.Live()))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"bin", "count"})
		table.SetAlignment(tablewriter.ALIGN_RIGHT)
		table.SetBorder(false)
		for i, n := range stats.BinCounts {
			table.Append([]string{strconv.Itoa(i), strconv.Itoa(n)})
		}
		table.Render()
		return nil
	},
}

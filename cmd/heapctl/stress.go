/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package main

import (
	"bufio"
	"bytes"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/thanhpk/randstr"

	"github.com/heapwright/heapwright/pkg/heap"
	"github.com/heapwright/heapwright/pkg/region"
	"github.com/heapwright/heapwright/pkg/script"
)

var (
	stressOpsFl    int
	stressSeedFl   int64
	stressRecordFl string
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Randomized fuzz driver exercising allocate/free/reallocate/calloc at scale",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := uuid.New().String()
		log.Infof("stress run %s", runID)

		chunk, err := chunkSzFl.Bytes()
		if err != nil {
			return err
		}
		h := heap.NewWithGrowthChunk(region.New(), uint32(chunk))
		if err := h.Initialize(); err != nil {
			return err
		}
		runner := script.NewRunner(h)
		runner.Check = func() error { return h.Check(false) }

		var rec *bufio.Writer
		var recFile *os.File
		if stressRecordFl != "" {
			recFile, err = os.Create(stressRecordFl)
			if err != nil {
				return err
			}
			defer recFile.Close()
			rec = bufio.NewWriter(recFile)
			defer rec.Flush()
		}

		rng := rand.New(rand.NewSource(stressSeedFl))
		payloads := make(map[int][]byte)
		nextID := 0

		bar := log.NewProgress("stress", "ops", int64(stressOpsFl))
		defer bar.Finish(true)

		for i := 0; i < stressOpsFl; i++ {
			live := runner.Live()
			var op script.Op
			choice := rng.Intn(4)
			if len(live) == 0 {
				choice = 0
			}
			switch choice {
			case 0:
				id := nextID
				nextID++
				size := 1 + rng.Intn(4096)
				op = script.Op{Kind: script.Allocate, ID: id, N: size}
			case 1:
				id := pickLiveID(live, rng)
				op = script.Op{Kind: script.Free, ID: id}
			case 2:
				id := pickLiveID(live, rng)
				op = script.Op{Kind: script.Reallocate, ID: id, N: 1 + rng.Intn(4096)}
			default:
				id := nextID
				nextID++
				nmemb := 1 + rng.Intn(16)
				size := 1 + rng.Intn(256)
				op = script.Op{Kind: script.ZeroedAllocate, ID: id, N: nmemb, Size2: size}
			}

			if rec != nil {
				_, _ = rec.WriteString(op.String() + "\n")
			}
			if err := runner.Run(op); err != nil {
				return errors.Wrapf(err, "stress run %s op %d", runID, i)
			}

			if op.Kind == script.Allocate || op.Kind == script.ZeroedAllocate {
				if p, ok := runner.Pointer(op.ID); ok {
					n := op.N
					if op.Kind == script.ZeroedAllocate {
						n = op.N * op.Size2
					}
					fill := randstr.Bytes(n)
					h.Write(p, fill)
					payloads[op.ID] = fill
				}
			}
			if op.Kind == script.Reallocate {
				if p, ok := runner.Pointer(op.ID); ok {
					got := make([]byte, op.N)
					h.Read(p, got)
					if prev, ok := payloads[op.ID]; ok {
						n := len(prev)
						if n > op.N {
							n = op.N
						}
						if !bytes.Equal(got[:n], prev[:n]) {
							return errors.Errorf("stress run %s: reallocate at op %d corrupted payload", runID, i)
						}
					}
					payloads[op.ID] = got
				} else {
					delete(payloads, op.ID)
				}
			}
			if op.Kind == script.Free {
				delete(payloads, op.ID)
			}

			bar.Increment(1)
		}

		log.Printf("stress run %s: %d operations clean", runID, stressOpsFl)
		return nil
	},
}

func pickLiveID(live map[int]heap.Ptr, rng *rand.Rand) int {
	ids := make([]int, 0, len(live))
	for id := range live {
		ids = append(ids, id)
	}
	return ids[rng.Intn(len(ids))]
}

func init() {
	stressCmd.Flags().IntVar(&stressOpsFl, "ops", 10000, "number of operations to generate")
	stressCmd.Flags().Int64Var(&stressSeedFl, "seed", 1, "random seed")
	stressCmd.Flags().StringVar(&stressRecordFl, "record", "", "append generated operations to this script file")
}

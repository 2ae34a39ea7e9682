/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// Package script parses and replays the line-oriented operation traces
// heapctl's subcommands share: one allocator call per line, plain text,
// easy to diff and hand-edit.
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/heapwright/heapwright/pkg/heap"
)

// Op is a single parsed operation line.
type Op struct {
	Kind  Kind
	ID    int
	N     int // size for Allocate/Reallocate, nmemb for ZeroedAllocate
	Size2 int // size for ZeroedAllocate ("c <id> <nmemb> <size>")
	Raw   string
}

// Kind identifies which allocator call an Op replays.
type Kind int

const (
	Allocate Kind = iota
	Free
	Reallocate
	ZeroedAllocate
)

// Parse reads one operation per line from r. Blank lines and lines
// starting with '#' are ignored.
func Parse(r io.Reader) ([]Op, error) {
	var ops []Op
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		op, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "script: line %d", lineNo)
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "script: reading")
	}
	return ops, nil
}

func parseLine(line string) (Op, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Op{}, errors.New("empty line")
	}
	op := Op{Raw: line}
	rest := fields[1:]

	atoi := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.Wrapf(err, "parsing integer %q", s)
		}
		return n, nil
	}

	switch fields[0] {
	case "a":
		if len(rest) != 2 {
			return op, errors.Errorf("%q: want 'a <id> <size>'", line)
		}
		op.Kind = Allocate
		id, err := atoi(rest[0])
		if err != nil {
			return op, err
		}
		n, err := atoi(rest[1])
		if err != nil {
			return op, err
		}
		op.ID, op.N = id, n
	case "f":
		if len(rest) != 1 {
			return op, errors.Errorf("%q: want 'f <id>'", line)
		}
		op.Kind = Free
		id, err := atoi(rest[0])
		if err != nil {
			return op, err
		}
		op.ID = id
	case "r":
		if len(rest) != 2 {
			return op, errors.Errorf("%q: want 'r <id> <size>'", line)
		}
		op.Kind = Reallocate
		id, err := atoi(rest[0])
		if err != nil {
			return op, err
		}
		n, err := atoi(rest[1])
		if err != nil {
			return op, err
		}
		op.ID, op.N = id, n
	case "c":
		if len(rest) != 3 {
			return op, errors.Errorf("%q: want 'c <id> <nmemb> <size>'", line)
		}
		op.Kind = ZeroedAllocate
		id, err := atoi(rest[0])
		if err != nil {
			return op, err
		}
		nmemb, err := atoi(rest[1])
		if err != nil {
			return op, err
		}
		size, err := atoi(rest[2])
		if err != nil {
			return op, err
		}
		op.ID, op.N, op.Size2 = id, nmemb, size
	default:
		return op, errors.Errorf("%q: unknown operation %q", line, fields[0])
	}
	return op, nil
}

// String renders an Op back into script syntax, for recording.
func (op Op) String() string {
	switch op.Kind {
	case Allocate:
		return fmt.Sprintf("a %d %d", op.ID, op.N)
	case Free:
		return fmt.Sprintf("f %d", op.ID)
	case Reallocate:
		return fmt.Sprintf("r %d %d", op.ID, op.N)
	case ZeroedAllocate:
		return fmt.Sprintf("c %d %d %d", op.ID, op.N, op.Size2)
	default:
		return ""
	}
}

// Runner replays Ops against a Heap, tracking the id -> pointer mapping a
// script's ids refer to, and invoking an optional check after every line.
type Runner struct {
	Heap  *heap.Heap
	ids   map[int]heap.Ptr
	Check func() error
}

// NewRunner returns a Runner bound to h.
func NewRunner(h *heap.Heap) *Runner {
	return &Runner{Heap: h, ids: make(map[int]heap.Ptr)}
}

// Run replays a single Op, updating the id table.
func (r *Runner) Run(op Op) error {
	switch op.Kind {
	case Allocate:
		p, err := r.Heap.Allocate(op.N)
		if err != nil {
			return errors.Wrapf(err, "line %q", op.Raw)
		}
		r.ids[op.ID] = p
	case Free:
		p, ok := r.ids[op.ID]
		if !ok {
			return errors.Errorf("line %q: id %d not allocated", op.Raw, op.ID)
		}
		r.Heap.Free(p)
		delete(r.ids, op.ID)
	case Reallocate:
		p := r.ids[op.ID]
		np, err := r.Heap.Reallocate(p, op.N)
		if err != nil {
			return errors.Wrapf(err, "line %q", op.Raw)
		}
		if np == 0 {
			delete(r.ids, op.ID)
		} else {
			r.ids[op.ID] = np
		}
	case ZeroedAllocate:
		p, err := r.Heap.ZeroedAllocate(op.N, op.Size2)
		if err != nil {
			return errors.Wrapf(err, "line %q", op.Raw)
		}
		r.ids[op.ID] = p
	}
	if r.Check != nil {
		if err := r.Check(); err != nil {
			return errors.Wrapf(err, "after %q", op.Raw)
		}
	}
	return nil
}

// Pointer returns the live pointer an id currently maps to.
func (r *Runner) Pointer(id int) (heap.Ptr, bool) {
	p, ok := r.ids[id]
	return p, ok
}

// Live returns every id currently allocated, for dump/stats reporting.
func (r *Runner) Live() map[int]heap.Ptr {
	return r.ids
}

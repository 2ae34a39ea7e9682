/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// Package clilog is the terminal-facing logging and progress-bar view
// heapctl's subcommands render through.
package clilog

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// Logger is an interface that has the ability to hide debug/info output.
type Logger interface {
	Debugf(format string, x ...interface{})
	Errorf(format string, x ...interface{})
	Infof(format string, x ...interface{})
	Printf(format string, x ...interface{})
	Warnf(format string, x ...interface{})
	IsInfoEnabled() bool
	IsDebugEnabled() bool
}

// Progress is a handle on an in-flight progress bar or spinner.
type Progress interface {
	Finish(success bool)
	Increment(n int64)
}

// ProgressReporter creates Progress bars.
type ProgressReporter interface {
	NewProgress(label string, units string, total int64) Progress
}

// View bundles a Logger and a ProgressReporter, the whole surface
// heapctl's subcommands need.
type View interface {
	Logger
	ProgressReporter
}

// CLI is the default View, driving logrus with colorized, isatty-aware
// terminal output and mpb progress bars.
type CLI struct {
	DisableColors bool
	DisableTTY    bool
	IsDebug       bool
	IsVerbose     bool

	lock               sync.Mutex
	isTrackingProgress bool
	bars               map[*mpb.Bar]bool
	buffer             *bytes.Buffer
	progressContainer  *mpb.Progress
}

// New returns a CLI configured from the current terminal: colors and the
// progress container are disabled automatically when stdout isn't a tty.
func New(verbose, debug bool) *CLI {
	tty := isatty.IsTerminal(os.Stdout.Fd())
	return &CLI{
		DisableColors: !tty,
		DisableTTY:    !tty,
		IsVerbose:     verbose,
		IsDebug:       debug,
	}
}

func (log *CLI) Debugf(format string, x ...interface{}) {
	if log.IsDebug {
		logrus.Tracef(format, x...)
	}
}

func (log *CLI) Errorf(format string, x ...interface{}) {
	logrus.Errorf(format, x...)
}

func (log *CLI) Infof(format string, x ...interface{}) {
	if log.IsVerbose {
		logrus.Debugf(format, x...)
	}
}

func (log *CLI) Printf(format string, x ...interface{}) {
	logrus.Printf(format, x...)
}

func (log *CLI) Warnf(format string, x ...interface{}) {
	logrus.Warnf(format, x...)
}

func (log *CLI) IsInfoEnabled() bool {
	return logrus.IsLevelEnabled(logrus.InfoLevel)
}

func (log *CLI) IsDebugEnabled() bool {
	return logrus.IsLevelEnabled(logrus.DebugLevel)
}

// NewProgress creates a progress bar, or a no-op stand-in when output
// isn't a terminal.
func (log *CLI) NewProgress(label string, units string, total int64) Progress {
	if log.DisableTTY {
		return &nilProgress{}
	}

	log.lock.Lock()
	defer log.lock.Unlock()

	if !log.isTrackingProgress {
		log.isTrackingProgress = true
		log.buffer = new(bytes.Buffer)
		logrus.SetOutput(log.buffer)
		log.progressContainer = mpb.New(mpb.WithWidth(80))
		log.bars = make(map[*mpb.Bar]bool)
	}

	var decorators []decor.Decorator
	switch units {
	case "ops":
		decorators = append(decorators, decor.CountersNoUnit("% d / % d"))
	default:
		decorators = append(decorators, decor.Percentage())
	}

	p := log.progressContainer.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(label, decor.WC{W: len(label) + 1, C: decor.DidentRight}),
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 4}), "done"),
		),
		mpb.AppendDecorators(decorators...),
	)

	log.bars[p] = true

	pb := &pb{
		log:        log,
		p:          p,
		total:      total,
		interval:   time.Millisecond * 100,
		nextUpdate: time.Now().Add(time.Millisecond * 100),
	}
	return pb
}

type nilProgress struct{}

func (np *nilProgress) Increment(n int64)     {}
func (np *nilProgress) Finish(success bool)   {}

type pb struct {
	log    *CLI
	p      *mpb.Bar
	closed bool
	total  int64
	bar    int64

	buffered   int64
	interval   time.Duration
	nextUpdate time.Time
}

func (pb *pb) Increment(n int64) {
	pb.buffered += n
	pb.bar += n
	if !time.Now().Before(pb.nextUpdate) {
		pb.flush()
	}
}

func (pb *pb) flush() {
	pb.nextUpdate = time.Now().Add(pb.interval)
	pb.p.IncrInt64(pb.buffered)
	pb.buffered = 0
}

func (pb *pb) Finish(success bool) {
	if pb.closed {
		return
	}
	pb.flush()
	pb.closed = true
	if pb.bar != pb.total || pb.total == 0 || !success {
		pb.p.Abort(false)
	}

	pb.log.lock.Lock()
	defer pb.log.lock.Unlock()
	delete(pb.log.bars, pb.p)

	if len(pb.log.bars) == 0 {
		pb.log.bars = nil
		pb.log.isTrackingProgress = false
		pb.log.progressContainer.Wait()
		pb.log.progressContainer = nil
		logrus.SetOutput(os.Stdout)
		_, _ = pb.log.buffer.WriteTo(os.Stdout)
		pb.log.buffer = nil
	}
}

// Format implements logrus.Formatter, matching the teacher's house style
// of coloring by level rather than emitting structured fields.
func (log *CLI) Format(entry *logrus.Entry) ([]byte, error) {
	faint := color.New(color.Faint).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()

	x := entry.Message
	if !log.DisableColors {
		switch entry.Level {
		case logrus.TraceLevel:
			x = fmt.Sprintf("%s\n", faint(x))
		case logrus.DebugLevel:
			x = fmt.Sprintf("%s\n", blue(x))
		case logrus.InfoLevel:
			x = fmt.Sprintf("%s\n", x)
		case logrus.WarnLevel:
			x = fmt.Sprintf("%s\n", yellow(x))
		case logrus.ErrorLevel:
			x = fmt.Sprintf("%s\n", red(x))
		default:
		}
	} else {
		x = fmt.Sprintf("%s\n", x)
	}

	return []byte(x), nil
}

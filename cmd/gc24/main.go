// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"github.com/lassandro/gogc24/pkg/debugger"
	"github.com/lassandro/gogc24/pkg/encoding"
	"github.com/lassandro/gogc24/pkg/machine"
)

var helpvar bool
var debugvar bool
var verbosevar bool
var basevar string
var memvar string
var shouldexit bool

var log *logrus.Entry

const usage = "gc24 [-debug] [-v] [-base 0x030000] [-mem 0x1000000] image"

func init() {
	exe, _ := os.Executable()
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log = logrus.WithField("prog", filepath.Base(exe))
	replLog = log.WithField("repl", "debug")
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&verbosevar, "v", false, "Logs every executed instruction")
	flag.StringVar(&basevar, "base", "0x030000", "Address the image is loaded at")
	flag.StringVar(&memvar, "mem", "0x1000000", "Memory size in bytes")
}

func loadImage(mc *machine.Machine, path string, base uint32) (*os.File, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, errors.Wrap(err, "opening image")
	}

	n, err := mc.LoadImage(file, base)

	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	log.WithFields(logrus.Fields{
		"bytes": n,
		"base":  fmt.Sprintf("%06X", base),
	}).Debug("Image loaded")

	return file, nil
}

func gc24() int {
	flag.Parse()

	if helpvar {
		fmt.Println(usage)
		return 0
	}

	if verbosevar {
		logrus.SetLevel(logrus.TraceLevel)
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Error(usage)
		return 1
	}

	base, err := encoding.DecodeHex(basevar)

	if err != nil {
		log.Error(errors.Wrap(err, "invalid -base"))
		return 1
	}

	size, err := strconv.ParseUint(memvar, 0, 32)

	if err != nil {
		log.Error(errors.Wrap(err, "invalid -mem"))
		return 1
	}

	mc := machine.New(int(size))
	mc.Logger = logrus.StandardLogger()

	file, err := loadImage(mc, args[0], base)

	if err != nil {
		log.Error(err)
		return 1
	}

	defer file.Close()

	var dh machine.DeviceHandler
	dh.Keyboard = bufio.NewReader(os.Stdin)
	dh.Display = bufio.NewWriter(os.Stdout)
	dh.Video = &frameLogger{log: log}
	dh.Random = machine.NewRandom(time.Now().UnixNano())
	mc.Devices = &dh

	if term.IsTerminal(int(os.Stdin.Fd())) {
		if err := enterRawTerm(); err != nil {
			log.Error(err)
			return 1
		}

		atexit.Register(func() {
			if err := exitRawTerm(); err != nil {
				log.Error(err)
			}
		})
	}

	if debugvar {
		return debugRun(mc, file, base)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	status, err := mc.Run(ctx)

	if err != nil {
		log.WithField("status", status).Error(err)
	}

	return int(status & 0xFF)
}

func debugRun(mc *machine.Machine, image *os.File, base uint32) int {
	var dbg debugger.Debugger
	dbg.HandleBreak = handleBreak
	dbg.HandleRead = handleRead
	dbg.HandleWrite = handleWrite
	dbg.Image = image
	dbg.ImageBase = base
	mc.Debugger = &dbg

	c := make(chan os.Signal, 1)
	defer close(c)

	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	go func() {
		for range c {
			fmt.Println()
			dbg.Break.Store(true)
		}
	}()

	if err := debugREPL(&dbg, mc); err != nil {
		log.Error(err)
		return 1
	}

	for !shouldexit {
		halted, status := mc.Step()

		if !halted {
			continue
		}

		fmt.Println()
		fmt.Printf("Program halted with status %d\n", status)

		if err := mc.Fault(); err != nil {
			fmt.Println(err)
		}

		if err := debugREPL(&dbg, mc); err != nil {
			log.Error(err)
			return 1
		}

		if mc.Halted() {
			return int(status & 0xFF)
		}
	}

	return 0
}

func main() {
	atexit.Exit(gc24())
}

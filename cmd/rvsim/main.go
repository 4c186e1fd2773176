/*
   rvsim - main process: parse arguments, load the kernel and optional
   disk image, wire the console, and run the hart to completion or
   signal.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/rvsim/internal/bus"
	"github.com/rcornwell/rvsim/internal/debugopt"
	"github.com/rcornwell/rvsim/internal/device"
	"github.com/rcornwell/rvsim/internal/hart"
	"github.com/rcornwell/rvsim/internal/logging"
)

var Logger *slog.Logger

func main() {
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.StringLong("debug", 'd', "", "Debug subsystems: decode,trap,mmu,csr,device")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var debugMask debugopt.Mask
	if *optDebug != "" {
		if err := debugMask.Set(*optDebug); err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}

	debugopt.SetCurrent(debugMask)

	var logFile *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("unable to create log file", "file", *optLogFile, "error", err)
			os.Exit(1)
		}
		logFile = f
	}
	Logger = slog.New(logging.NewHandler(logFile, slog.LevelDebug, debugMask != 0))
	slog.SetDefault(Logger)

	args := getopt.Args()
	if len(args) < 1 {
		Logger.Error("usage: rvsim <kernel-image> [<disk-image>]")
		os.Exit(1)
	}

	kernelImage, err := os.ReadFile(args[0])
	if err != nil {
		Logger.Error("unable to read kernel image", "file", args[0], "error", err)
		os.Exit(1)
	}

	console := device.NewUART(os.Stdin, os.Stdout)
	simBus := bus.New(kernelImage, console)

	if len(args) > 1 {
		diskImage, err := os.ReadFile(args[1])
		if err != nil {
			Logger.Error("unable to read disk image", "file", args[1], "error", err)
			os.Exit(1)
		}
		simBus.Virtio.Initialize(diskImage)
	}

	h := hart.New(simBus)

	Logger.Info("rvsim started", "kernel", args[0])

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		for {
			if err := h.OneStep(); err != nil {
				done <- err
				return
			}
		}
	}()

	select {
	case <-sigChan:
		Logger.Info("shutting down on signal")
	case err := <-done:
		Logger.Error(err.Error())
		os.Exit(1)
	}
}

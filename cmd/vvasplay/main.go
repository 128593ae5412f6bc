/*
NAME
  main.go

DESCRIPTION
  vvasplay is a bare-bones demo program: it parses an Annex-B H.264 file,
  decodes its access units with a stub decoder and scales each decoded
  frame to a caller-chosen size/format, reporting every output frame it
  produces (spec §8 end-to-end scenario 1). It is cmd/rv and cmd/looper's
  flag-driven, logging.New-initialized main() shape, pared down to what
  this module actually has to drive: a local file, not a netsender/cloud
  pipeline.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

// vvasplay is a demo command that drives accel/pipeline over a local
// Annex-B H.264 file.
package main

import (
	"flag"
	"os"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/accel/pipeline"
	"github.com/ausocean/vvasgo/accel/scale/swref"
)

const (
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	inPath := flag.String("in", "", "path to an Annex-B H.264 file")
	outWidth := flag.Int("width", 512, "output frame width")
	outHeight := flag.Int("height", 288, "output frame height")
	decodeWidth := flag.Int("decode-width", 1920, "width the stub decoder reports for every access unit")
	decodeHeight := flag.Int("decode-height", 1080, "height the stub decoder reports for every access unit")
	gateThresh := flag.Int("gate-threshold", 0, "per-sample luma difference that counts as motion; 0 disables the motion gate")
	gatePixels := flag.Uint("gate-pixels", 1000, "minimum differing samples for a frame to count as motion")
	flag.Parse()

	l := logging.New(logVerbosity, os.Stderr, logSuppress)

	if *inPath == "" {
		l.Fatal("no input file given; use -in")
	}
	f, err := os.Open(*inPath)
	if err != nil {
		l.Fatal("could not open input file", "error", err)
	}
	defer f.Close()

	cfg := pipeline.Config{
		OutWidth: *outWidth, OutHeight: *outHeight, OutFormat: frame.BGR,
		KernelName: swref.KernelName,
	}
	if *gateThresh > 0 {
		cfg.Gate = pipeline.NewMotionGate(*gateThresh, *gatePixels)
	}

	decoder := pipeline.StubDecoder{Width: *decodeWidth, Height: *decodeHeight, Format: frame.NV12, Fill: 128}

	p, err := pipeline.New(nil, l, decoder, cfg)
	if err != nil {
		l.Fatal("could not create pipeline", "error", err)
	}

	count := 0
	err = p.Run(f, func(dst *frame.Frame) error {
		count++
		info := dst.GetVideoInfo()
		l.Info("scaled frame", "n", count, "width", info.Width, "height", info.Height)
		return dst.Free()
	})
	if err != nil {
		l.Fatal("pipeline run failed", "error", err)
	}
	l.Info("done", "frames", count)
}

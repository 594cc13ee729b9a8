/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"gocrop/internal/config"
	"gocrop/internal/crash"
	"gocrop/internal/cropper"
	"gocrop/internal/export"
	"gocrop/internal/geom"
	applog "gocrop/internal/log"
	"gocrop/internal/storage"
	"gocrop/internal/version"
)

func usage() {
	fmt.Println("gocrop — constrained rotate-and-crop tool")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gocrop version|-v|--version                 Show version")
	fmt.Println("  gocrop crop [flags] <in> <out>              Crop an image and write the result")
	fmt.Println("  gocrop maxrot [flags] <width> <height>      Print the maximum safe rotation")
	fmt.Println("  gocrop inspect <in>                         Print image and default crop geometry")
	fmt.Println("  gocrop preset save [flags] <name>           Save a named crop preset")
	fmt.Println("  gocrop preset list                          List saved presets")
	fmt.Println("  gocrop preset delete <name>                 Delete a preset")
	fmt.Println()
	fmt.Println("Run a subcommand with -h for its flags.")
}

// stateFlags registers the flags describing a crop state on fs and returns
// a builder that assembles the State after parsing.
func stateFlags(fs *flag.FlagSet) func() (cropper.State, error) {
	rotation := fs.Float64("rotation", 0, "fine rotation in degrees, -45..45 clockwise")
	base := fs.Int("base", 0, "base rotation: 0, 90, 180 or 270")
	crop := fs.String("crop", "", "explicit crop size as WxH (default: largest inscribed)")
	offset := fs.String("offset", "", "crop center offset as X,Y")
	return func() (cropper.State, error) {
		st := cropper.State{Rotation: *rotation}
		switch *base {
		case 0, 90, 180, 270:
			st.Base = cropper.BaseRotation(*base)
		default:
			return st, fmt.Errorf("invalid base rotation %d", *base)
		}
		if *crop != "" {
			var w, h float64
			if _, err := fmt.Sscanf(*crop, "%fx%f", &w, &h); err != nil || w <= 0 || h <= 0 {
				return st, fmt.Errorf("invalid -crop %q, want WxH", *crop)
			}
			st.Mode = cropper.SizeExplicit
			st.CropSize = geom.Size{Width: w, Height: h}
		}
		if *offset != "" {
			var x, y float64
			if _, err := fmt.Sscanf(*offset, "%f,%f", &x, &y); err != nil {
				return st, fmt.Errorf("invalid -offset %q, want X,Y", *offset)
			}
			st.Offset = geom.Point{X: x, Y: y}
		}
		return st, nil
	}
}

func loadConfig(l *slog.Logger) config.AppConfig {
	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	return cfg
}

func openStore(l *slog.Logger) (*storage.Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	s, err := storage.Open(home)
	if err != nil {
		l.Error("open preset store failed", slog.Any("err", err))
		return nil, err
	}
	return s, nil
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	dump := &crash.Dump{}
	defer func() { crash.Recover(dump) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.String())
			return
		case "crop":
			cmdCrop(l, dump, args[2:])
			return
		case "maxrot":
			cmdMaxRot(l, args[2:])
			return
		case "inspect":
			cmdInspect(l, args[2:])
			return
		case "preset":
			cmdPreset(l, args[2:])
			return
		}
	}

	usage()
}

func cmdCrop(l *slog.Logger, dump *crash.Dump, args []string) {
	cfg := loadConfig(l)
	fs := flag.NewFlagSet("crop", flag.ExitOnError)
	build := stateFlags(fs)
	minW := fs.Float64("min-width", cfg.Cropper.MinCropWidth, "minimum crop width in pixels")
	minH := fs.Float64("min-height", cfg.Cropper.MinCropHeight, "minimum crop height in pixels")
	docPath := fs.String("doc", "", "also write a JSON crop document to this path")
	proofPath := fs.String("proof", "", "also write a PDF proof sheet to this path")
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Println("crop requires <in> and <out>")
		usage()
		os.Exit(2)
	}
	in, out := fs.Arg(0), fs.Arg(1)
	st, err := build()
	if err != nil {
		fail(l, "invalid crop state", err)
	}
	dump.Source = in
	dump.State = &st

	abs, _ := filepath.Abs(in)
	l.Info("crop image", slog.String("src", abs), slog.Float64("rotation", st.Rotation))
	if err := export.Apply(in, out, st, *minW, *minH); err != nil {
		fail(l, "crop failed", err)
	}
	fmt.Println("Wrote", out)

	if *docPath != "" || *proofPath != "" {
		src, err := imaging.Open(in, imaging.AutoOrientation(true))
		if err != nil {
			fail(l, "reopen source failed", err)
		}
		c := cropper.New(float64(src.Bounds().Dx()), float64(src.Bounds().Dy()), cropper.Options{
			MinWidth:  *minW,
			MinHeight: *minH,
		})
		defer c.Close()
		doc := export.NewDocument(in,
			float64(src.Bounds().Dx()), float64(src.Bounds().Dy()),
			c.CropRectOf(st), cropper.RotationData{Rotation: st.Rotation, Base: st.Base})
		if *docPath != "" {
			if err := export.WriteDocument(*docPath, doc); err != nil {
				fail(l, "write crop document failed", err)
			}
			fmt.Println("Wrote", *docPath)
		}
		if *proofPath != "" {
			if err := export.WriteProofPDF(*proofPath, doc, export.PDFOptions{Title: filepath.Base(in)}); err != nil {
				fail(l, "write proof sheet failed", err)
			}
			fmt.Println("Wrote", *proofPath)
		}
	}
}

func cmdMaxRot(l *slog.Logger, args []string) {
	cfg := loadConfig(l)
	fs := flag.NewFlagSet("maxrot", flag.ExitOnError)
	crop := fs.String("crop", "", "explicit crop size as WxH")
	minW := fs.Float64("min-width", cfg.Cropper.MinCropWidth, "minimum crop width in pixels")
	minH := fs.Float64("min-height", cfg.Cropper.MinCropHeight, "minimum crop height in pixels")
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Println("maxrot requires <width> and <height>")
		usage()
		os.Exit(2)
	}
	var w, h float64
	if _, err := fmt.Sscanf(fs.Arg(0)+" "+fs.Arg(1), "%f %f", &w, &h); err != nil {
		fail(l, "invalid dimensions", err)
	}
	var custom *geom.Size
	if *crop != "" {
		var cw, ch float64
		if _, err := fmt.Sscanf(*crop, "%fx%f", &cw, &ch); err != nil || cw <= 0 || ch <= 0 {
			fail(l, "invalid crop size", fmt.Errorf("invalid -crop %q, want WxH", *crop))
		}
		custom = &geom.Size{Width: cw, Height: ch}
	}
	max := geom.FindMaxRotation(w, h, custom, *minW, *minH)
	fmt.Printf("%.1f\n", max)
}

func cmdInspect(l *slog.Logger, args []string) {
	cfg := loadConfig(l)
	if len(args) < 1 {
		fmt.Println("inspect requires <in>")
		usage()
		os.Exit(2)
	}
	src, err := imaging.Open(args[0], imaging.AutoOrientation(true))
	if err != nil {
		fail(l, "decode image failed", err)
	}
	w := float64(src.Bounds().Dx())
	h := float64(src.Bounds().Dy())
	max := geom.FindMaxRotation(w, h, nil, cfg.Cropper.MinCropWidth, cfg.Cropper.MinCropHeight)
	fmt.Printf("Image: %s\n", args[0])
	fmt.Printf("Size: %.0f x %.0f px\n", w, h)
	fmt.Printf("Max rotation: %.1f deg\n", max)
	for _, deg := range []float64{5, 15, 30, 45} {
		size := geom.ComputeCropSize(w, h, deg)
		fmt.Printf("Inscribed crop at %2.0f deg: %.1f x %.1f px\n", deg, size.Width, size.Height)
	}
}

func cmdPreset(l *slog.Logger, args []string) {
	if len(args) < 1 {
		fmt.Println("preset requires save, list or delete")
		usage()
		os.Exit(2)
	}
	ctx := context.Background()
	switch args[0] {
	case "save":
		fs := flag.NewFlagSet("preset save", flag.ExitOnError)
		build := stateFlags(fs)
		_ = fs.Parse(args[1:])
		if fs.NArg() < 1 {
			fmt.Println("preset save requires <name>")
			os.Exit(2)
		}
		name := fs.Arg(0)
		st, err := build()
		if err != nil {
			fail(l, "invalid preset state", err)
		}
		s, err := openStore(l)
		if err != nil {
			fail(l, "open store failed", err)
		}
		defer func() { _ = s.Close() }()
		if err := s.Save(ctx, name, st); err != nil {
			fail(l, "save preset failed", err)
		}
		fmt.Println("Saved preset", name)
	case "list":
		s, err := openStore(l)
		if err != nil {
			fail(l, "open store failed", err)
		}
		defer func() { _ = s.Close() }()
		list, err := s.List(ctx)
		if err != nil {
			fail(l, "list presets failed", err)
		}
		if len(list) == 0 {
			fmt.Println("No presets saved.")
			return
		}
		for _, p := range list {
			desc := "inscribed"
			if p.State.Mode == cropper.SizeExplicit {
				desc = fmt.Sprintf("%.0fx%.0f", p.State.CropSize.Width, p.State.CropSize.Height)
			}
			fmt.Printf("%-20s rotation %5.1f  base %3d  crop %s\n",
				p.Name, p.State.Rotation, int(p.State.Base), desc)
		}
	case "delete":
		if len(args) < 2 {
			fmt.Println("preset delete requires <name>")
			os.Exit(2)
		}
		s, err := openStore(l)
		if err != nil {
			fail(l, "open store failed", err)
		}
		defer func() { _ = s.Close() }()
		if err := s.Delete(ctx, strings.TrimSpace(args[1])); err != nil {
			fail(l, "delete preset failed", err)
		}
		fmt.Println("Deleted preset", args[1])
	default:
		fmt.Println("unknown preset subcommand:", args[0])
		usage()
		os.Exit(2)
	}
}

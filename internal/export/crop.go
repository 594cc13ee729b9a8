/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export applies a committed cropper state to actual pixels and
// produces the downstream artifacts: the cropped image, scaled previews, a
// validated JSON crop document and a PDF proof sheet.
package export

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"gocrop/internal/cropper"
	"gocrop/internal/geom"
	applog "gocrop/internal/log"
	"log/slog"
)

// Apply reads the image at srcPath, applies the state's base and fine
// rotation, crops the state's rectangle and writes the result to dstPath.
// The output format follows dstPath's extension. The crop dimensions are
// resolved with the given minimums, mirroring the interactive engine.
func Apply(srcPath, dstPath string, st cropper.State, minWidth, minHeight float64) error {
	l := applog.WithOperation(applog.WithComponent("export"), "apply").With(
		slog.String("src", srcPath),
	)
	src, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	out, err := Render(src, st, minWidth, minHeight)
	if err != nil {
		return err
	}
	if err := imaging.Save(out, dstPath); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	l.Info("crop exported", slog.String("dst", dstPath),
		slog.Int("w", out.Bounds().Dx()), slog.Int("h", out.Bounds().Dy()))
	return nil
}

// Render applies a cropper state to an in-memory image.
func Render(src image.Image, st cropper.State, minWidth, minHeight float64) (image.Image, error) {
	img := applyBaseRotation(src, st.Base)

	effW := float64(img.Bounds().Dx())
	effH := float64(img.Bounds().Dy())
	if effW == 0 || effH == 0 {
		return nil, fmt.Errorf("degenerate source image %vx%v", effW, effH)
	}

	var size geom.Size
	if st.Mode == cropper.SizeExplicit {
		size = geom.ClampCropDims(st.CropSize.Width, st.CropSize.Height, effW, effH, st.Rotation, minWidth, minHeight)
	} else {
		size = geom.ComputeCropSize(effW, effH, st.Rotation)
	}
	offset := geom.ClampOffset(st.Offset.X, st.Offset.Y, size.Width, size.Height, effW, effH, st.Rotation)

	rotated := img
	if math.Abs(st.Rotation) > 1e-9 {
		// imaging rotates counter-clockwise for positive angles; display
		// rotation is clockwise.
		rotated = imaging.Rotate(img, -st.Rotation, color.NRGBA{})
	}

	// The crop rectangle is axis-aligned in the rotated view, centered at
	// the rotated canvas center plus the offset.
	rb := rotated.Bounds()
	cx := float64(rb.Min.X) + float64(rb.Dx())/2 + offset.X
	cy := float64(rb.Min.Y) + float64(rb.Dy())/2 + offset.Y
	rect := image.Rect(
		int(math.Round(cx-size.Width/2)),
		int(math.Round(cy-size.Height/2)),
		int(math.Round(cx+size.Width/2)),
		int(math.Round(cy+size.Height/2)),
	)
	rect = rect.Intersect(rb)
	if rect.Empty() {
		return nil, fmt.Errorf("crop rectangle %v lies outside the rotated image %v", rect, rb)
	}
	return imaging.Crop(rotated, rect), nil
}

func applyBaseRotation(img image.Image, base cropper.BaseRotation) image.Image {
	switch base {
	case cropper.Base90:
		// 90 degrees clockwise.
		return imaging.Rotate270(img)
	case cropper.Base180:
		return imaging.Rotate180(img)
	case cropper.Base270:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}

// Preview scales img down so its longer side is maxDim pixels, using
// CatmullRom resampling for quality. Images already small enough are
// returned as-is.
func Preview(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dst := image.NewNRGBA(image.Rect(0, 0,
		int(math.Round(float64(w)*scale)),
		int(math.Round(float64(h)*scale)),
	))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// ComputeCropSize returns the largest centered, aspect-ratio-preserving
// rectangle that fits inside an image of the given display dimensions after
// it has been rotated by deg degrees. A zero-sized image yields a zero size;
// a rotation below epsilon returns the dimensions unchanged.
//
// The inscribed size is symmetric under sign flip of the angle, so only the
// magnitude of deg matters.
func ComputeCropSize(width, height, deg float64) Size {
	if width == 0 || height == 0 {
		return Size{}
	}
	rad := math.Abs(deg) * math.Pi / 180
	if rad < epsilon {
		return Size{Width: width, Height: height}
	}
	sin, cos := math.Sincos(rad)
	// Closed-form maximum scale for an aspect-locked centered rectangle
	// inscribed in a rectangle rotated relative to it.
	s := math.Min(
		width/(width*cos+height*sin),
		height/(width*sin+height*cos),
	)
	return Size{Width: s * width, Height: s * height}
}

// ClampCropDims returns the largest feasible centered crop not exceeding the
// desired cropWidth/cropHeight, fitting inside an imgWidth x imgHeight image
// rotated by deg degrees, and respecting minWidth/minHeight. Width is
// prioritized: if the minimum width cannot be satisfied at the requested
// height, the width is pinned to the minimum and height absorbs the
// adjustment.
//
// When the minimums themselves exceed what containment allows at this
// rotation, the returned size honors the minimums and may violate
// containment; callers treat that rotation as infeasible (see
// FindMaxRotation) rather than expecting an error here.
func ClampCropDims(cropWidth, cropHeight, imgWidth, imgHeight, deg, minWidth, minHeight float64) Size {
	hw := math.Max(cropWidth/2, minWidth/2)
	hh := math.Max(cropHeight/2, minHeight/2)
	hiW := imgWidth / 2
	hiH := imgHeight / 2

	rad := math.Abs(deg) * math.Pi / 180
	if rad < epsilon {
		return Size{Width: 2 * math.Min(hw, hiW), Height: 2 * math.Min(hh, hiH)}
	}
	sin, cos := math.Sincos(rad)

	// The worst corner of a centered crop of half-extents (hw, hh) projects
	// to u = hw*cos + hh*sin and v = hw*sin + hh*cos in the image frame, so
	// containment gives one width bound per axis; the tighter one wins.
	maxHW := math.Min(
		safeDiv(hiW-hh*sin, cos),
		safeDiv(hiH-hh*cos, sin),
	)
	if maxHW < minWidth/2 {
		// Minimum width is infeasible at this height; pin the width and let
		// the height solve below absorb the adjustment.
		hw = minWidth / 2
	} else {
		hw = math.Min(hw, maxHW)
	}

	// With the width settled, recompute the feasible height and clamp.
	maxHH := math.Min(
		safeDiv(hiW-hw*cos, sin),
		safeDiv(hiH-hw*sin, cos),
	)
	hh = math.Min(hh, maxHH)
	hh = math.Max(hh, minHeight/2)

	return Size{Width: 2 * hw, Height: 2 * hh}
}

// safeDiv divides num by den, substituting an unconstrained bound when the
// divisor is within epsilon of zero.
func safeDiv(num, den float64) float64 {
	if den < epsilon {
		return math.Inf(1)
	}
	return num / den
}

// maxRotationIterations fixes the binary search budget; 50 halvings of a 45
// degree interval converge far below the 0.1 degree output precision.
const maxRotationIterations = 50

// FindMaxRotation returns the largest rotation magnitude, in degrees rounded
// to one decimal within [0, 45], at which a crop of at least
// minWidth x minHeight is still achievable inside the image. With a custom
// crop the achievable size is what ClampCropDims can preserve of it; with a
// nil custom crop the default inscribed rectangle is used.
//
// Callers must re-clamp any stored rotation into [-result, result] whenever
// the inputs change.
func FindMaxRotation(imgWidth, imgHeight float64, customCrop *Size, minWidth, minHeight float64) float64 {
	lo, hi := 0.0, 45.0
	for i := 0; i < maxRotationIterations; i++ {
		mid := (lo + hi) / 2
		var achieved Size
		if customCrop != nil {
			// Relax the minimums for the probe: ClampCropDims floors its
			// output at them, which would make the feasibility check vacuous.
			achieved = ClampCropDims(customCrop.Width, customCrop.Height, imgWidth, imgHeight, mid, 0, 0)
		} else {
			achieved = ComputeCropSize(imgWidth, imgHeight, mid)
		}
		if achieved.Width >= minWidth && achieved.Height >= minHeight {
			lo = mid
		} else {
			hi = mid
		}
	}
	return math.Round(lo*10) / 10
}

// Relaxation budget and tolerance for ClampOffset. The tolerance absorbs
// floating-point noise so corrections do not oscillate.
const (
	offsetIterations = 8
	offsetTolerance  = 0.5
)

// ClampOffset nudges a crop rectangle's center offset inward until all four
// corners lie within the image rotated by deg degrees. The correction is a
// projected relaxation: each violated axis shifts the offset by the signed
// excess, projected back through the rotation. It runs a fixed number of
// iterations with an early exit once every corner satisfies containment
// within tolerance; if the crop exceeds what the rotation allows the result
// is best-effort.
func ClampOffset(offsetX, offsetY, cropWidth, cropHeight, imgWidth, imgHeight, deg float64) Point {
	hw := cropWidth / 2
	hh := cropHeight / 2
	hiW := imgWidth / 2
	hiH := imgHeight / 2
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)

	cx, cy := offsetX, offsetY
	corners := [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	for i := 0; i < offsetIterations; i++ {
		settled := true
		for _, c := range corners {
			px := cx + c[0]*hw
			py := cy + c[1]*hh
			u := px*cos + py*sin
			v := -px*sin + py*cos
			if u > hiW+offsetTolerance {
				d := u - hiW
				cx -= d * cos
				cy -= d * sin
				settled = false
			} else if u < -hiW-offsetTolerance {
				d := u + hiW
				cx -= d * cos
				cy -= d * sin
				settled = false
			}
			// Recompute v against the shifted center so the two axis
			// corrections for one corner do not fight each other.
			px = cx + c[0]*hw
			py = cy + c[1]*hh
			v = -px*sin + py*cos
			if v > hiH+offsetTolerance {
				d := v - hiH
				cx += d * sin
				cy -= d * cos
				settled = false
			} else if v < -hiH-offsetTolerance {
				d := v + hiH
				cx += d * sin
				cy -= d * cos
				settled = false
			}
		}
		if settled {
			break
		}
	}
	return Point{X: cx, Y: cy}
}

// Inside reports whether a crop of the given size centered at offset lies
// entirely within the rotated image, within the shared relaxation tolerance.
func Inside(offset Point, cropWidth, cropHeight, imgWidth, imgHeight, deg float64) bool {
	hw := cropWidth / 2
	hh := cropHeight / 2
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		if !contains(offset.X+c[0]*hw, offset.Y+c[1]*hh, imgWidth/2, imgHeight/2, sin, cos, offsetTolerance) {
			return false
		}
	}
	return true
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom implements the crop-constraint geometry for a rotated image
// surface: the largest inscribed crop for a rotation, dimension and offset
// clamping against the rotated bounds, and the maximum rotation compatible
// with a minimum crop size.
//
// All functions are pure and operate on plain float64 values in image pixel
// units. Angles are degrees unless a parameter is explicitly radians.
package geom

import "math"

// epsilon below which a rotation or a trigonometric divisor is treated as zero.
const epsilon = 1e-9

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a displacement of a crop rectangle's center from the image center.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the sum of two points.
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Sub returns the difference of two points.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// contains reports whether the point (px, py), relative to the image center,
// lies within an upright image of half-extents hiW, hiH that has been rotated
// by the angle whose sine/cosine are given. The point is rotated back into
// the image's own frame and compared against the half-extents, expanded by
// tol on every side.
func contains(px, py, hiW, hiH, sin, cos, tol float64) bool {
	u := px*cos + py*sin
	v := -px*sin + py*cos
	return math.Abs(u) <= hiW+tol && math.Abs(v) <= hiH+tol
}

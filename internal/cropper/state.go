/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cropper ties the constraint geometry to the commit/undo protocol:
// it owns the staged and committed cropper state, interprets drag input,
// keeps the rotation slider bound up to date and emits change events on
// every commit.
package cropper

import (
	"encoding/json"
	"math"

	"gocrop/internal/geom"
)

// BaseRotation is the discrete part of the display rotation. 90 and 270 swap
// the image's effective width and height.
type BaseRotation int

const (
	Base0   BaseRotation = 0
	Base90  BaseRotation = 90
	Base180 BaseRotation = 180
	Base270 BaseRotation = 270
)

// Swapped reports whether this base rotation swaps the image axes.
func (b BaseRotation) Swapped() bool { return b == Base90 || b == Base270 }

// Plus returns the base rotation advanced by deg (a multiple of 90).
func (b BaseRotation) Plus(deg int) BaseRotation {
	return BaseRotation(((int(b)+deg)%360 + 360) % 360)
}

// SizeMode tags how the crop size is derived.
type SizeMode int

const (
	// SizeDefault derives the crop from the largest inscribed rectangle for
	// the current rotation.
	SizeDefault SizeMode = iota
	// SizeExplicit uses the stored crop size, clamped on every change.
	SizeExplicit
)

// MaxFineRotation bounds the continuous rotation on top of the base.
const MaxFineRotation = 45.0

// State is one undoable cropper configuration. Whenever Mode is SizeExplicit
// the stored size already satisfies the minimum-size and containment
// constraints for the stored rotation; ClampCropDims enforces that before a
// state is staged.
type State struct {
	Rotation float64      // fine rotation, degrees in [-45, 45]
	Base     BaseRotation // 0/90/180/270
	Mode     SizeMode
	CropSize geom.Size // meaningful only in SizeExplicit mode
	Offset   geom.Point
}

// stateJSON is the wire shape: the default-size mode is encoded as a null
// cropSize, matching stored interaction snapshots.
type stateJSON struct {
	Rotation   float64      `json:"rotation"`
	Base       BaseRotation `json:"baseRotation"`
	CropSize   *geom.Size   `json:"cropSize"`
	CropOffset geom.Point   `json:"cropOffset"`
}

// MarshalJSON encodes the state with a null cropSize in default mode.
func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{Rotation: s.Rotation, Base: s.Base, CropOffset: s.Offset}
	if s.Mode == SizeExplicit {
		sz := s.CropSize
		out.CropSize = &sz
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire shape, mapping a null cropSize back to the
// default-size mode.
func (s *State) UnmarshalJSON(b []byte) error {
	var in stateJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*s = State{Rotation: in.Rotation, Base: in.Base, Offset: in.CropOffset}
	if in.CropSize != nil {
		s.Mode = SizeExplicit
		s.CropSize = *in.CropSize
	}
	return nil
}

// canonical normalizes a state for history equality: the rotation is rounded
// to the slider's 0.1 degree resolution, negative zeros are flattened and the
// crop size is zeroed in default mode so it cannot leak into comparisons.
func (s State) canonical() State {
	s.Rotation = math.Round(s.Rotation*10) / 10
	if s.Rotation == 0 {
		s.Rotation = 0 // strips -0
	}
	s.Offset.X = flatZero(s.Offset.X)
	s.Offset.Y = flatZero(s.Offset.Y)
	if s.Mode == SizeDefault {
		s.CropSize = geom.Size{}
	}
	return s
}

func flatZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// rotated reports whether two states differ in either rotation field.
func (s State) rotated(o State) bool {
	return s.Rotation != o.Rotation || s.Base != o.Base
}

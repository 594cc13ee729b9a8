/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cropper

import (
	"log/slog"
	"sync"
	"time"

	"gocrop/internal/geom"
	"gocrop/internal/history"
	applog "gocrop/internal/log"
)

// Action tags what a committed change primarily was.
type Action string

const (
	ActionCrop   Action = "crop"
	ActionRotate Action = "rotate"
)

// CropData is the committed crop rectangle, top-left relative to the
// effective image, in pixels.
type CropData struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RotationData is the committed rotation pair.
type RotationData struct {
	Rotation float64      `json:"rotation"`
	Base     BaseRotation `json:"baseRotation"`
}

// Change is emitted on every commit. Action is ActionRotate when either
// rotation field differs from the previous commit, ActionCrop otherwise.
type Change struct {
	Action   Action       `json:"action"`
	Crop     CropData     `json:"crop"`
	Rotation RotationData `json:"rotation"`
}

// Options configures a Cropper.
type Options struct {
	// MinWidth/MinHeight constrain every crop. Zero values disable the
	// minimum. Feasibility against the image dimensions is the caller's
	// configuration contract.
	MinWidth  float64
	MinHeight float64
	// CommitInterval is the debounce before a staged interaction becomes a
	// history entry; zero selects the default.
	CommitInterval time.Duration
	// OnChange receives every committed change. Debounced commits deliver it
	// from the timer goroutine.
	OnChange func(Change)
	// OnHistory fires whenever the undo/redo availability pair changes.
	OnHistory func(canUndo, canRedo bool)
}

// Cropper owns one image's interactive crop state and its history. All
// methods are safe for concurrent use, though a single UI goroutine is the
// expected caller.
type Cropper struct {
	mu   sync.Mutex
	opts Options

	imgW, imgH float64 // upright image dimensions, before base rotation

	com         *history.Committer[State]
	maxRotation float64
	last        State // previous committed state, for action tagging
	canUndo     bool
	canRedo     bool

	log *slog.Logger
}

// New creates a cropper for an image of the given upright dimensions.
func New(imgWidth, imgHeight float64, opts Options) *Cropper {
	hist := history.NewWithEqual(State{}, func(a, b State) bool {
		return a.canonical() == b.canonical()
	})
	c := &Cropper{
		opts: opts,
		imgW: imgWidth,
		imgH: imgHeight,
		com:  history.NewCommitter(hist, opts.CommitInterval),
		log:  applog.WithComponent("cropper"),
	}
	c.com.OnCommit = c.onCommit
	c.maxRotation = c.findMaxRotationLocked(State{})
	return c
}

// Close cancels any pending debounced commit.
func (c *Cropper) Close() { c.com.Stop() }

// State returns the staged (live display) state.
func (c *Cropper) State() State { return c.com.History().Staged() }

// Committed returns the last committed state.
func (c *Cropper) Committed() State { return c.com.History().Committed() }

// History returns a snapshot of the undo/redo timeline.
func (c *Cropper) History() history.Snapshot[State] { return c.com.History().Snapshot() }

// CanUndo reports whether an undo step is available.
func (c *Cropper) CanUndo() bool { return c.com.History().CanUndo() }

// CanRedo reports whether a redo step is available.
func (c *Cropper) CanRedo() bool { return c.com.History().CanRedo() }

// MaxRotation returns the current bound for the fine-rotation slider,
// degrees in [0, 45].
func (c *Cropper) MaxRotation() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxRotation
}

// EffectiveDims returns the image dimensions after the staged base rotation's
// axis swap.
func (c *Cropper) EffectiveDims() (w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveDimsLocked(c.com.History().Staged())
}

func (c *Cropper) effectiveDimsLocked(st State) (w, h float64) {
	if st.Base.Swapped() {
		return c.imgH, c.imgW
	}
	return c.imgW, c.imgH
}

// CropSizeOf resolves the effective crop dimensions of a state: the default
// inscribed rectangle, or the stored size re-clamped for the rotation.
func (c *Cropper) CropSizeOf(st State) geom.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cropSizeLocked(st)
}

func (c *Cropper) cropSizeLocked(st State) geom.Size {
	effW, effH := c.effectiveDimsLocked(st)
	if st.Mode == SizeDefault {
		return geom.ComputeCropSize(effW, effH, st.Rotation)
	}
	return geom.ClampCropDims(st.CropSize.Width, st.CropSize.Height, effW, effH, st.Rotation, c.opts.MinWidth, c.opts.MinHeight)
}

// CropRectOf converts a state into the top-left-relative crop rectangle.
func (c *Cropper) CropRectOf(st State) CropData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cropRectLocked(st)
}

func (c *Cropper) cropRectLocked(st State) CropData {
	effW, effH := c.effectiveDimsLocked(st)
	size := c.cropSizeLocked(st)
	return CropData{
		X:      effW/2 + st.Offset.X - size.Width/2,
		Y:      effH/2 + st.Offset.Y - size.Height/2,
		Width:  size.Width,
		Height: size.Height,
	}
}

// SetImage swaps the underlying image and discards state and history.
func (c *Cropper) SetImage(width, height float64) {
	c.mu.Lock()
	c.imgW, c.imgH = width, height
	c.com.Reset(State{})
	c.last = State{}
	c.maxRotation = c.findMaxRotationLocked(State{})
	c.mu.Unlock()
	c.notifyHistory()
	c.log.Debug("image set", slog.Float64("w", width), slog.Float64("h", height))
}

// SetMinimums updates the minimum crop constraints and re-derives the
// rotation bound.
func (c *Cropper) SetMinimums(minWidth, minHeight float64) {
	c.mu.Lock()
	c.opts.MinWidth = minWidth
	c.opts.MinHeight = minHeight
	st := c.com.History().Staged()
	c.maxRotation = c.findMaxRotationLocked(st)
	st = c.clampToMaxRotationLocked(st)
	c.mu.Unlock()
	c.com.Stage(st)
}

// Drag is one pointer gesture delta, either moving the crop or resizing it
// by a corner.
type Drag interface{ isDrag() }

// MoveDrag shifts the whole crop rectangle.
type MoveDrag struct{ DX, DY float64 }

func (MoveDrag) isDrag() {}

// Corner identifies the handle of a resize gesture.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// signs returns the handle's direction from the crop center.
func (cr Corner) signs() (sx, sy float64) {
	switch cr {
	case TopLeft:
		return -1, -1
	case TopRight:
		return 1, -1
	case BottomLeft:
		return -1, 1
	default:
		return 1, 1
	}
}

// CornerDrag resizes the crop by dragging one handle.
type CornerDrag struct {
	Corner Corner
	DX, DY float64
}

func (CornerDrag) isDrag() {}

// ApplyDrag stages the result of a drag delta. The staged state becomes a
// history entry once the debounce interval elapses.
func (c *Cropper) ApplyDrag(d Drag) State {
	c.mu.Lock()
	st := c.com.History().Staged()
	effW, effH := c.effectiveDimsLocked(st)

	switch d := d.(type) {
	case MoveDrag:
		size := c.cropSizeLocked(st)
		st.Offset = geom.ClampOffset(
			st.Offset.X+d.DX, st.Offset.Y+d.DY,
			size.Width, size.Height, effW, effH, st.Rotation,
		)
	case CornerDrag:
		size := c.cropSizeLocked(st)
		sx, sy := d.Corner.signs()
		st.Mode = SizeExplicit
		st.CropSize = geom.ClampCropDims(
			size.Width+sx*d.DX, size.Height+sy*d.DY,
			effW, effH, st.Rotation, c.opts.MinWidth, c.opts.MinHeight,
		)
		// Keep the opposite corner anchored, then pull back inside.
		st.Offset = geom.ClampOffset(
			st.Offset.X+(st.CropSize.Width-size.Width)/2*sx,
			st.Offset.Y+(st.CropSize.Height-size.Height)/2*sy,
			st.CropSize.Width, st.CropSize.Height, effW, effH, st.Rotation,
		)
		c.maxRotation = c.findMaxRotationLocked(st)
		st = c.clampToMaxRotationLocked(st)
	}
	c.mu.Unlock()
	c.com.Stage(st)
	return st
}

// SetRotation stages a new fine rotation, clamped into the current slider
// bound. An explicit crop is re-clamped for the new angle.
func (c *Cropper) SetRotation(deg float64) State {
	c.mu.Lock()
	st := c.com.History().Staged()
	if deg > c.maxRotation {
		deg = c.maxRotation
	} else if deg < -c.maxRotation {
		deg = -c.maxRotation
	}
	st.Rotation = deg
	st = c.reclampLocked(st)
	c.mu.Unlock()
	c.com.Stage(st)
	return st
}

// RotateBase90 advances the base rotation by 90 degrees and commits
// immediately, bypassing the debounce.
func (c *Cropper) RotateBase90() State {
	c.mu.Lock()
	st := c.com.History().Staged()
	st.Base = st.Base.Plus(90)
	if st.Mode == SizeExplicit {
		st.CropSize = geom.Size{Width: st.CropSize.Height, Height: st.CropSize.Width}
	}
	// The crop follows the image content through the quarter turn.
	st.Offset = geom.Point{X: -st.Offset.Y, Y: st.Offset.X}
	st = c.reclampLocked(st)
	c.maxRotation = c.findMaxRotationLocked(st)
	st = c.clampToMaxRotationLocked(st)
	c.mu.Unlock()
	c.com.CommitNow(st)
	c.notifyHistory()
	return st
}

// RotateBase180 flips the image upside down and commits immediately.
func (c *Cropper) RotateBase180() State {
	c.mu.Lock()
	st := c.com.History().Staged()
	st.Base = st.Base.Plus(180)
	st.Offset = geom.Point{X: -st.Offset.X, Y: -st.Offset.Y}
	st = c.reclampLocked(st)
	c.mu.Unlock()
	c.com.CommitNow(st)
	c.notifyHistory()
	return st
}

// ResetState commits the initial state immediately; the reset itself is
// undoable.
func (c *Cropper) ResetState() State {
	c.mu.Lock()
	c.maxRotation = c.findMaxRotationLocked(State{})
	c.mu.Unlock()
	c.com.CommitNow(State{})
	c.notifyHistory()
	return State{}
}

// Undo cancels any pending commit and steps back one entry.
func (c *Cropper) Undo() (State, bool) {
	st, ok := c.com.Undo()
	if ok {
		c.mu.Lock()
		c.last = st
		c.maxRotation = c.findMaxRotationLocked(st)
		c.mu.Unlock()
		c.notifyHistory()
		c.log.Debug("undo", slog.Float64("rotation", st.Rotation))
	}
	return st, ok
}

// Redo cancels any pending commit and steps forward one entry.
func (c *Cropper) Redo() (State, bool) {
	st, ok := c.com.Redo()
	if ok {
		c.mu.Lock()
		c.last = st
		c.maxRotation = c.findMaxRotationLocked(st)
		c.mu.Unlock()
		c.notifyHistory()
		c.log.Debug("redo", slog.Float64("rotation", st.Rotation))
	}
	return st, ok
}

// Flush commits whatever is staged right away, as if the debounce had
// elapsed. Mainly useful when tearing down.
func (c *Cropper) Flush() { c.com.Flush() }

// reclampLocked re-derives an explicit crop's dimensions and the offset for
// the state's rotation so the stored-state invariant holds.
func (c *Cropper) reclampLocked(st State) State {
	effW, effH := c.effectiveDimsLocked(st)
	if st.Mode == SizeExplicit {
		st.CropSize = geom.ClampCropDims(
			st.CropSize.Width, st.CropSize.Height,
			effW, effH, st.Rotation, c.opts.MinWidth, c.opts.MinHeight,
		)
	}
	size := c.cropSizeLocked(st)
	st.Offset = geom.ClampOffset(st.Offset.X, st.Offset.Y, size.Width, size.Height, effW, effH, st.Rotation)
	return st
}

func (c *Cropper) findMaxRotationLocked(st State) float64 {
	effW, effH := c.effectiveDimsLocked(st)
	var custom *geom.Size
	if st.Mode == SizeExplicit {
		sz := st.CropSize
		custom = &sz
	}
	return geom.FindMaxRotation(effW, effH, custom, c.opts.MinWidth, c.opts.MinHeight)
}

// clampToMaxRotationLocked pulls the stored rotation back into the slider
// bound after the bound shrank.
func (c *Cropper) clampToMaxRotationLocked(st State) State {
	if st.Rotation > c.maxRotation {
		st.Rotation = c.maxRotation
	} else if st.Rotation < -c.maxRotation {
		st.Rotation = -c.maxRotation
	}
	return st
}

// onCommit runs for every commit that changed the timeline, including
// debounced ones arriving from the timer goroutine.
func (c *Cropper) onCommit(st State) {
	c.mu.Lock()
	prev := c.last
	c.last = st
	change := Change{
		Action:   ActionCrop,
		Crop:     c.cropRectLocked(st),
		Rotation: RotationData{Rotation: st.Rotation, Base: st.Base},
	}
	if st.rotated(prev) {
		change.Action = ActionRotate
	}
	cb := c.opts.OnChange
	c.mu.Unlock()
	if cb != nil {
		cb(change)
	}
	c.notifyHistory()
}

// notifyHistory emits the availability callback when the pair changed.
func (c *Cropper) notifyHistory() {
	c.mu.Lock()
	cu := c.com.History().CanUndo()
	cr := c.com.History().CanRedo()
	changed := cu != c.canUndo || cr != c.canRedo
	c.canUndo, c.canRedo = cu, cr
	cb := c.opts.OnHistory
	c.mu.Unlock()
	if changed && cb != nil {
		cb(cu, cr)
	}
}

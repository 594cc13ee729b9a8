/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cropper

import (
	"sync"
	"testing"
	"time"

	"gocrop/internal/geom"
)

const testInterval = 25 * time.Millisecond

func settle() { time.Sleep(4 * testInterval) }

func newTestCropper(opts Options) *Cropper {
	if opts.CommitInterval == 0 {
		opts.CommitInterval = testInterval
	}
	if opts.MinWidth == 0 {
		opts.MinWidth = 50
	}
	if opts.MinHeight == 0 {
		opts.MinHeight = 50
	}
	return New(800, 600, opts)
}

func TestStagedVsCommitted(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	c.SetRotation(10)
	if got := c.State().Rotation; got != 10 {
		t.Fatalf("staged rotation = %v, want 10", got)
	}
	if got := c.Committed().Rotation; got != 0 {
		t.Fatalf("committed rotation changed before debounce: %v", got)
	}
	if c.CanUndo() {
		t.Fatalf("CanUndo true before any commit")
	}
}

func TestDebouncedRotationBecomesOneEntry(t *testing.T) {
	c := newTestCropper(Options{})
	defer c.Close()

	for _, deg := range []float64{2, 4, 6, 8} {
		c.SetRotation(deg)
	}
	settle()
	if got := c.Committed().Rotation; got != 8 {
		t.Fatalf("committed rotation = %v, want 8", got)
	}
	snap := c.History()
	if len(snap.Past) != 1 {
		t.Fatalf("slider gesture produced %d entries, want 1", len(snap.Past))
	}
}

func TestChangeActionTagging(t *testing.T) {
	var mu sync.Mutex
	var actions []Action
	c := newTestCropper(Options{OnChange: func(ch Change) {
		mu.Lock()
		actions = append(actions, ch.Action)
		mu.Unlock()
	}})
	defer c.Close()

	c.SetRotation(5)
	settle()
	c.ApplyDrag(MoveDrag{DX: 20, DY: 10})
	settle()
	c.RotateBase90()

	mu.Lock()
	defer mu.Unlock()
	want := []Action{ActionRotate, ActionCrop, ActionRotate}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("actions[%d] = %v, want %v", i, actions[i], want[i])
		}
	}
}

func TestHistoryAvailabilityEvents(t *testing.T) {
	var mu sync.Mutex
	type pair struct{ undo, redo bool }
	var pairs []pair
	c := newTestCropper(Options{OnHistory: func(u, r bool) {
		mu.Lock()
		pairs = append(pairs, pair{u, r})
		mu.Unlock()
	}})
	defer c.Close()

	c.RotateBase90() // -> {true,false}
	c.Undo()         // -> {false,true}
	c.Redo()         // -> {true,false}

	mu.Lock()
	defer mu.Unlock()
	want := []pair{{true, false}, {false, true}, {true, false}}
	if len(pairs) != len(want) {
		t.Fatalf("pairs = %v, want %v", pairs, want)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Fatalf("pairs[%d] = %v, want %v", i, pairs[i], want[i])
		}
	}
}

func TestUndoCancelsPendingSliderCommit(t *testing.T) {
	c := newTestCropper(Options{})
	defer c.Close()

	c.RotateBase180() // committed entry
	c.SetRotation(12) // pending debounce
	st, ok := c.Undo()
	if !ok || st.Base != Base0 {
		t.Fatalf("undo: got %+v ok=%v", st, ok)
	}
	settle()
	if got := c.Committed(); got.Rotation != 0 || got.Base != Base0 {
		t.Fatalf("stale slider commit resurrected state: %+v", got)
	}
	if !c.CanRedo() {
		t.Fatalf("redo lost after undo")
	}
}

func TestRotateBase90SwapsEffectiveDims(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	w, h := c.EffectiveDims()
	if w != 800 || h != 600 {
		t.Fatalf("initial dims %vx%v", w, h)
	}
	st := c.RotateBase90()
	if st.Base != Base90 {
		t.Fatalf("base = %v, want 90", st.Base)
	}
	w, h = c.EffectiveDims()
	if w != 600 || h != 800 {
		t.Fatalf("dims after quarter turn %vx%v, want 600x800", w, h)
	}
	// Four quarter turns come back around.
	c.RotateBase90()
	c.RotateBase90()
	if st = c.RotateBase90(); st.Base != Base0 {
		t.Fatalf("base after full turn = %v, want 0", st.Base)
	}
}

func TestCornerDragMakesCropExplicitAndClamped(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	st := c.ApplyDrag(CornerDrag{Corner: BottomRight, DX: -200, DY: -150})
	if st.Mode != SizeExplicit {
		t.Fatalf("corner drag did not switch to explicit size: %+v", st)
	}
	if st.CropSize.Width < 50 || st.CropSize.Height < 50 {
		t.Fatalf("explicit crop below minimums: %+v", st.CropSize)
	}
	if st.CropSize.Width >= 800 {
		t.Fatalf("shrinking drag grew the crop: %+v", st.CropSize)
	}
	if !geom.Inside(st.Offset, st.CropSize.Width, st.CropSize.Height, 800, 600, st.Rotation) {
		t.Fatalf("explicit crop escapes containment: %+v", st)
	}
}

func TestMoveDragStaysContained(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	c.SetRotation(10)
	st := c.ApplyDrag(MoveDrag{DX: 5000, DY: -4000})
	size := c.CropSizeOf(st)
	if !geom.Inside(st.Offset, size.Width, size.Height, 800, 600, st.Rotation) {
		t.Fatalf("moved crop escapes containment: %+v", st)
	}
}

func TestSetRotationClampsToSliderBound(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	max := c.MaxRotation()
	if max <= 0 || max > 45 {
		t.Fatalf("max rotation %v out of range", max)
	}
	st := c.SetRotation(90)
	if st.Rotation != max {
		t.Fatalf("rotation %v not clamped to bound %v", st.Rotation, max)
	}
	st = c.SetRotation(-90)
	if st.Rotation != -max {
		t.Fatalf("rotation %v not clamped to -%v", st.Rotation, max)
	}
}

func TestTighterMinimumsShrinkRotationBound(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	loose := c.MaxRotation()
	c.SetMinimums(580, 580)
	tight := c.MaxRotation()
	if tight > loose {
		t.Fatalf("bound grew from %v to %v under tighter minimums", loose, tight)
	}
	// The staged rotation is pulled back inside the new bound.
	if st := c.State(); st.Rotation > tight || st.Rotation < -tight {
		t.Fatalf("staged rotation %v outside bound %v", st.Rotation, tight)
	}
}

func TestSetImageResetsEverything(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	c.RotateBase90()
	c.SetImage(1024, 768)
	if c.CanUndo() || c.CanRedo() {
		t.Fatalf("history survived image change")
	}
	if st := c.State(); st != (State{}) {
		t.Fatalf("state not reset on image change: %+v", st)
	}
	if w, h := c.EffectiveDims(); w != 1024 || h != 768 {
		t.Fatalf("new image dims not adopted: %vx%v", w, h)
	}
}

func TestResetStateIsUndoable(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	c.RotateBase90()
	c.ResetState()
	if got := c.Committed(); got != (State{}) {
		t.Fatalf("reset did not commit initial state: %+v", got)
	}
	st, ok := c.Undo()
	if !ok || st.Base != Base90 {
		t.Fatalf("reset not undoable: %+v ok=%v", st, ok)
	}
}

func TestCropRectDerivation(t *testing.T) {
	c := newTestCropper(Options{CommitInterval: time.Hour})
	defer c.Close()

	rect := c.CropRectOf(State{})
	if rect.X != 0 || rect.Y != 0 || rect.Width != 800 || rect.Height != 600 {
		t.Fatalf("default rect = %+v, want full image", rect)
	}
	st := State{Mode: SizeExplicit, CropSize: geom.Size{Width: 200, Height: 100}, Offset: geom.Point{X: 50, Y: -25}}
	rect = c.CropRectOf(st)
	if rect.X != 800/2+50-100 || rect.Y != 600/2-25-50 {
		t.Fatalf("rect origin = %+v", rect)
	}
	if rect.Width != 200 || rect.Height != 100 {
		t.Fatalf("rect size = %+v", rect)
	}
}

func TestCommittingSameSliderValueAddsNoEntry(t *testing.T) {
	c := newTestCropper(Options{})
	defer c.Close()

	c.SetRotation(7)
	settle()
	c.SetRotation(7)
	settle()
	snap := c.History()
	if len(snap.Past) != 1 {
		t.Fatalf("repeated slider value minted %d entries, want 1", len(snap.Past))
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history provides a linear undo/redo timeline with a staged
// (live, uncommitted) value alongside the committed one, plus a debounced
// commit scheduler that turns continuous interaction into discrete entries.
package history

import (
	"reflect"
	"sync"
)

// Snapshot is a copy of the timeline at one instant.
type Snapshot[T any] struct {
	Past    []T
	Present T
	Future  []T
}

// History keeps the committed timeline and the staged value.
// It is safe for concurrent use.
//
// The staged value tracks the most recent Stage call and is re-synced to the
// committed value by Undo, Redo and Reset. Committing a value equal to the
// present one is a no-op, so repeated slider values or a no-op drag never
// mint duplicate entries.
type History[T any] struct {
	mu      sync.Mutex
	past    []T
	present T
	future  []T
	staged  T
	equal   func(a, b T) bool
}

// New creates a history whose staged and committed values start at initial.
// Commit deduplication uses reflect.DeepEqual.
func New[T any](initial T) *History[T] {
	return NewWithEqual(initial, func(a, b T) bool { return reflect.DeepEqual(a, b) })
}

// NewWithEqual creates a history with a custom equality predicate for commit
// deduplication.
func NewWithEqual[T any](initial T, equal func(a, b T) bool) *History[T] {
	return &History[T]{present: initial, staged: initial, equal: equal}
}

// Stage sets the live value without touching the timeline.
func (h *History[T]) Stage(v T) {
	h.mu.Lock()
	h.staged = v
	h.mu.Unlock()
}

// Commit promotes the staged value into the timeline. It reports whether the
// timeline changed; a value equal to the present one is dropped.
func (h *History[T]) Commit() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.commitLocked(h.staged)
}

// CommitValue stages v and commits it in one step.
func (h *History[T]) CommitValue(v T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.staged = v
	return h.commitLocked(v)
}

func (h *History[T]) commitLocked(v T) bool {
	if h.equal(v, h.present) {
		return false
	}
	h.past = append(h.past, h.present)
	h.present = v
	// Any new commit invalidates the redo branch.
	h.future = nil
	return true
}

// Undo steps the present back one entry and syncs the staged value to it.
// It reports the new present and whether anything happened.
func (h *History[T]) Undo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.past) == 0 {
		return h.present, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]T{h.present}, h.future...)
	h.present = prev
	h.staged = prev
	return prev, true
}

// Redo steps the present forward one entry and syncs the staged value to it.
func (h *History[T]) Redo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.future) == 0 {
		return h.present, false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	h.present = next
	h.staged = next
	return next, true
}

// Reset discards the timeline and sets both staged and present to v.
func (h *History[T]) Reset(v T) {
	h.mu.Lock()
	h.past = nil
	h.future = nil
	h.present = v
	h.staged = v
	h.mu.Unlock()
}

// Staged returns the live value.
func (h *History[T]) Staged() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.staged
}

// Committed returns the present (last committed) value.
func (h *History[T]) Committed() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.present
}

// CanUndo reports whether Undo would change the present.
func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo reports whether Redo would change the present.
func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}

// Snapshot returns an independent copy of the timeline.
func (h *History[T]) Snapshot() Snapshot[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot[T]{
		Past:    append([]T(nil), h.past...),
		Present: h.present,
		Future:  append([]T(nil), h.future...),
	}
}

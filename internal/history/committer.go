/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"sync"
	"time"
)

// DefaultCommitInterval is the debounce interval used when a Committer is
// created with a non-positive one.
const DefaultCommitInterval = 500 * time.Millisecond

// Committer wraps a History with a single cancellable debounce timer. Every
// Stage restarts the interval; when it elapses uninterrupted the staged value
// is committed. Discrete actions use CommitNow to bypass the debounce, and
// Undo/Redo/Reset cancel any pending timer before mutating — a stale deferred
// commit must never resurrect a state the user just undid.
//
// The timer, the staged cell and the committed cell share one owner and one
// lock, so cancellation is atomic with respect to every mutation.
type Committer[T any] struct {
	mu       sync.Mutex
	hist     *History[T]
	timer    *time.Timer
	gen      uint64
	interval time.Duration

	// OnCommit, when set, is invoked after every commit that changed the
	// timeline, with the newly committed value. Debounced commits invoke it
	// from the timer goroutine.
	OnCommit func(T)
}

// NewCommitter wraps hist with a debounce of the given interval.
func NewCommitter[T any](hist *History[T], interval time.Duration) *Committer[T] {
	if interval <= 0 {
		interval = DefaultCommitInterval
	}
	return &Committer[T]{hist: hist, interval: interval}
}

// History returns the wrapped timeline.
func (c *Committer[T]) History() *History[T] { return c.hist }

// Stage sets the live value and restarts the debounce timer.
func (c *Committer[T]) Stage(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist.Stage(v)
	c.cancelLocked()
	gen := c.gen
	c.timer = time.AfterFunc(c.interval, func() { c.fire(gen) })
}

// fire commits the staged value when the debounce interval elapses. A timer
// whose generation was invalidated while it was already in flight is dropped.
func (c *Committer[T]) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	changed := c.hist.Commit()
	cb := c.OnCommit
	v := c.hist.Committed()
	c.mu.Unlock()
	if changed && cb != nil {
		cb(v)
	}
}

// CommitNow cancels any pending timer and commits v immediately.
// It reports whether the timeline changed.
func (c *Committer[T]) CommitNow(v T) bool {
	c.mu.Lock()
	c.cancelLocked()
	changed := c.hist.CommitValue(v)
	cb := c.OnCommit
	c.mu.Unlock()
	if changed && cb != nil {
		cb(v)
	}
	return changed
}

// Flush cancels any pending timer and commits whatever is staged.
func (c *Committer[T]) Flush() bool {
	c.mu.Lock()
	c.cancelLocked()
	changed := c.hist.Commit()
	cb := c.OnCommit
	v := c.hist.Committed()
	c.mu.Unlock()
	if changed && cb != nil {
		cb(v)
	}
	return changed
}

// Undo cancels any pending commit and steps the timeline back.
func (c *Committer[T]) Undo() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	return c.hist.Undo()
}

// Redo cancels any pending commit and steps the timeline forward.
func (c *Committer[T]) Redo() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	return c.hist.Redo()
}

// Reset cancels any pending commit and restarts the timeline at v.
func (c *Committer[T]) Reset(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.hist.Reset(v)
}

// Stop cancels any pending commit without touching the timeline.
func (c *Committer[T]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Committer[T]) cancelLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

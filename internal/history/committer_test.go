/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"testing"
	"time"
)

const testInterval = 25 * time.Millisecond

// settle waits comfortably past the debounce interval.
func settle() { time.Sleep(4 * testInterval) }

func TestDebounceCommitsAfterInterval(t *testing.T) {
	c := NewCommitter(New(counter{Count: 0}), testInterval)
	c.Stage(counter{Count: 5})
	if got := c.History().Committed(); got.Count != 0 {
		t.Fatalf("committed before interval elapsed: %+v", got)
	}
	settle()
	if got := c.History().Committed(); got.Count != 5 {
		t.Fatalf("debounced commit missing: %+v", got)
	}
	if !c.History().CanUndo() {
		t.Fatalf("debounced commit did not create a history entry")
	}
}

func TestRapidStagesCoalesceIntoOneEntry(t *testing.T) {
	c := NewCommitter(New(counter{Count: 0}), testInterval)
	for i := 1; i <= 10; i++ {
		c.Stage(counter{Count: i})
		time.Sleep(testInterval / 5)
	}
	settle()
	snap := c.History().Snapshot()
	if snap.Present.Count != 10 {
		t.Fatalf("present = %+v, want last staged value", snap.Present)
	}
	if len(snap.Past) != 1 {
		t.Fatalf("rapid stages produced %d entries, want 1", len(snap.Past))
	}
}

func TestCommitNowBypassesDebounce(t *testing.T) {
	c := NewCommitter(New(counter{Count: 0}), time.Hour)
	c.Stage(counter{Count: 3})
	if !c.CommitNow(counter{Count: 4}) {
		t.Fatalf("immediate commit reported no change")
	}
	if got := c.History().Committed(); got.Count != 4 {
		t.Fatalf("immediate commit missing: %+v", got)
	}
	// The pending debounce for count 3 must be dead.
	settle()
	snap := c.History().Snapshot()
	if len(snap.Past) != 1 || snap.Present.Count != 4 {
		t.Fatalf("stale debounce fired after CommitNow: %+v", snap)
	}
}

func TestUndoCancelsPendingCommit(t *testing.T) {
	c := NewCommitter(New(counter{Count: 0}), testInterval)
	c.CommitNow(counter{Count: 1})
	c.Stage(counter{Count: 2})
	got, ok := c.Undo()
	if !ok || got.Count != 0 {
		t.Fatalf("undo: got %+v ok=%v, want 0", got, ok)
	}
	settle()
	// The staged value 2 must not have been resurrected by the timer.
	if cur := c.History().Committed(); cur.Count != 0 {
		t.Fatalf("stale deferred commit overwrote post-undo state: %+v", cur)
	}
	if !c.History().CanRedo() {
		t.Fatalf("redo branch lost after cancelled timer")
	}
}

func TestFlushCommitsStagedImmediately(t *testing.T) {
	c := NewCommitter(New(counter{Count: 0}), time.Hour)
	c.Stage(counter{Count: 6})
	if !c.Flush() {
		t.Fatalf("flush reported no change")
	}
	if got := c.History().Committed(); got.Count != 6 {
		t.Fatalf("flush did not commit staged value: %+v", got)
	}
}

func TestOnCommitFiresOnlyOnChange(t *testing.T) {
	c := NewCommitter(New(counter{Count: 0}), testInterval)
	var calls []int
	done := make(chan struct{}, 8)
	c.OnCommit = func(v counter) {
		calls = append(calls, v.Count)
		done <- struct{}{}
	}
	c.CommitNow(counter{Count: 1})
	<-done
	c.CommitNow(counter{Count: 1}) // duplicate, no event
	c.Stage(counter{Count: 2})
	<-done
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Fatalf("unexpected commit callbacks: %v", calls)
	}
}

func TestResetCancelsTimer(t *testing.T) {
	c := NewCommitter(New(counter{Count: 0}), testInterval)
	c.Stage(counter{Count: 5})
	c.Reset(counter{Count: 0})
	settle()
	if c.History().CanUndo() {
		t.Fatalf("timer survived reset and committed")
	}
}

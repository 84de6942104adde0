// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import "sync"

// message is a single completed inbound unit, framed off the wire by a
// receiver goroutine and queued for the application goroutine to consume.
type message struct {
	count   int32
	tag     int32
	payload []byte // len == count; nil when count == 0
	next    *message
}

// isMatching reports whether m satisfies a Recv predicate for (count, tag).
// tag == anyTag (0) matches any tag on the wire; 0 itself is never a wire tag
// (spec.md §9, "Tag reservations").
func (m *message) isMatching(count, tag int32) bool {
	return m.count == count && (m.tag == tag || tag == anyTag)
}

const anyTag int32 = 0

// wanted is the match table's single-slot wait descriptor. source == -1
// means no application goroutine is currently parked; this mirrors
// original_source/mimpi.c's wanted_source sentinel rather than introducing a
// tagged-union WaitState, to stay invariant-for-invariant with the spec
// (see SPEC_FULL.md §5).
type wanted struct {
	source int32
	count  int32
	tag    int32
}

// matchTable is the structure shared by every receiver goroutine and the one
// application goroutine permitted to call into this package at a time
// (spec.md §3, "Match table"). A single mutex protects all fields; the
// condition variable is signaled exactly when wanted.source transitions from
// a valid source to -1.
type matchTable struct {
	mu   sync.Mutex
	cond *sync.Cond

	heads, tails     []*message // per-source FIFO, head-to-tail arrival order
	receiverFinished []bool

	wanted wanted
}

func newMatchTable(worldSize int) *matchTable {
	mt := &matchTable{
		heads:            make([]*message, worldSize),
		tails:            make([]*message, worldSize),
		receiverFinished: make([]bool, worldSize),
		wanted:           wanted{source: -1},
	}
	mt.cond = sync.NewCond(&mt.mu)
	return mt
}

// enqueue appends m to source's queue and, if the parked application
// goroutine (if any) is waiting on source and m satisfies its predicate,
// wakes it. Called by a receiver goroutine with no locks held.
func (mt *matchTable) enqueue(source int32, m *message) {
	mt.mu.Lock()
	if mt.tails[source] != nil {
		mt.tails[source].next = m
	} else {
		mt.heads[source] = m
	}
	mt.tails[source] = m

	if mt.wanted.source == source && m.isMatching(mt.wanted.count, mt.wanted.tag) {
		mt.wanted.source = -1
		mt.cond.Signal()
	}
	mt.mu.Unlock()
}

// markFinished records that source's receiver observed end-of-stream. If the
// application goroutine is parked waiting on source, it is woken so it can
// discover the finish and return ErrRemoteFinished. Called by a receiver
// goroutine with no locks held, exactly once per source.
func (mt *matchTable) markFinished(source int32) {
	mt.mu.Lock()
	mt.receiverFinished[source] = true
	if mt.wanted.source == source {
		mt.wanted.source = -1
		mt.cond.Signal()
	}
	mt.mu.Unlock()
}

// popMatching unlinks and returns the first message in source's queue
// satisfying (count, tag), or nil if none does. Caller must hold mt.mu.
func (mt *matchTable) popMatching(source, count, tag int32) *message {
	var prev *message
	cur := mt.heads[source]
	for cur != nil && !cur.isMatching(count, tag) {
		prev = cur
		cur = cur.next
	}
	if cur == nil {
		return nil
	}
	if prev == nil {
		mt.heads[source] = cur.next
	} else {
		prev.next = cur.next
	}
	if cur.next == nil {
		mt.tails[source] = prev
	}
	cur.next = nil
	return cur
}

// recv implements spec.md §4.3's algorithm: scan, and if nothing matches yet
// and the source hasn't finished, park on the condition variable until a
// matching arrival or a finish wakes this goroutine, then rescan.
func (mt *matchTable) recv(source, count, tag int32) (*message, Retcode) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if m := mt.popMatching(source, count, tag); m != nil {
		return m, Success
	}
	if mt.receiverFinished[source] {
		return nil, ErrRemoteFinished
	}

	mt.wanted = wanted{source: source, count: count, tag: tag}
	for mt.wanted.source != -1 {
		mt.cond.Wait()
	}

	if m := mt.popMatching(source, count, tag); m != nil {
		return m, Success
	}
	return nil, ErrRemoteFinished
}

// drain frees any residual queued messages for every source. Called once
// from Finalize after every receiver goroutine has been joined.
func (mt *matchTable) drain() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for i := range mt.heads {
		mt.heads[i] = nil
		mt.tails[i] = nil
	}
}

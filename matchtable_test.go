// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMatchTableImmediateMatch(t *testing.T) {
	mt := newMatchTable(2)
	mt.enqueue(1, &message{count: 3, tag: 7, payload: []byte{1, 2, 3}})

	m, rc := mt.recv(1, 3, 7)
	require.Equal(t, Success, rc)
	require.Equal(t, []byte{1, 2, 3}, m.payload)
}

func TestMatchTableWildcardTagMatchesOldest(t *testing.T) {
	mt := newMatchTable(2)
	mt.enqueue(1, &message{count: 2, tag: 5, payload: []byte{0xAA, 0xBB}})
	mt.enqueue(1, &message{count: 2, tag: 9, payload: []byte{0xCC, 0xDD}})

	// tag=0 (anyTag) on Recv matches the oldest queued message whose count
	// equals the requested count, regardless of its own tag (spec.md §8).
	m, rc := mt.recv(1, 2, anyTag)
	require.Equal(t, Success, rc)
	require.Equal(t, []byte{0xAA, 0xBB}, m.payload)

	m2, rc2 := mt.recv(1, 2, anyTag)
	require.Equal(t, Success, rc2)
	require.Equal(t, []byte{0xCC, 0xDD}, m2.payload)
}

func TestMatchTableCountMismatchLeavesMessageQueued(t *testing.T) {
	mt := newMatchTable(2)
	mt.enqueue(1, &message{count: 1024, tag: 1, payload: make([]byte, 1024)})
	mt.enqueue(1, &message{count: 1, tag: 2, payload: []byte{0x42}})

	// spec.md §8 scenario 6: Recv(count=1) matches the 1-byte message even
	// though the 1024-byte message arrived first; count mismatch means the
	// bigger message is skipped over, not consumed.
	m, rc := mt.recv(1, 1, anyTag)
	require.Equal(t, Success, rc)
	require.Equal(t, []byte{0x42}, m.payload)

	m2, rc2 := mt.recv(1, 1024, anyTag)
	require.Equal(t, Success, rc2)
	require.Len(t, m2.payload, 1024)
}

func TestMatchTableFinishedBeforeRecvReturnsImmediately(t *testing.T) {
	mt := newMatchTable(2)
	mt.markFinished(1)

	_, rc := mt.recv(1, 10, 5)
	require.Equal(t, ErrRemoteFinished, rc)
}

func TestMatchTableFinishedWhileParkedWakesRecv(t *testing.T) {
	mt := newMatchTable(2)

	done := make(chan Retcode, 1)
	go func() {
		_, rc := mt.recv(1, 10, 5)
		done <- rc
	}()

	// Give the goroutine time to park on the condition variable before the
	// finish signal arrives.
	time.Sleep(20 * time.Millisecond)
	mt.markFinished(1)

	select {
	case rc := <-done:
		require.Equal(t, ErrRemoteFinished, rc)
	case <-time.After(2 * time.Second):
		t.Fatal("recv did not wake up after markFinished")
	}
}

func TestMatchTableEnqueueWakesParkedRecv(t *testing.T) {
	mt := newMatchTable(2)

	type result struct {
		m  *message
		rc Retcode
	}
	done := make(chan result, 1)
	go func() {
		m, rc := mt.recv(1, 3, 7)
		done <- result{m, rc}
	}()

	time.Sleep(20 * time.Millisecond)
	mt.enqueue(1, &message{count: 3, tag: 7, payload: []byte{9, 8, 7}})

	select {
	case r := <-done:
		require.Equal(t, Success, r.rc)
		require.Equal(t, []byte{9, 8, 7}, r.m.payload)
	case <-time.After(2 * time.Second):
		t.Fatal("recv did not wake up after enqueue")
	}
}

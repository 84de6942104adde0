// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

// Reserved tags for collective operations (spec.md §3): never used for
// application traffic, so collective and point-to-point messages can never
// be confused with each other even though they share the same pipes.
const (
	tagBarrier int = -1
	tagBcast   int = -2
	tagReduce  int = -3
)

// Barrier blocks every rank until all ranks have entered Barrier. The tree is
// rooted at rank 0 unconditionally (spec.md §4.4): up-wave collects a
// zero-length message from each existing child, then (if non-root) forwards
// one to the parent; down-wave mirrors that from the root back out.
func Barrier() Retcode {
	return activeRuntime().barrier()
}

func (rt *Runtime) barrier() Retcode {
	t := newTree(rt.worldSize, rt.rank, 0)

	if rc := rt.recvFromChildren(t, tagBarrier); rc != Success {
		return rc
	}
	if t.hasParent {
		rt.send(nil, 0, t.parent, tagBarrier)
		if rc := rt.recv(nil, 0, t.parent, tagBarrier); rc != Success {
			return rc
		}
	}
	t.forEachChild(func(child int) { rt.send(nil, 0, child, tagBarrier) })
	return Success
}

// recvFromChildren receives one zero-length message from each existing
// child, aborting on the first ErrRemoteFinished (spec.md §7's propagation
// policy: "the first Recv that returns REMOTE_FINISHED causes the entire
// collective to return REMOTE_FINISHED ... without attempting the remaining
// steps").
func (rt *Runtime) recvFromChildren(t tree, tag int) Retcode {
	rc := Success
	t.forEachChild(func(child int) {
		if rc != Success {
			return
		}
		rc = rt.recv(nil, 0, child, tag)
	})
	return rc
}

// Bcast distributes count bytes of buf from root to every rank. On entry,
// buf holds the payload on root and is undefined elsewhere; on a successful
// return, buf holds the payload on every rank (spec.md §4.4).
func Bcast(buf []byte, count, root int) Retcode {
	return activeRuntime().bcast(buf, count, root)
}

func (rt *Runtime) bcast(buf []byte, count, root int) Retcode {
	t := newTree(rt.worldSize, rt.rank, root)

	// Up-wave: readiness only, no data.
	if rc := rt.recvFromChildren(t, tagBcast); rc != Success {
		return rc
	}
	if t.hasParent {
		rt.send(nil, 0, t.parent, tagBcast)
		if rc := rt.recv(buf, count, t.parent, tagBcast); rc != Success {
			return rc
		}
	}

	// Down-wave: forward the now-populated buffer to every existing child.
	t.forEachChild(func(child int) { rt.send(buf, count, child, tagBcast) })
	return Success
}

// Reduce folds count-byte buffers elementwise across all ranks using op, in
// a left-child-then-right-child order, depositing the root's final result in
// recvBuf. Every rank must supply sendBuf; only root's recvBuf is written
// (spec.md §4.4, §8 scenario 5).
func Reduce(sendBuf, recvBuf []byte, count int, op Op, root int) Retcode {
	return activeRuntime().reduce(sendBuf, recvBuf, count, op, root)
}

func (rt *Runtime) reduce(sendBuf, recvBuf []byte, count int, op Op, root int) Retcode {
	t := newTree(rt.worldSize, rt.rank, root)

	acc := make([]byte, count)
	copy(acc, sendBuf[:count])
	childBuf := make([]byte, count)

	rc := Success
	t.forEachChild(func(child int) {
		if rc != Success {
			return
		}
		childRC := rt.recv(childBuf, count, child, tagReduce)
		if childRC != Success {
			rc = childRC
			return
		}
		applyOp(acc, childBuf, op)
	})
	if rc != Success {
		return rc
	}

	if t.hasParent {
		rt.send(acc, count, t.parent, tagReduce)
		if rc := rt.recv(nil, 0, t.parent, tagReduce); rc != Success {
			return rc
		}
	} else {
		copy(recvBuf[:count], acc)
	}

	t.forEachChild(func(child int) { rt.send(nil, 0, child, tagReduce) })
	return Success
}

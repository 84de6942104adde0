// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

// validateTarget implements the shared validation for Send's destination and
// Recv's source: spec.md §4.2/§4.3, "same validation errors as Send".
func (rt *Runtime) validateTarget(peer int) Retcode {
	if peer == rt.rank {
		return ErrAttemptedSelfOp
	}
	if peer < 0 || peer >= rt.worldSize {
		return ErrNoSuchRank
	}
	return Success
}

// Send blocks until count bytes from buf have been written to destination,
// framed as spec.md §4.1 describes. count may be 0, in which case buf is
// ignored. tag is application-chosen; tags -1, -2, -3 are reserved for
// Barrier/Bcast/Reduce and 0 is reserved as Recv's wildcard — Send never
// validates this (spec.md §9: "enforcement is not required").
func Send(buf []byte, count, destination, tag int) Retcode {
	rt := activeRuntime()
	return rt.send(buf, count, destination, tag)
}

func (rt *Runtime) send(buf []byte, count, destination, tag int) Retcode {
	if rc := rt.validateTarget(destination); rc != Success {
		return rc
	}

	chunkSize := rt.chunkSize
	firstPayloadLen := firstChunkPayloadLen(chunkSize)
	first := make([]byte, chunkSize)
	encodeHeader(first, int32(count), int32(tag))

	chunkStart := minInt(count, firstPayloadLen)
	if chunkStart > 0 {
		copy(first[headerLen:headerLen+chunkStart], buf[:chunkStart])
	}

	f := rt.writeFiles[destination]
	if err := writeFull(f, first); err != nil {
		if err == errPeerClosed {
			return ErrRemoteFinished
		}
		fatalf(rt, "send[%d->%d]: %v", rt.rank, destination, err)
	}

	for chunkStart < count {
		chunkLen := minInt(count-chunkStart, chunkSize)
		if err := writeFull(f, buf[chunkStart:chunkStart+chunkLen]); err != nil {
			if err == errPeerClosed {
				return ErrRemoteFinished
			}
			fatalf(rt, "send[%d->%d]: %v", rt.rank, destination, err)
		}
		chunkStart += chunkLen
	}

	return Success
}

// Recv blocks until a message from source matching (count, tag) arrives, or
// source's receiver observes end-of-stream. tag == 0 matches any tag on the
// oldest queued message from source whose count equals count exactly
// (spec.md §4.3, §8).
func Recv(buf []byte, count, source, tag int) Retcode {
	rt := activeRuntime()
	return rt.recv(buf, count, source, tag)
}

func (rt *Runtime) recv(buf []byte, count, source, tag int) Retcode {
	if rc := rt.validateTarget(source); rc != Success {
		return rc
	}

	m, rc := rt.matchTable.recv(int32(source), int32(count), int32(tag))
	if rc != Success {
		return rc
	}
	if count > 0 {
		copy(buf[:count], m.payload)
	}
	return Success
}

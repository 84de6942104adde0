// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import (
	"os"

	"github.com/sirupsen/logrus"
)

// runReceiver is the per-peer receiver goroutine body. It implements the
// framing algorithm of spec.md §4.1: block-read a fixed-size first chunk,
// determine count/tag, read continuation chunks carrying min(remaining, C)
// bytes each (the padding ambiguity in spec.md §9 resolved per its own
// mandate), and enqueue the assembled Message. It terminates cleanly on
// end-of-stream and marks the source finished either way.
//
// Grounded line-for-line on original_source/mimpi.c's receiver().
func runReceiver(rt *Runtime, peer int) {
	log := rt.log.WithFields(logrus.Fields{"rank": rt.rank, "peer": peer})
	defer rt.wg.Done()

	chunkSize := rt.chunkSize
	firstPayloadLen := firstChunkPayloadLen(chunkSize)
	first := make([]byte, chunkSize)
	f := rt.readFiles[peer]

	for {
		if err := readFull(f, first); err != nil {
			if err == errPeerClosed {
				log.Debug("receiver: peer closed stream")
			} else {
				log.WithError(err).Error("receiver: fatal read error")
				fatalf(rt, "receiver[%d<-%d]: %v", rt.rank, peer, err)
			}
			break
		}

		count, tag := decodeHeader(first)

		var payload []byte
		if count > 0 {
			payload = make([]byte, count)
			chunkStart := int32(minInt(int(count), firstPayloadLen))
			copy(payload[:chunkStart], first[headerLen:headerLen+int(chunkStart)])

			closed := false
			for chunkStart < count {
				chunkLen := int32(minInt(int(count-chunkStart), chunkSize))
				if err := readFull(f, payload[chunkStart:chunkStart+chunkLen]); err != nil {
					if err == errPeerClosed {
						log.Debug("receiver: peer closed mid-message")
					} else {
						log.WithError(err).Error("receiver: fatal read error")
						fatalf(rt, "receiver[%d<-%d]: %v", rt.rank, peer, err)
					}
					closed = true
					break
				}
				chunkStart += chunkLen
			}
			if closed {
				break
			}
		}

		rt.matchTable.enqueue(int32(peer), &message{count: count, tag: tag, payload: payload})
	}

	rt.matchTable.markFinished(int32(peer))
}

// closeQuietly closes f and discards the error. It is a tiny indirection kept
// so Finalize's teardown order (close both ends, then join) reads the same way
// for every peer regardless of which side owns which *os.File.
func closeQuietly(f *os.File) {
	_ = f.Close()
}

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// isPeerClosed reports whether err indicates the remote end of a pipe is
// gone: a clean end-of-stream, or the kernel signaling a broken pipe / reset
// connection on write. This is the single place that maps OS-level signals
// to the library's ErrRemoteFinished semantics (spec.md §7).
func isPeerClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, os.ErrClosed)
}

// readFull blocks until exactly len(p) bytes have been read from f, or the
// peer closes, or an unexpected fault occurs. It mirrors the retry-until-
// done discipline of the teacher framer's readOnce, generalized from
// "retry on ErrWouldBlock" to "retry until full transfer" because this
// package's pipes are always blocking (spec.md Non-goals forbid non-blocking
// operations).
//
// A zero-byte read at offset 0 (p is empty) returns immediately with no
// error: spec.md's count=0 messages never touch the wire beyond their
// header.
func readFull(f *os.File, p []byte) error {
	off := 0
	for off < len(p) {
		n, err := f.Read(p[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			if isPeerClosed(err) {
				return errPeerClosed
			}
			return err
		}
		if n == 0 {
			// A conforming io.Reader never returns (0, nil) on a non-empty
			// buffer; guard against one that does so this loop cannot spin.
			return io.ErrNoProgress
		}
	}
	return nil
}

// writeFull blocks until exactly len(p) bytes have been written to f, or the
// peer closes, or an unexpected fault occurs.
func writeFull(f *os.File, p []byte) error {
	off := 0
	for off < len(p) {
		n, err := f.Write(p[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			if isPeerClosed(err) {
				return errPeerClosed
			}
			return err
		}
		if n == 0 {
			return io.ErrNoProgress
		}
	}
	return nil
}

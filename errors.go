// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import (
	"errors"
	"fmt"
)

// Retcode is the return value of every blocking operation (Send, Recv,
// Barrier, Bcast, Reduce). Retcode implements error so callers may treat a
// non-success value as an ordinary Go error, but SUCCESS is also exposed as
// Success for explicit comparison.
type Retcode uint8

const (
	// Success reports that the operation completed as specified.
	Success Retcode = iota
	// ErrAttemptedSelfOp reports that the caller addressed its own rank.
	ErrAttemptedSelfOp
	// ErrNoSuchRank reports a destination/source outside [0, WorldSize()).
	ErrNoSuchRank
	// ErrRemoteFinished reports that the peer's stream closed before (or
	// while) the operation was pending.
	ErrRemoteFinished
)

func (r Retcode) String() string {
	switch r {
	case Success:
		return "MIMPI_SUCCESS"
	case ErrAttemptedSelfOp:
		return "MIMPI_ERROR_ATTEMPTED_SELF_OP"
	case ErrNoSuchRank:
		return "MIMPI_ERROR_NO_SUCH_RANK"
	case ErrRemoteFinished:
		return "MIMPI_ERROR_REMOTE_FINISHED"
	default:
		return fmt.Sprintf("MIMPI_RETCODE(%d)", uint8(r))
	}
}

// Error implements the error interface. Success.Error() returns the empty
// string but callers should prefer comparing against Success directly.
func (r Retcode) Error() string {
	if r == Success {
		return ""
	}
	return r.String()
}

// ErrNotInitialized is returned by Finalize, and is the panic value of every
// other runtime-dependent operation, when the runtime handle has not been
// constructed or has already been torn down.
var ErrNotInitialized = errors.New("mimpi: runtime not initialized")

// errPeerClosed is the internal sentinel produced by pipeio when a peer's
// pipe endpoint reports end-of-stream or a broken pipe. It is translated to
// ErrRemoteFinished at the Send/Recv boundary and never escapes this package.
var errPeerClosed = errors.New("mimpi: peer pipe closed")

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

const maxWorldSize = 256

// envWorldSize, envRank, and the envReadDsc/envWriteDsc name formats are the
// environment contract from spec.md §6, published by cmd/mimpirun.
const (
	envWorldSize = "MIMPI_WORLD_SIZE"
	envRank      = "MIMPI_RANK"
	envReadDsc   = "MIMPI_READ_DSC_%d"
	envWriteDsc  = "MIMPI_WRITE_DSC_%d"
)

// Runtime is the process-wide messaging handle: world identity, pipe
// endpoints, the match table, and the receiver goroutines' lifecycle. Per
// spec.md §9 ("encapsulate ... in a single runtime handle ... even if exposed
// through a thin module-level accessor"), the package-level functions Init,
// Finalize, WorldSize, WorldRank, Send, Recv, Barrier, Bcast, and Reduce are
// thin wrappers around a single package-level *Runtime.
type Runtime struct {
	worldSize int
	rank      int
	chunkSize int

	readFiles  []*os.File // readFiles[p]: read end of the pipe from peer p
	writeFiles []*os.File // writeFiles[p]: write end of the pipe to peer p

	matchTable *matchTable
	wg         sync.WaitGroup

	log  *logrus.Logger
	opts Options
}

var (
	currentMu sync.Mutex
	current   *Runtime
)

// Init discovers the world size, this process's rank, and its pipe endpoints
// from the environment (published by cmd/mimpirun, see spec.md §6), then
// spawns one receiver goroutine per peer. Init must be called at most once
// before any other operation in this package.
//
// enableDeadlockDetection is accepted and stored but not acted upon: deadlock
// detection is a declared Non-goal (spec.md §1, §9).
func Init(enableDeadlockDetection bool, opts ...Option) error {
	o := defaultOptions
	o.EnableDeadlockDetection = enableDeadlockDetection
	for _, fn := range opts {
		fn(&o)
	}
	if o.chunkSize <= headerLen {
		o.chunkSize = defaultChunkSize
	}

	worldSize, err := strconv.Atoi(os.Getenv(envWorldSize))
	if err != nil || worldSize < 1 || worldSize > maxWorldSize {
		return fmt.Errorf("mimpi: invalid %s=%q", envWorldSize, os.Getenv(envWorldSize))
	}
	rank, err := strconv.Atoi(os.Getenv(envRank))
	if err != nil || rank < 0 || rank >= worldSize {
		return fmt.Errorf("mimpi: invalid %s=%q", envRank, os.Getenv(envRank))
	}

	rt := &Runtime{
		worldSize:  worldSize,
		rank:       rank,
		chunkSize:  o.chunkSize,
		readFiles:  make([]*os.File, worldSize),
		writeFiles: make([]*os.File, worldSize),
		matchTable: newMatchTable(worldSize),
		log:        o.Logger,
		opts:       o,
	}

	for i := 0; i < worldSize; i++ {
		if i == rank {
			continue
		}
		rfd, err := envDescriptor(envReadDsc, i)
		if err != nil {
			return err
		}
		wfd, err := envDescriptor(envWriteDsc, i)
		if err != nil {
			return err
		}
		rt.readFiles[i] = os.NewFile(uintptr(rfd), fmt.Sprintf("mimpi-read-%d", i))
		rt.writeFiles[i] = os.NewFile(uintptr(wfd), fmt.Sprintf("mimpi-write-%d", i))
	}

	for i := 0; i < worldSize; i++ {
		if i == rank {
			continue
		}
		rt.wg.Add(1)
		go runReceiver(rt, i)
	}

	currentMu.Lock()
	current = rt
	currentMu.Unlock()
	return nil
}

func envDescriptor(format string, peer int) (int, error) {
	name := fmt.Sprintf(format, peer)
	v := os.Getenv(name)
	fd, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("mimpi: invalid %s=%q", name, v)
	}
	return fd, nil
}

// Finalize closes every pipe endpoint (unblocking receivers on read, and
// signaling EOF to peers on write), joins every receiver goroutine, and frees
// any residual queued messages. Finalize must be called exactly once.
func Finalize() error {
	currentMu.Lock()
	rt := current
	current = nil
	currentMu.Unlock()

	if rt == nil {
		return ErrNotInitialized
	}

	for i := 0; i < rt.worldSize; i++ {
		if i == rt.rank {
			continue
		}
		closeQuietly(rt.readFiles[i])
		closeQuietly(rt.writeFiles[i])
	}

	rt.wg.Wait()
	rt.matchTable.drain()
	return nil
}

// WorldSize returns the number of processes in the world.
func WorldSize() int {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		return 0
	}
	return current.worldSize
}

// WorldRank returns this process's rank.
func WorldRank() int {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		return -1
	}
	return current.rank
}

// activeRuntime returns the active Runtime, panicking if Init has not been
// called. Calling any operation before Init or after Finalize is undefined
// per spec.md §4.5; panicking here gives a clear diagnostic instead of a nil
// dereference deep inside the match table.
func activeRuntime() *Runtime {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		panic(ErrNotInitialized)
	}
	return current
}

// fatalf logs a structured diagnostic and aborts the process, mirroring the
// C original's ASSERT_SYS_OK contract: any unexpected system fault (anything
// other than a peer closing its pipe) is unrecoverable (spec.md §7).
func fatalf(rt *Runtime, format string, args ...interface{}) {
	rt.log.WithField("rank", rt.rank).Fatalf(format, args...)
}

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

// newTestWorld builds n *Runtime values wired together by real os.Pipe pairs,
// bypassing Init/environment parsing entirely (Init is a thin, one-shot
// wrapper around exactly this construction — see runtime.go). Each Runtime
// stands in for one rank's goroutine, letting tests exercise the full
// receiver/match-table/Send/Recv/collective stack without spawning real OS
// processes. Returned runtimes must be torn down with closeTestWorld.
func newTestWorld(t *testing.T, n int) []*Runtime {
	t.Helper()

	// pipes[i][j]: directed channel i -> j (i writes, j reads).
	type ends struct{ r, w *os.File }
	pipes := make([][]ends, n)
	for i := range pipes {
		pipes[i] = make([]ends, n)
		for j := range pipes[i] {
			if i == j {
				continue
			}
			r, w, err := os.Pipe()
			if err != nil {
				t.Fatalf("os.Pipe: %v", err)
			}
			pipes[i][j] = ends{r: r, w: w}
		}
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	rts := make([]*Runtime, n)
	for rank := 0; rank < n; rank++ {
		rt := &Runtime{
			worldSize:  n,
			rank:       rank,
			chunkSize:  defaultChunkSize,
			readFiles:  make([]*os.File, n),
			writeFiles: make([]*os.File, n),
			matchTable: newMatchTable(n),
			log:        logger,
		}
		for peer := 0; peer < n; peer++ {
			if peer == rank {
				continue
			}
			rt.readFiles[peer] = pipes[peer][rank].r
			rt.writeFiles[peer] = pipes[rank][peer].w
		}
		rts[rank] = rt
	}

	for rank := 0; rank < n; rank++ {
		for peer := 0; peer < n; peer++ {
			if peer == rank {
				continue
			}
			rts[rank].wg.Add(1)
			go runReceiver(rts[rank], peer)
		}
	}

	return rts
}

// closeTestWorld tears down every Runtime built by newTestWorld, mirroring
// Finalize's close-both-ends-then-join-then-drain order.
func closeTestWorld(t *testing.T, rts []*Runtime) {
	t.Helper()
	for _, rt := range rts {
		for peer := range rt.readFiles {
			if rt.readFiles[peer] != nil {
				closeQuietly(rt.readFiles[peer])
			}
			if rt.writeFiles[peer] != nil {
				closeQuietly(rt.writeFiles[peer])
			}
		}
	}
	for _, rt := range rts {
		rt.wg.Wait()
		rt.matchTable.drain()
	}
}

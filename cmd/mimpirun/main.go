// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command mimpirun is the launcher for a fixed-size group of sibling
// processes sharing a mimpi.Runtime (spec.md §6).
//
// Usage: mimpirun W program [args...]
//
// mimpirun builds a full mesh of W*(W-1) unidirectional OS pipes, starts W
// copies of program (each receiving the shared args), and publishes each
// child's pipe endpoints and world identity through the environment
// variables MIMPI_WORLD_SIZE, MIMPI_RANK, MIMPI_READ_DSC_<i>, and
// MIMPI_WRITE_DSC_<i>.
//
// Unlike the original C launcher (which forks and relocates descriptors with
// raw dup2 into a dense [20, ...) band after scrubbing all inherited fds),
// this rewrite uses exec.Cmd.ExtraFiles, which already guarantees every
// passed-through file lands at a stable, densely-assigned descriptor number
// in the child (3, 4, 5, ...) — see DESIGN.md's cmd/mimpirun/main.go entry.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/sirupsen/logrus"
)

const (
	envWorldSize = "MIMPI_WORLD_SIZE"
	envRank      = "MIMPI_RANK"
	envReadDsc   = "MIMPI_READ_DSC_%d"
	envWriteDsc  = "MIMPI_WRITE_DSC_%d"
)

// pipeEnds holds the read and write *os.File for one directed pipe. r is
// read by the receiving rank, w is written to by the sending rank.
type pipeEnds struct {
	r, w *os.File
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(log, os.Args[1:]); err != nil {
		log.WithError(err).Fatal("mimpirun: fatal")
	}
}

func run(log *logrus.Logger, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: mimpirun W program [args...]")
	}
	worldSize, err := strconv.Atoi(args[0])
	if err != nil || worldSize < 1 {
		return fmt.Errorf("invalid world size %q", args[0])
	}
	progName := args[1]
	progArgs := args[2:]

	// pipes[i][j] is the directed channel FROM rank i TO rank j: i writes,
	// j reads. pipes[i][i] is unused.
	pipes := make([][]pipeEnds, worldSize)
	for i := range pipes {
		pipes[i] = make([]pipeEnds, worldSize)
	}
	for i := 0; i < worldSize; i++ {
		for j := 0; j < worldSize; j++ {
			if i == j {
				continue
			}
			r, w, err := os.Pipe()
			if err != nil {
				return fmt.Errorf("mimpirun: creating pipe (%d->%d): %w", i, j, err)
			}
			pipes[i][j] = pipeEnds{r: r, w: w}
		}
	}

	cmds := make([]*exec.Cmd, worldSize)
	for rank := 0; rank < worldSize; rank++ {
		cmd := exec.Command(progName, progArgs...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		cmd.Env = append(os.Environ(),
			fmt.Sprintf("%s=%d", envWorldSize, worldSize),
			fmt.Sprintf("%s=%d", envRank, rank),
		)

		for peer := 0; peer < worldSize; peer++ {
			if peer == rank {
				continue
			}
			// Peer writes to rank on pipes[peer][rank]; rank reads it.
			readFD := appendExtraFile(cmd, pipes[peer][rank].r)
			// Rank writes to peer on pipes[rank][peer]; peer reads it.
			writeFD := appendExtraFile(cmd, pipes[rank][peer].w)

			cmd.Env = append(cmd.Env,
				fmt.Sprintf(envReadDsc+"=%d", peer, readFD),
				fmt.Sprintf(envWriteDsc+"=%d", peer, writeFD),
			)
		}
		cmds[rank] = cmd
	}

	for rank, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("mimpirun: starting rank %d: %w", rank, err)
		}
	}

	// The parent does not participate in the mesh; close every endpoint so
	// each child's peers observe EOF/broken-pipe exactly when the other
	// children (not the launcher) close theirs.
	for i := 0; i < worldSize; i++ {
		for j := 0; j < worldSize; j++ {
			if i == j {
				continue
			}
			_ = pipes[i][j].r.Close()
			_ = pipes[i][j].w.Close()
		}
	}

	var firstErr error
	for rank, cmd := range cmds {
		if err := cmd.Wait(); err != nil {
			log.WithError(err).WithField("rank", rank).Warn("mimpirun: child exited with error")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// appendExtraFile appends f to cmd.ExtraFiles and returns the descriptor
// number it will have inside the child (3 for the first entry, 4 for the
// second, and so on — see the os/exec.Cmd.ExtraFiles doc comment).
func appendExtraFile(cmd *exec.Cmd, f *os.File) int {
	cmd.ExtraFiles = append(cmd.ExtraFiles, f)
	return 3 + len(cmd.ExtraFiles) - 1
}

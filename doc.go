// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mimpi is a minimal point-to-point and collective message-passing
// library for a fixed-size group of sibling processes interconnected by a full
// mesh of anonymous unidirectional OS pipes.
//
// Semantics and design:
//   - Each process in the world discovers its rank and pipe endpoints from the
//     environment (see cmd/mimpirun) and spawns one receiver goroutine per peer.
//   - Send and Recv are blocking. Recv matches on (source, count, tag); tag 0 on
//     Recv means "any tag". A single mutex and condition variable (matchTable)
//     arbitrate between receiver goroutines and the one application goroutine
//     allowed to call into this package at a time.
//   - Barrier, Bcast, and Reduce are expressed purely in terms of Send/Recv over
//     a balanced binary tree of ranks, using reserved tags so collective traffic
//     never collides with application traffic.
//
// Wire format: every message is split into a 512-byte first chunk (8-byte
// little-endian header carrying count and tag, followed by up to 504 payload
// bytes) and zero or more continuation chunks of up to 512 raw payload bytes.
package mimpi

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import "encoding/binary"

const (
	// defaultChunkSize is the fixed wire chunk size C from spec.md §4.1.
	defaultChunkSize = 512
	// headerLen is the size in bytes of the first chunk's header: a
	// 4-byte little-endian count followed by a 4-byte little-endian tag.
	headerLen = 8
)

// firstChunkPayloadLen returns C-8, the number of payload bytes a first chunk
// of size chunkSize can carry alongside its header.
func firstChunkPayloadLen(chunkSize int) int {
	return chunkSize - headerLen
}

// encodeHeader writes count and tag as two little-endian int32 fields into
// the first headerLen bytes of dst. dst must be at least headerLen bytes.
func encodeHeader(dst []byte, count, tag int32) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(count))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(tag))
}

// decodeHeader reads count and tag from the first headerLen bytes of src.
func decodeHeader(src []byte) (count, tag int32) {
	count = int32(binary.LittleEndian.Uint32(src[0:4]))
	tag = int32(binary.LittleEndian.Uint32(src[4:8]))
	return count, tag
}

// minInt returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

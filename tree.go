// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

// tree embeds a balanced binary tree over [0, worldSize) rooted at root, as
// described in spec.md §4.4: logical index i = (rank - root + worldSize) %
// worldSize; logical children 2i+1, 2i+2; physical rank = logical index +
// root, mod worldSize. Factored into one helper shared by Barrier, Bcast,
// and Reduce — the C original (original_source/mimpi.c) recomputes this
// block inline in each of MIMPI_Bcast and MIMPI_Reduce.
type tree struct {
	worldSize                   int
	hasParent                   bool
	hasLeftChild, hasRightChild bool
	parent, leftChild, rightChild int
}

func newTree(worldSize, rank, root int) tree {
	idx := (rank - root + worldSize) % worldSize

	t := tree{
		worldSize:     worldSize,
		hasParent:     idx != 0,
		hasLeftChild:  2*idx+1 < worldSize,
		hasRightChild: 2*idx+2 < worldSize,
	}
	t.parent = ((idx-1)/2 + root) % worldSize
	t.leftChild = (2*idx+1+root) % worldSize
	t.rightChild = (2*idx+2+root) % worldSize
	return t
}

// forEachChild invokes fn once per existing child, left then right, matching
// the fold order spec.md §4.4 mandates for Reduce ("left child's contribution
// folded into the local value first, then right child's").
func (t tree) forEachChild(fn func(child int)) {
	if t.hasLeftChild {
		fn(t.leftChild)
	}
	if t.hasRightChild {
		fn(t.rightChild)
	}
}

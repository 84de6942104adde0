// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

// Op is a closed enumeration of Reduce's supported pairwise operators. User-
// defined operators are a declared Non-goal (spec.md §1, §9).
type Op uint8

const (
	Max Op = iota
	Min
	Sum
	Prod
)

// applyOp folds src into dst elementwise, in place, treating each byte as an
// 8-bit signed integer (spec.md §4.4: "treat each byte as an 8-bit signed
// integer and apply the operator pairwise"). Sum and Prod rely on Go's int8
// arithmetic already wrapping modulo 256, matching the spec's "modular 8-bit
// arithmetic (wraparound is defined, not an error)".
func applyOp(dst, src []byte, op Op) {
	for i := range dst {
		d, s := int8(dst[i]), int8(src[i])
		var r int8
		switch op {
		case Max:
			if d > s {
				r = d
			} else {
				r = s
			}
		case Min:
			if d < s {
				r = d
			} else {
				r = s
			}
		case Sum:
			r = d + s
		case Prod:
			r = d * s
		}
		dst[i] = byte(r)
	}
}

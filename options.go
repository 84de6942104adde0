// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import (
	"github.com/sirupsen/logrus"
)

// Options configures a Runtime constructed by Init.
type Options struct {
	// Logger receives structured diagnostics for receiver lifecycle events
	// and fatal system faults. Defaults to newDefaultLogger(): a
	// text-formatted logger writing to stderr.
	Logger *logrus.Logger

	// EnableDeadlockDetection is stored verbatim but not acted upon: deadlock
	// detection is a declared Non-goal of this library. It is kept on
	// Options (rather than folded away) so a future implementation has a
	// stable place to read it from.
	EnableDeadlockDetection bool

	// chunkSize overrides the wire chunk size. Zero means the default 512
	// bytes from spec.md §4.1. Unexported: only tests in this package need
	// to shrink it to exercise continuation-chunk logic with small buffers.
	chunkSize int
}

var defaultOptions = Options{
	Logger:    newDefaultLogger(),
	chunkSize: defaultChunkSize,
}

// Option configures Init. See WithLogger and WithChunkSize.
type Option func(*Options)

// WithLogger overrides the logger used for lifecycle and fault diagnostics.
func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithChunkSize overrides the wire chunk size. Exported for tests and for
// embedders who need a smaller chunk to exercise continuation-chunk framing
// deterministically; production callers should not need this.
func WithChunkSize(n int) Option {
	return func(o *Options) { o.chunkSize = n }
}

// Package ir defines the operation graph shared by the host GPU-style
// dialects and the target spirv dialect.
//
// A Program holds host functions plus kernel modules. Operations form
// a def-use graph inside each function body: every operand refers to a
// value defined by an earlier operation in the same or an earlier
// block, or to a function parameter. Rewrites preserve that ordering
// by sequencing replace-then-erase and by deferring erasure collected
// during traversals.
package ir

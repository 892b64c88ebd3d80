// Package la provides the dense matrix type and the execution-context
// abstraction it is built on.
//
// A Context is one compute backend instance (host memory or an accelerator
// device). Matrices are bound to the Context that allocated their storage;
// every operation validates shapes and context identity first and only then
// dispatches to the backend, so a failed call never mutates its operands.
//
// Storage is row-major float32. Every structural or arithmetic operation
// allocates a fresh result; two matrices never share a buffer.
package la

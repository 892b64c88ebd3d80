// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package la provides dense float32 matrices bound to a compute backend.
//
// # Overview
//
// A Context is one backend instance: host memory (backend/cpu) or an
// accelerator device (backend/webgpu). Every Matrix belongs to the Context
// that allocated it, and operations between matrices of different contexts
// fail with ErrContextMismatch.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/dense/backend/cpu"
//	    "github.com/born-ml/dense/la"
//	)
//
//	func main() {
//	    ctx := cpu.New()
//	    a, _ := la.FromRows(ctx, [][]float32{{1, 2}, {3, 4}})
//	    b, _ := la.Full(ctx, 2, 2, 1)
//	    c, _ := a.MatMul(b)
//	    fmt.Println(c)
//	}
//
// # Memory
//
// Matrix storage is returned to its context when the matrix becomes
// unreachable. Release hands it back immediately, which lets pooling
// accelerators reuse buffers inside training loops; Arena releases a group
// of temporaries in one call.
//
// Every operation returns a new matrix. Matrices never share storage.
package la

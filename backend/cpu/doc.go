// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host execution context.
//
// # Overview
//
// The host context keeps matrices in Go memory and needs no native
// libraries:
//   - matrix products go through gonum's BLAS (blas32.Gemm)
//   - element-wise kernels use chewxy/math32
//   - large row-parallel kernels are split across goroutines
//
// # Basic Usage
//
//	ctx := cpu.New()
//	m, _ := la.Full(ctx, 2, 3, 1)
//
// # Thread Safety
//
// A Context holds no mutable state after construction and is safe for
// concurrent use. Individual matrices are not.
package cpu

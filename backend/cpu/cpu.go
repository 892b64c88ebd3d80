// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/dense/internal/backend/cpu"
	"github.com/born-ml/dense/internal/parallel"
	"github.com/born-ml/dense/la"
)

// Context is the host execution context.
type Context = internalcpu.Context

// ParallelConfig controls how kernels are split across goroutines.
type ParallelConfig = parallel.Config

// Compile-time check that Context implements la.Context.
var _ la.Context = (*Context)(nil)

// New creates a host context sized to the CPU count.
func New() *Context {
	return internalcpu.New()
}

// NewWithConfig creates a host context with explicit parallelism settings.
//
// Example:
//
//	ctx := cpu.NewWithConfig(cpu.ParallelConfig{Enabled: false})
func NewWithConfig(cfg ParallelConfig) *Context {
	return internalcpu.NewWithConfig(cfg)
}

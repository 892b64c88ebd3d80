// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model stores trained networks on disk and loads them back.
//
// A model is a directory:
//
//	model.json            manifest: id, creation time, layer stack
//	data/weights.dense    checksummed float32 weight tensors
//
// Store replaces any previous model in the directory but refuses to clear
// a non-empty directory that does not hold one. Load appends the stored
// layers to a network, binding their weights to the given context, and
// leaves the network untouched when anything fails.
//
// Example:
//
//	if err := model.Store("models/digits", net); err != nil {
//	    log.Fatal(err)
//	}
//
//	restored := nn.NewNetwork()
//	if err := model.Load("models/digits", restored, cpu.New()); err != nil {
//	    log.Fatal(err)
//	}
package model

import (
	"github.com/born-ml/dense/internal/serialization"
	"github.com/born-ml/dense/la"
	"github.com/born-ml/dense/nn"
)

// Manifest describes a stored model.
type Manifest = serialization.Manifest

// LayerRecord describes one stored layer.
type LayerRecord = serialization.LayerRecord

// Errors reported while storing or loading models.
var (
	ErrNotModelDirectory  = serialization.ErrNotModelDirectory
	ErrChecksumMismatch   = serialization.ErrChecksumMismatch
	ErrUnknownActivation  = serialization.ErrUnknownActivation
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion
	ErrMissingTensor      = serialization.ErrMissingTensor
)

// Store writes the architecture and weights of net under path.
func Store(path string, net *nn.Network) error {
	return serialization.Store(path, net)
}

// Load appends the layers stored under path to net, binding their weights
// to ctx.
func Load(path string, net *nn.Network, ctx la.Context) error {
	return serialization.Load(path, net, ctx)
}

// ReadManifest returns the manifest of the model under path without
// reading any weights.
func ReadManifest(path string) (Manifest, error) {
	return serialization.ReadManifest(path)
}

// Package serialization stores and restores networks as model directories.
//
// A model directory contains:
//
//	model.json          manifest: format version, model ID, layer stack
//	data/weights.dense  weight matrices in the .dense binary format
//
// The .dense format:
//
//	Fixed header (64 bytes):
//	  0x00 [4 bytes: Magic "DENS"]
//	  0x04 [4 bytes: Version (uint32 LE)]
//	  0x08 [4 bytes: Flags (uint32 LE)]
//	  0x0C [4 bytes: Reserved]
//	  0x10 [8 bytes: Header Size (uint64 LE)]
//	  0x18 [8 bytes: Data Size (uint64 LE)]
//	  0x20 [32 bytes: SHA-256 of the data section]
//	[Header: JSON tensor index]
//	[Padding to a 64-byte boundary]
//	[Tensor data: float32 LE, row-major]
//
// Example usage:
//
//	if err := serialization.Store("models/digits", net); err != nil {
//	    log.Fatal(err)
//	}
//
//	restored := nn.NewNetwork()
//	if err := serialization.Load("models/digits", restored, ctx); err != nil {
//	    log.Fatal(err)
//	}
package serialization

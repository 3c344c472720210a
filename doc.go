// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package mdr implements a progressive, error-bounded refactoring engine for
// scientific floating-point arrays.
//
// An input array is decomposed into a hierarchy of resolution levels; each
// level's coefficients are bit-plane encoded into a set of independently
// decodable byte chunks; the chunks are then reordered globally by
// error-reduction-per-byte so that any prefix of the resulting stream is the
// smallest prefix that meets a given reconstruction error tolerance.
//
// The pipeline is split across sub-packages mirroring the collaborator
// contracts of the design this module implements:
//
//	decompose    in-place multilevel transform
//	interleave   per-level coefficient extraction
//	bitplane     bit-plane encoding (sign-magnitude, negabinary)
//	lossless     per-level lossless compression of bit-plane streams
//	errormetric  error estimators and collectors (max-error, squared-error)
//	order        global chunk-ordering scheduler
//	refactor     the driver tying A-F together plus the metadata codec
//	reconstruct  the inverse pipeline
//	backend      writer/retriever contracts and a file-backed implementation
//
// This package holds the shared array/dimension types and the error
// taxonomy used throughout.
package mdr

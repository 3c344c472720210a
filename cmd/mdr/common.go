package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/go-mdr/mdr"
	"github.com/go-mdr/mdr/errormetric"
	"github.com/go-mdr/mdr/lossless"
	"github.com/go-mdr/mdr/refactor"
)

func parseDims(s string) (mdr.Dims, error) {
	parts := strings.Split(s, ",")
	dims := make(mdr.Dims, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid dims %q: %w", s, err)
		}
		dims[i] = uint32(v)
	}
	return dims, nil
}

func parseLossless(s string) (lossless.Backend, error) {
	switch strings.ToLower(s) {
	case "store":
		return lossless.BackendStore, nil
	case "flate":
		return lossless.BackendFlate, nil
	case "xz":
		return lossless.BackendXZ, nil
	default:
		return 0, fmt.Errorf("unknown lossless backend %q", s)
	}
}

func parseEstimator(s string) (errormetric.Estimator, error) {
	switch strings.ToLower(s) {
	case "max":
		return errormetric.MaxErrorEstimator{}, nil
	case "squared":
		return errormetric.SquaredErrorEstimator{}, nil
	default:
		return nil, fmt.Errorf("unknown estimator %q", s)
	}
}

func elemBytesForType(elemType string) (int, error) {
	switch elemType {
	case "float32":
		return 4, nil
	case "float64":
		return 8, nil
	default:
		return 0, fmt.Errorf("unknown element type %q, want float32 or float64", elemType)
	}
}

func readFloat32File(path string) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%s: length %d is not a multiple of 4 bytes", path, len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

func readFloat64File(path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("%s: length %d is not a multiple of 8 bytes", path, len(raw))
	}
	out := make([]float64, len(raw)/8)
	for i := range out {
		bits := binary.LittleEndian.Uint64(raw[i*8:])
		out[i] = math.Float64frombits(bits)
	}
	return out, nil
}

func writeFloat32File(path string, data []float32) error {
	raw := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return os.WriteFile(path, raw, 0o644)
}

func writeFloat64File(path string, data []float64) error {
	raw := make([]byte, len(data)*8)
	for i, v := range data {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}
	return os.WriteFile(path, raw, 0o644)
}

func buildOptions(targetLevel, numPlanes uint8, negabinary bool, estimatorName, losslessName string, logger *logrus.Logger) (refactor.Options, error) {
	est, err := parseEstimator(estimatorName)
	if err != nil {
		return refactor.Options{}, err
	}
	backend, err := parseLossless(losslessName)
	if err != nil {
		return refactor.Options{}, err
	}
	return refactor.Options{
		TargetLevel: targetLevel,
		NumPlanes:   numPlanes,
		Negabinary:  negabinary,
		Estimator:   est,
		Lossless:    backend,
		Logger:      logger,
	}, nil
}

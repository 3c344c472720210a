package main

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-mdr/mdr/backend"
	"github.com/go-mdr/mdr/reconstruct"
	"github.com/go-mdr/mdr/refactor"
)

var (
	recTolerance   float64
	recLossless    string
	recEstimator   string
	recOut         string
	recElementType string
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <prefix>",
	Short: "Reconstruct an array from a refactored stream at a requested error tolerance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := args[0]

		elemBytes, err := elemBytesForType(recElementType)
		if err != nil {
			return err
		}

		r := backend.NewFileRetriever(prefix+".meta", prefix+".data")
		defer r.Close()

		metaBytes, err := r.LoadMetadata()
		if err != nil {
			return err
		}
		meta, _, err := refactor.UnmarshalMetadata(metaBytes, elemBytes)
		if err != nil {
			return err
		}

		k := reconstruct.SelectPrefix(meta.ErrorPerStep, recTolerance)

		var needed uint32
		consumed := make([]int, len(meta.LevelSizes))
		for i := 0; i <= k; i++ {
			lev := int(meta.ChunkOrder[i])
			j := consumed[lev]
			needed += meta.LevelSizes[lev][j]
			consumed[lev]++
		}

		packed, err := r.RetrieveComponents(needed)
		if err != nil {
			return err
		}

		opts, err := buildOptions(uint8(len(meta.LevelSizes)-1), uint8(len(meta.LevelSizes[0])), meta.Negabinary, recEstimator, recLossless, logrus.StandardLogger())
		if err != nil {
			return err
		}

		switch recElementType {
		case "float32":
			out, err := reconstruct.Reconstruct[float32](meta, packed, k, opts)
			if err != nil {
				return err
			}
			if err := writeFloat32File(recOut, out); err != nil {
				return err
			}
		case "float64":
			out, err := reconstruct.Reconstruct[float64](meta, packed, k, opts)
			if err != nil {
				return err
			}
			if err := writeFloat64File(recOut, out); err != nil {
				return err
			}
		}

		color.Green("reconstructed %s from %d/%d chunks (%d bytes retrieved), error bound <= %.6g",
			recOut, k+1, len(meta.ChunkOrder), needed, meta.ErrorPerStep[k])
		return nil
	},
}

func init() {
	reconstructCmd.Flags().Float64Var(&recTolerance, "tolerance", 0, "maximum acceptable accumulated error")
	reconstructCmd.Flags().StringVar(&recLossless, "lossless", "flate", "lossless backend the stream was written with: store, flate, xz")
	reconstructCmd.Flags().StringVar(&recEstimator, "estimator", "max", "error estimator family the stream was written with: max, squared")
	reconstructCmd.Flags().StringVar(&recOut, "out", "reconstructed.bin", "output file path")
	reconstructCmd.Flags().StringVar(&recElementType, "type", "float64", "element type: float32 or float64")
}

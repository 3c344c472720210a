package main

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-mdr/mdr/backend"
	"github.com/go-mdr/mdr/refactor"
)

var (
	refDimsStr     string
	refLevel       uint8
	refPlanes      uint8
	refNegabinary  bool
	refLossless    string
	refEstimator   string
	refOut         string
	refElementType string
)

var refactorCmd = &cobra.Command{
	Use:   "refactor <input>",
	Short: "Refactor a raw array into an error-bounded, progressively retrievable stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		dims, err := parseDims(refDimsStr)
		if err != nil {
			return err
		}
		elemBytes, err := elemBytesForType(refElementType)
		if err != nil {
			return err
		}
		opts, err := buildOptions(refLevel, refPlanes, refNegabinary, refEstimator, refLossless, logrus.StandardLogger())
		if err != nil {
			return err
		}

		w := backend.NewFileWriter(refOut+".meta", refOut+".data")

		var metaBytes []byte
		var packed []byte

		switch refElementType {
		case "float32":
			data, err := readFloat32File(input)
			if err != nil {
				return err
			}
			meta, p, err := refactor.Refactor(data, dims, opts)
			if err != nil {
				return err
			}
			metaBytes, err = meta.MarshalBinary(elemBytes)
			if err != nil {
				return err
			}
			packed = p
		case "float64":
			data, err := readFloat64File(input)
			if err != nil {
				return err
			}
			meta, p, err := refactor.Refactor(data, dims, opts)
			if err != nil {
				return err
			}
			metaBytes, err = meta.MarshalBinary(elemBytes)
			if err != nil {
				return err
			}
			packed = p
		}

		if err := w.WriteMetadata(metaBytes); err != nil {
			return err
		}
		if err := w.WriteComponents(packed); err != nil {
			return err
		}

		color.Green("wrote %s.meta (%d bytes) and %s.data (%d bytes)", refOut, len(metaBytes), refOut, len(packed))
		return nil
	},
}

func init() {
	refactorCmd.Flags().StringVar(&refDimsStr, "dims", "", "comma-separated array extents, e.g. 64,64,64")
	refactorCmd.Flags().Uint8Var(&refLevel, "level", 0, "target decomposition level")
	refactorCmd.Flags().Uint8Var(&refPlanes, "planes", 16, "number of bit-planes per level")
	refactorCmd.Flags().BoolVar(&refNegabinary, "negabinary", false, "use the negabinary bit-plane scheme instead of sign-magnitude")
	refactorCmd.Flags().StringVar(&refLossless, "lossless", "flate", "lossless backend: store, flate, xz")
	refactorCmd.Flags().StringVar(&refEstimator, "estimator", "max", "error estimator family: max, squared")
	refactorCmd.Flags().StringVar(&refOut, "out", "out", "output path prefix (writes <prefix>.meta and <prefix>.data)")
	refactorCmd.Flags().StringVar(&refElementType, "type", "float64", "element type: float32 or float64")
	refactorCmd.MarkFlagRequired("dims")
}

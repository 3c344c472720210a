package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-mdr/mdr/backend"
	"github.com/go-mdr/mdr/refactor"
)

var (
	batchConfigPath string
	batchConcurrent int
)

var batchCmd = &cobra.Command{
	Use:   "batch <glob>",
	Short: "Refactor every file matching a glob pattern concurrently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadBatchConfig(batchConfigPath)
		if err != nil {
			return err
		}

		matches, err := filepath.Glob(args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files matched %q", args[0])
		}

		dims, err := parseDims(cfg.Dims)
		if err != nil {
			return err
		}
		elemBytes, err := elemBytesForType(cfg.ElemType)
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(len(matches),
			progressbar.OptionSetDescription("refactoring"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(batchConcurrent)

		for _, path := range matches {
			path := path
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				opts, err := buildOptions(cfg.Level, cfg.Planes, cfg.Negabinary, cfg.Estimator, cfg.Lossless, logrus.StandardLogger())
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				outPrefix := filepath.Join(cfg.OutDir, filepath.Base(path))

				var metaBytes, packed []byte
				switch cfg.ElemType {
				case "float32":
					data, err := readFloat32File(path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					meta, p, err := refactor.Refactor(data, dims, opts)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					metaBytes, err = meta.MarshalBinary(elemBytes)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					packed = p
				case "float64":
					data, err := readFloat64File(path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					meta, p, err := refactor.Refactor(data, dims, opts)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					metaBytes, err = meta.MarshalBinary(elemBytes)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					packed = p
				}

				w := backend.NewFileWriter(outPrefix+".meta", outPrefix+".data")
				if err := w.WriteMetadata(metaBytes); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := w.WriteComponents(packed); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				bar.Add(1)
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchConfigPath, "config", "batch.yaml", "YAML config shared by every matched file")
	batchCmd.Flags().IntVar(&batchConcurrent, "concurrency", 4, "maximum number of files refactored at once")
}

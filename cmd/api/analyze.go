package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anime-shed/sharpness-inspector-go/internal/analyzer"
	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
	"github.com/anime-shed/sharpness-inspector-go/internal/service"
)

func newAnalyzeCmd() *cobra.Command {
	var threshold float64
	var multi bool
	var mapPath string

	cmd := &cobra.Command{
		Use:   "analyze <image> [--threshold <t>] [--multi] [--map <out.jpg>]",
		Short: "Score the sharpness of a local image and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.DefaultBlurThreshold
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			a, err := analyzer.NewBlurAnalyzer(analyzer.Config{
				Workers:        cfg.MaxWorkers,
				CanonicalSize:  cfg.CanonicalSize,
				MapJPEGQuality: cfg.BlurMapJPEGQuality,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AnalysisTimeout)
			defer cancel()

			var res *analyzer.Result
			if multi {
				res, err = a.AnalyzeMulti(ctx, data)
			} else {
				res, err = a.Analyze(ctx, data, threshold)
			}
			if err != nil {
				return err
			}

			if mapPath != "" {
				if err := os.WriteFile(mapPath, res.BlurMapJPEG, 0o644); err != nil {
					return fmt.Errorf("failed to write blur map: %w", err)
				}
				logger.WithField("path", mapPath).Info("Blur map written")
			}

			out := service.BlurResultFrom(res)
			out.BlurMap = ""

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 100, "Blur threshold on the 0..100 overall score (defaults to DEFAULT_BLUR_THRESHOLD)")
	cmd.Flags().BoolVar(&multi, "multi", false, "Report the per-method breakdown without classification")
	cmd.Flags().StringVar(&mapPath, "map", "", "Write the colorized blur map JPEG to this path")
	return cmd
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"labdiet/internal/adapter/csvfile"
	"labdiet/internal/app"
	"labdiet/internal/config"
	"labdiet/internal/domain"
	"labdiet/internal/extract"
	"labdiet/internal/generator"

	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the synthetic reference population and store it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			samples, _ := cmd.Flags().GetInt("samples")
			seed, _ := cmd.Flags().GetUint64("seed")
			out, _ := cmd.Flags().GetString("out")
			if !cmd.Flags().Changed("samples") {
				samples = cfg.DatasetSamples
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.DatasetSeed
			}

			if out != "" {
				if samples <= 0 {
					return app.ErrInvalidSampleCount
				}
				pop := generator.GenerateWithSeed(samples, seed)
				if err := csvfile.New(out).SavePopulation(cmd.Context(), pop); err != nil {
					return err
				}
				logger.Info().Str("path", out).Int("samples", pop.Len()).Uint64("seed", seed).Msg("population written")
				return nil
			}

			st, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.close() }()

			opts := datasetOptions(cfg)
			opts.Seed = seed
			stats, err := app.NewDatasetService(st.population, opts, logger).Regenerate(cmd.Context(), samples)
			if err != nil {
				return err
			}
			logger.Info().Str("store", cfg.Store).Int("samples", stats.Size).Uint64("seed", seed).Msg("population stored")
			return nil
		},
	}
	cmd.Flags().Int("samples", generator.DefaultSamples, "number of reference entries")
	cmd.Flags().Uint64("seed", generator.DefaultSeed, "generator seed")
	cmd.Flags().String("out", "", "write a CSV table to this path instead of the configured store")
	return cmd
}

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print a diet recommendation for the given lab values or reports",
		Example: `  labdiet recommend --field "Fasting Blood Sugar=250" --field "Thyroxine=1.1"
  labdiet recommend --report blood_sugar=sugar.pdf --report cholesterol=lipid.pdf --report thyroxine=t4.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldArgs, _ := cmd.Flags().GetStringArray("field")
			reportArgs, _ := cmd.Flags().GetStringArray("report")
			if len(fieldArgs) > 0 && len(reportArgs) > 0 {
				return errors.New("use either --field or --report, not both")
			}
			fields, err := parsePairs(fieldArgs)
			if err != nil {
				return err
			}
			reports, err := readReports(reportArgs)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			st, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.close() }()

			ctx := cmd.Context()
			dataset := app.NewDatasetService(st.population, datasetOptions(cfg), logger)
			if err := dataset.Init(ctx); err != nil {
				return err
			}
			recs := app.NewRecommendationService(dataset, st.analyses, logger)

			var a *domain.Analysis
			if len(reports) > 0 {
				res, err := recs.AnalyzeReports(ctx, reports)
				if err != nil {
					return err
				}
				a = res.Analysis
			} else {
				if a, err = recs.Recommend(ctx, fields, app.SourceCLI); err != nil {
					return err
				}
			}
			return printJSON(cmd, map[string]any{
				"extracted_data":       a.Profile.Labeled(),
				"defaulted":            a.Defaulted,
				"diet_recommendations": a.Plan,
			})
		},
	}
	cmd.Flags().StringArray("field", nil, `lab value as "Label=value" (repeatable)`)
	cmd.Flags().StringArray("report", nil, "report file as kind=path, kind one of blood_sugar, cholesterol, thyroxine (repeatable)")
	return cmd
}

func hashAdminKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-admin-key <key>",
		Short: "Print the bcrypt hash to use as ADMIN_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := app.HashAdminKey(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}

func readReports(args []string) (map[extract.ReportKind]string, error) {
	pairs, err := parsePairs(args)
	if err != nil {
		return nil, err
	}
	reports := make(map[extract.ReportKind]string, len(pairs))
	for name, path := range pairs {
		kind, err := extract.ParseReportKind(name)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		text, err := extract.DocumentText(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		reports[kind] = text
	}
	return reports, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

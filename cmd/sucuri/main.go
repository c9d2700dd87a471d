package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jademcosta/sucuri/pkg/app"
	"github.com/jademcosta/sucuri/pkg/bundle"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

const version = "0.1.0"

type rootOptions struct {
	configPath string
}

type compressOptions struct {
	targetKB int
	archive  string
	output   string
	deliver  bool
}

func main() {
	// A missing .env is fine, the environment is used as is.
	_ = godotenv.Load()

	err := newRootCmd(os.Stdout).Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "sucuri",
		Short:        "Compresses images into WebP files that fit a size target",
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "The path for the config file")

	rootCmd.AddCommand(newServeCmd(opts), newCompressCmd(opts))
	return rootCmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve --config <FILE_PATH>",
		Short: "Starts the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath == "" {
				return fmt.Errorf("--config is required to serve")
			}

			conf, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			return app.New(conf, logger.New(conf)).Start()
		},
	}
}

func newCompressCmd(opts *rootOptions) *cobra.Command {
	compOpts := &compressOptions{}

	compressCmd := &cobra.Command{
		Use:   "compress [--archive FILE | FILE...] --target-kb N",
		Short: "Compresses the given images (or the images inside a zip archive) into a bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			job := app.BatchJob{
				Files:    args,
				Archive:  compOpts.archive,
				TargetKB: compOpts.targetKB,
				Output:   compOpts.output,
				Deliver:  compOpts.deliver,
			}

			report, err := app.RunBatch(cmd.Context(), logger.New(conf), conf, prometheus.NewRegistry(), job)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	flags := compressCmd.Flags()
	flags.IntVarP(&compOpts.targetKB, "target-kb", "t", 0, "Target size of each image, in KB. Defaults to the configured one")
	flags.StringVarP(&compOpts.archive, "archive", "a", "", "A zip archive holding the images")
	flags.StringVarP(&compOpts.output, "output", "o", bundle.BundleFileName, "Where the bundle is written")
	flags.BoolVar(&compOpts.deliver, "deliver", false, "Also hand the bundle to the configured delivery")

	return compressCmd
}

// loadConfig falls back to the defaults when no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		conf := config.Default()
		conf.Version = version
		return conf, nil
	}

	confData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	conf, err := config.New(confData)
	if err != nil {
		return nil, fmt.Errorf("error initializing/parsing config: %w", err)
	}

	conf.Version = version
	return conf, nil
}

func printReport(out io.Writer, report *app.BatchReport) {
	fmt.Fprintln(out, summaryLine(report.Summary))

	if report.Summary.Files > 0 {
		fmt.Fprintf(out, "bundle written to %s\n", report.Output)
	}

	if report.Receipt != nil {
		fmt.Fprintf(out, "bundle delivered to %s\n", report.Receipt.Upload.URL)
	}
}

func summaryLine(summary domain.Summary) string {
	return fmt.Sprintf("%d files compressed, %d failed: %.2f KB -> %.2f KB (%.1f%% saved)",
		summary.Files, summary.Failed, summary.OriginalKB, summary.CompressedKB, summary.SavedPercent)
}

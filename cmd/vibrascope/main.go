// Command vibrascope computes the magnitude spectrum of an accelerometer
// recording from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/vibrascope/internal/config"
	"github.com/RMahshie/vibrascope/internal/display"
	"github.com/RMahshie/vibrascope/internal/processing"
	"github.com/RMahshie/vibrascope/internal/resample"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type analyzeOptions struct {
	file             string
	rate             float64
	format           string
	chart            string
	rejectDuplicates bool
	exactAxis        bool
	verbose          bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vibrascope",
		Short:         "Frequency analysis of accelerometer recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze --file recording.csv --rate 1000",
		Short: "Resample a recording and print its magnitude spectrum",
		Long: `Analyze reads a CSV recording with the columns time, axisX, axisY and axisZ,
resamples the X axis onto a uniform grid at --rate Hz and prints the
one-sided magnitude spectrum as frequency/magnitude pairs.

Output formats:
  csv    frequency,magnitude rows (default)
  json   an array of {"frequency", "magnitude"} objects`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			err := runAnalyze(cmd, opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "path to the CSV recording")
	cmd.Flags().Float64VarP(&opts.rate, "rate", "r", 0, "uniform resampling rate in Hz")
	cmd.Flags().StringVar(&opts.format, "format", "csv", "output format (csv, json)")
	cmd.Flags().StringVar(&opts.chart, "chart", "", "also write an HTML line chart to this path")
	cmd.Flags().BoolVar(&opts.rejectDuplicates, "reject-duplicates", false, "fail on repeated timestamps instead of passing them through")
	cmd.Flags().BoolVar(&opts.exactAxis, "exact-axis", false, "space frequencies by the resampled signal length")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline details")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("rate")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	format, err := display.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	duplicates := cfg.Analysis.Duplicates
	if cmd.Flags().Changed("reject-duplicates") {
		duplicates = resample.PassThrough
		if opts.rejectDuplicates {
			duplicates = resample.RejectDuplicates
		}
	}
	exact := cfg.Analysis.ExactFrequencyAxis
	if cmd.Flags().Changed("exact-axis") {
		exact = opts.exactAxis
	}

	pipeline := processing.NewPipeline(
		processing.WithDuplicatePolicy(duplicates),
		processing.WithMaxSignalLength(cfg.Analysis.MaxSignalLength),
		processing.WithExactFrequencyAxis(exact),
		processing.WithLimits(processing.Limits{
			MaxSampleRateHz: cfg.Analysis.MaxSampleRateHz,
			MaxPathLength:   cfg.Analysis.MaxPathLength,
		}),
	)

	table := display.Table{W: cmd.OutOrStdout(), Format: format}
	req := processing.Request{Path: opts.file, SampleRateHz: opts.rate}

	result, err := pipeline.Present(req, table)
	if err != nil {
		return err
	}

	if opts.chart != "" {
		if err := writeChart(opts.chart, opts.file, result); err != nil {
			return err
		}
	}

	// stdout carries only the table so it can be piped
	if result.HasPeak {
		fmt.Fprintf(cmd.ErrOrStderr(), "peak %g Hz, magnitude %g (%d samples, %d resampled at %g Hz)\n",
			result.Peak.Frequency, result.Peak.Magnitude, result.SampleCount, result.SignalLength, result.SampleRateHz)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "no peak above DC (%d samples, %d resampled at %g Hz)\n",
			result.SampleCount, result.SignalLength, result.SampleRateHz)
	}

	log.Debug().
		Str("file", opts.file).
		Int("samples", result.SampleCount).
		Int("signalLength", result.SignalLength).
		Float64("peakHz", result.Peak.Frequency).
		Msg("Spectrum written")

	return nil
}

func writeChart(path, title string, result *processing.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	chart := display.Chart{Title: title, SampleRateHz: result.SampleRateHz}
	if err := chart.Render(f, result.Points); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}

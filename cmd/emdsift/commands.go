package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-emd/algorithms/sift"
	"github.com/RyanBlaney/sonido-emd/algorithms/spectral"
	"github.com/RyanBlaney/sonido-emd/config"
	"github.com/RyanBlaney/sonido-emd/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "emdsift",
		Short:         "Empirical mode decomposition of sampled signals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newConfigCmd())
	return root
}

type runOptions struct {
	siftType   string
	configPath string
	input      string
	maxIMFs    int
	workers    int
	seed       uint64
	verbose    string
	residual   bool
	sampleRate float64
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sift samples from a file or stdin and print the IMFs as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSift(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.siftType, "type", "t", string(config.SiftTypeSift), "sift variant: sift, ensemble_sift, complete_ensemble_sift or mask_sift")
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML sift config written by the config command")
	f.StringVarP(&opts.input, "input", "i", "-", "file of whitespace-separated samples, - for stdin")
	f.IntVar(&opts.maxIMFs, "max-imfs", 0, "maximum number of IMFs, 0 for no cap")
	f.IntVar(&opts.workers, "workers", 1, "parallel workers for ensemble and mask sifts")
	f.Uint64Var(&opts.seed, "seed", 0, "noise seed for ensemble sifts")
	f.StringVarP(&opts.verbose, "verbose", "v", "info", "log level: debug, info, warn, error")
	f.BoolVar(&opts.residual, "residual", false, "append the residual as a final column")
	f.Float64Var(&opts.sampleRate, "sample-rate", 1, "sample rate used to report IMF frequencies")
	return cmd
}

func runSift(cmd *cobra.Command, opts *runOptions) error {
	level, err := logging.ParseLevel(opts.verbose)
	if err != nil {
		return err
	}
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	logger.SetLevel(level)

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	var overrides config.Overrides
	if cmd.Flags().Changed("max-imfs") {
		overrides.MaxIMFs = &opts.maxIMFs
	}
	if cmd.Flags().Changed("workers") {
		overrides.Workers = &opts.workers
	}
	if cmd.Flags().Changed("seed") {
		overrides.Seed = &opts.seed
	}
	cfg.Apply(overrides)

	d, err := cfg.Decomposer(logger.WithFields(logging.Fields{"sift_type": cfg.SiftType}))
	if err != nil {
		return err
	}

	x, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}
	logger.Info("Read input", logging.Fields{"samples": len(x), "input": opts.input})

	dec, err := d.Decompose(x)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.SiftType, err)
	}
	logger.Info("Decomposition complete", logging.Fields{"imfs": dec.NumIMFs()})

	zcr := spectral.NewZeroCrossingRate(opts.sampleRate)
	for i := range dec.NumIMFs() {
		logger.Info("IMF summary", logging.Fields{
			"imf":            i + 1,
			"dominant_freq":  zcr.DominantFrequency(dec.IMF(i)),
			"zero_crossings": spectral.ZeroCrossingCount(dec.IMF(i)),
		})
	}

	return writeCSV(cmd.OutOrStdout(), x, dec, opts.residual)
}

func loadConfig(cmd *cobra.Command, opts *runOptions) (*config.SiftConfig, error) {
	if opts.configPath == "" {
		return config.Default(config.SiftType(opts.siftType))
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("type") && cfg.SiftType != config.SiftType(opts.siftType) {
		return nil, fmt.Errorf("--type %s conflicts with %s config in %s", opts.siftType, cfg.SiftType, opts.configPath)
	}
	return cfg, nil
}

func readInput(stdin io.Reader, path string) ([]float64, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return readSamples(r)
}

func readSamples(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var x []float64
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", len(x), err)
		}
		x = append(x, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	if len(x) == 0 {
		return nil, sift.ErrEmptyInput
	}
	return x, nil
}

func writeCSV(w io.Writer, x []float64, dec *sift.Decomposition, withResidual bool) error {
	cols := dec.IMFs()
	header := make([]string, 0, len(cols)+1)
	for i := range cols {
		header = append(header, fmt.Sprintf("imf%d", i+1))
	}
	if withResidual {
		resid, err := dec.Residual(x)
		if err != nil {
			return err
		}
		cols = append(cols, resid)
		header = append(header, "residual")
	}

	out := csv.NewWriter(w)
	if err := out.Write(header); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for t := range x {
		for j, col := range cols {
			row[j] = strconv.FormatFloat(col[t], 'g', -1, 64)
		}
		if err := out.Write(row); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func newConfigCmd() *cobra.Command {
	var siftType, output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the default YAML config of a sift variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Default(config.SiftType(siftType))
			if err != nil {
				return err
			}
			if output != "" {
				return cfg.Save(output)
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&siftType, "type", "t", string(config.SiftTypeSift), "sift variant")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

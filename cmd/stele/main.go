package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs/v2"

	"github.com/AlyssaRoseDev/stele/alloc"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cfg := Default()
	FromEnv(&cfg)

	var log *slog.Logger

	rootCmd := &cobra.Command{
		Use:           "stele",
		Short:         "Exercise append-only sequences",
		Long:          "stele drives a single writer and concurrent readers over an append-only sequence and reports what it sees.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			log, err = newLogger(stderr, cfg.LogLevel)
			return err
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&cfg.Count, "count", cfg.Count, "number of values to push")
	flags.StringVar(&cfg.Allocator, "allocator", cfg.Allocator, "block allocator: heap or tracker")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	stressCmd := &cobra.Command{
		Use:   "stress",
		Short: "Push values while readers verify every published prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runStress(log, cfg)
			if err != nil {
				log.Error("stress failed", "err", err)
			}
			return err
		},
	}
	stressCmd.Flags().IntVar(&cfg.Readers, "readers", cfg.Readers, "number of concurrent readers")
	rootCmd.AddCommand(stressCmd)

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Push values and print the resulting block layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(log, cmd.OutOrStdout(), cfg)
		},
	}
	rootCmd.AddCommand(layoutCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Encode a sequence, decode it again and compare",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(log, cfg)
		},
	}
	snapshotCmd.Flags().StringVar(&cfg.Out, "out", cfg.Out, "also write the snapshot to this file")
	rootCmd.AddCommand(snapshotCmd)

	return rootCmd
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errs.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// newAllocator returns the allocator named by cfg and, for the tracker, the
// tracker itself so its stats can be reported.
func newAllocator(cfg Config) (alloc.Allocator, *alloc.Tracker, error) {
	switch cfg.Allocator {
	case "heap", "":
		return alloc.DefaultHeap, nil, nil
	case "tracker":
		tr := alloc.NewTracker(nil)
		return tr, tr, nil
	default:
		return nil, nil, errs.Errorf("unknown allocator %q", cfg.Allocator)
	}
}

func logStats(log *slog.Logger, tr *alloc.Tracker) error {
	if tr == nil {
		return nil
	}
	st := tr.Stats()
	log.Info("allocator",
		"allocs", st.Allocs,
		"frees", st.Frees,
		"live", st.Live,
		"peak_bytes", st.PeakBytes,
	)
	if err := tr.Check(); err != nil {
		return errs.Wrap(err)
	}
	return nil
}

func checkCount(n int) error {
	if n < 0 {
		return errs.Errorf("count must not be negative: %d", n)
	}
	return nil
}

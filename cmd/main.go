package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"brainstate"
	"brainstate/eeg"
	"brainstate/recording"
	"brainstate/report"
	"brainstate/state"
)

func main() {
	// 1. flags
	input := flag.String("file", "", "recording to analyse (.edf, .wav, .txt, .csv)")
	rate := flag.Float64("rate", 128, "sampling rate in Hz for EDF and text input")
	channel := flag.Int("channel", 0, "EDF signal index")
	configPath := flag.String("config", "", "optional YAML configuration")
	recordPath := flag.String("out", "", "write the annotation record (JSON) here")
	csvPath := flag.String("csv", "", "write per-window features (CSV) here")
	exportPath := flag.String("export", "", "write the artifact-corrected signal (float WAV) here")
	workers := flag.Int("workers", -1, "feature workers, 0 for one per CPU (default from config)")
	logLevel := flag.String("log", "", "log level: debug, info, warn, error (default from config)")
	quiet := flag.Bool("quiet", false, "do not print the state table")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: brainstate -file recording.edf [-out record.json] [-csv features.csv]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*input, *rate, *channel, *configPath, *recordPath, *csvPath, *exportPath, *workers, *logLevel, *quiet); err != nil {
		slog.Error("analysis failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(input string, rate float64, channel int, configPath, recordPath, csvPath, exportPath string, workers int, logLevel string, quiet bool) error {
	// 2. recording
	sig, err := recording.Open(input, recording.Options{Rate: rate, Channel: channel, RemoveDC: true})
	if err != nil {
		return err
	}

	// 3. configuration, built for the recording's own rate
	cfg := brainstate.DefaultConfig(sig.Rate)
	if configPath != "" {
		if cfg, err = brainstate.LoadConfig(configPath, sig.Rate); err != nil {
			return err
		}
	}
	if workers >= 0 {
		cfg.Features.Workers = workers
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := brainstate.InitLogger(cfg.Log.Level, cfg.Log.Source)
	if err != nil {
		return err
	}

	// 4. pipeline
	opts := []brainstate.Option{brainstate.WithLogger(logger)}
	var csv *report.CSVWriter
	if csvPath != "" {
		if csv, err = report.NewCSVFile(csvPath); err != nil {
			return err
		}
		opts = append(opts, brainstate.WithRecorder(csv))
	}
	p, err := brainstate.NewPipeline(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx, sig)
	if csv != nil {
		if cerr := csv.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}

	// 5. outputs
	if recordPath != "" {
		if err := res.Record(filepath.Base(input)).Save(recordPath); err != nil {
			return err
		}
		logger.Info("record written", slog.String("path", recordPath))
	}
	if exportPath != "" {
		corrected, err := eeg.NewSignal(res.Corrected, sig.Rate)
		if err != nil {
			return err
		}
		if err := recording.WriteWAV(exportPath, corrected); err != nil {
			return err
		}
		logger.Info("corrected signal written", slog.String("path", exportPath))
	}
	if !quiet {
		printStates(res)
	}
	return nil
}

func printStates(res *brainstate.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME(s)\tSTATE\tFAMILY\tSUPP\tDELTA\tALPHA\tBETA\tGAMMA\tEDGE(Hz)")
	fmt.Fprintln(w, "-------\t-----\t------\t----\t-----\t-----\t----\t-----\t--------")
	for i, v := range res.Features.Vectors {
		p := state.Proportions(v.Proportions)
		edge := 0.0
		if n := len(v.Quantiles); n > 0 {
			edge = v.Quantiles[n-1]
		}
		fmt.Fprintf(w, "%.0f\t%d\t%s\t%.3f\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\n",
			v.Time, res.States[i], state.SelectFamily(v.Suppression, p),
			v.Suppression, p.Delta(), p.Alpha(), p.Beta(), p.Gamma(), edge)
	}
	w.Flush()

	if n := len(res.Artifacts.Intervals); n > 0 {
		spans := make([]string, 0, n)
		for _, iv := range res.Artifacts.Intervals {
			spans = append(spans, fmt.Sprintf("%.1f-%.1fs", res.Signal.Time(iv.Start), res.Signal.Time(iv.End)))
		}
		fmt.Printf("\nartifacts: %s\n", strings.Join(spans, ", "))
	}
}

// Package report writes per-window results for offline inspection.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"brainstate/features"
	"brainstate/state"
)

// Recorder receives one row per classified window. The pipeline depends
// only on this interface, never on a file.
type Recorder interface {
	Record(v features.Vector, s state.State) error
	Close() error
}

// CSVWriter is a Recorder that writes comma separated rows.
type CSVWriter struct {
	closer io.Closer
	writer *bufio.Writer
	header bool
}

// NewCSVFile creates path and returns a writer on it.
func NewCSVFile(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := NewCSVWriter(f)
	w.closer = f
	return w, nil
}

// NewCSVWriter writes to w. Close flushes but does not close w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: bufio.NewWriter(w)}
}

var fixedColumns = []string{
	"time", "state",
	"delta", "alpha", "beta", "gamma",
	"p_delta", "p_alpha", "p_beta", "p_gamma",
	"suppression", "ies", "alpha_supp", "shallow",
	"entropy", "block_entropy", "line_length",
	"dominant_freq", "zcr",
}

// Record writes v. The header is emitted with the first row; the number of
// quantile columns follows that row.
func (c *CSVWriter) Record(v features.Vector, s state.State) error {
	if !c.header {
		cols := append([]string{}, fixedColumns...)
		for i := range v.Quantiles {
			cols = append(cols, fmt.Sprintf("q%d", i))
		}
		if _, err := c.writer.WriteString(strings.Join(cols, ",") + "\n"); err != nil {
			return err
		}
		c.header = true
	}

	fmt.Fprintf(c.writer, "%.3f,%d", v.Time, int(s))
	for _, p := range v.BandPower {
		fmt.Fprintf(c.writer, ",%g", p)
	}
	for _, p := range v.Proportions {
		fmt.Fprintf(c.writer, ",%f", p)
	}
	fmt.Fprintf(c.writer, ",%f,%f,%f,%f,%f,%f,%f,%f,%f",
		v.Suppression, v.IESFraction, v.AlphaFraction, v.ShallowFraction,
		v.Entropy, v.BlockEntropy, v.LineLength,
		v.DominantFrequency, v.ZeroCrossingFrequency)
	for _, q := range v.Quantiles {
		fmt.Fprintf(c.writer, ",%g", q)
	}
	_, err := c.writer.WriteString("\n")
	return err
}

// Close flushes buffered rows and closes the file, if any.
func (c *CSVWriter) Close() error {
	err := c.writer.Flush()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NoOp discards every row.
type NoOp struct{}

func (NoOp) Record(features.Vector, state.State) error { return nil }
func (NoOp) Close() error                               { return nil }

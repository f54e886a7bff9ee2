// Package recording loads single-channel EEG from EDF, WAV or plain text
// files into an eeg.Signal.
package recording

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"brainstate/eeg"
	"brainstate/internal/stats"

	"github.com/OpenPSG/edf"
	"github.com/mjibson/go-dsp/wav"
)

// ErrUnsupportedFormat is returned by Open for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported recording format")

// Options select the channel and supply what a format does not carry.
type Options struct {
	Rate     float64 `yaml:"rate"`      // required for EDF and text input
	Channel  int     `yaml:"channel"`   // EDF signal index
	RemoveDC bool    `yaml:"remove_dc"` // subtract the median
}

// readChunk is the number of samples pulled from an EDF signal per call.
const readChunk = 4096

// ReadEDF reads signal signalIndex of an EDF/EDF+ stream. The header's
// sample rate is not exposed by the reader so the caller supplies it.
func ReadEDF(r io.ReadSeeker, signalIndex int, rate float64) (eeg.Signal, error) {
	er, err := edf.Open(r)
	if err != nil {
		return eeg.Signal{}, fmt.Errorf("edf: %w", err)
	}
	sr, err := er.Signal(signalIndex)
	if err != nil {
		return eeg.Signal{}, fmt.Errorf("edf signal %d: %w", signalIndex, err)
	}

	var samples []float64
	buf := make([]float64, readChunk)
	for {
		n, err := sr.Read(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return eeg.Signal{}, fmt.Errorf("edf samples: %w", err)
		}
	}
	return eeg.NewSignal(samples, rate)
}

// ReadWAV reads the first channel of a PCM or float WAV stream. Integer
// PCM is scaled to [-1, 1).
func ReadWAV(r io.Reader) (eeg.Signal, error) {
	w, err := wav.New(r)
	if err != nil {
		return eeg.Signal{}, fmt.Errorf("wav: %w", err)
	}
	channels := int(w.NumChannels)
	if channels < 1 {
		return eeg.Signal{}, fmt.Errorf("wav: no channels")
	}

	data, err := w.ReadSamples(w.Samples)
	if err != nil {
		return eeg.Signal{}, fmt.Errorf("wav samples: %w", err)
	}

	frames := w.Samples / channels
	samples := make([]float64, frames)
	switch d := data.(type) {
	case []int16:
		for i := range samples {
			samples[i] = float64(d[i*channels]) / 32768.0
		}
	case []uint8:
		for i := range samples {
			samples[i] = (float64(d[i*channels]) - 128) / 128.0
		}
	case []float32:
		for i := range samples {
			samples[i] = float64(d[i*channels])
		}
	default:
		return eeg.Signal{}, fmt.Errorf("wav: unexpected sample type %T", data)
	}
	return eeg.NewSignal(samples, float64(w.SampleRate))
}

// ReadText reads one sample per line. Lines may be CSV, in which case the
// first column is used; blank lines, '#' comments and a non-numeric header
// line are skipped.
func ReadText(r io.Reader, rate float64) (eeg.Signal, error) {
	var samples []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if i := strings.IndexAny(text, ",;\t"); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			if len(samples) == 0 && line == 1 {
				continue
			}
			return eeg.Signal{}, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, v)
	}
	if err := sc.Err(); err != nil {
		return eeg.Signal{}, err
	}
	return eeg.NewSignal(samples, rate)
}

// Open reads path, choosing the decoder from its extension.
func Open(path string, opts Options) (eeg.Signal, error) {
	var read func(f *os.File) (eeg.Signal, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".edf":
		read = func(f *os.File) (eeg.Signal, error) { return ReadEDF(f, opts.Channel, opts.Rate) }
	case ".wav":
		read = func(f *os.File) (eeg.Signal, error) { return ReadWAV(f) }
	case ".txt", ".csv", ".dat":
		read = func(f *os.File) (eeg.Signal, error) { return ReadText(f, opts.Rate) }
	default:
		return eeg.Signal{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return eeg.Signal{}, err
	}
	defer f.Close()

	sig, err := read(f)
	if err != nil {
		return eeg.Signal{}, fmt.Errorf("%s: %w", path, err)
	}
	if opts.RemoveDC {
		sig.Samples = RemoveDC(sig.Samples)
	}
	return sig, nil
}

// RemoveDC returns x re-based on its median, which is robust to the
// large transients typical of electrode artifacts.
func RemoveDC(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	m := stats.Median(x)
	for i, v := range x {
		out[i] = v - m
	}
	return out
}

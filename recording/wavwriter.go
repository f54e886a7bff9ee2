package recording

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"brainstate/eeg"
)

const wavHeaderSize = 44

// WAVWriter writes a mono 32-bit float WAV stream. Samples are stored as
// they are, without scaling, so µV values survive a round trip.
type WAVWriter struct {
	w        io.WriteSeeker
	closer   io.Closer
	rate     uint32
	dataSize int
}

// NewWAVWriter reserves the header on w. The header is completed by Close.
func NewWAVWriter(w io.WriteSeeker, rate float64) (*WAVWriter, error) {
	if rate <= 0 || rate > math.MaxUint32 || rate != math.Trunc(rate) {
		return nil, eeg.ConfigError("WAV sample rate must be a positive integer, got %v", rate)
	}
	if _, err := w.Write(make([]byte, wavHeaderSize)); err != nil {
		return nil, err
	}
	return &WAVWriter{w: w, rate: uint32(rate)}, nil
}

// CreateWAV creates path and returns a writer that closes it.
func CreateWAV(path string, rate float64) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	ww, err := NewWAVWriter(f, rate)
	if err != nil {
		f.Close()
		return nil, err
	}
	ww.closer = f
	return ww, nil
}

// WriteSamples appends samples.
func (ww *WAVWriter) WriteSamples(samples []float64) error {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(s)))
	}
	n, err := ww.w.Write(buf)
	ww.dataSize += n
	return err
}

// Close rewrites the header with the final sizes.
func (ww *WAVWriter) Close() error {
	header := make([]byte, wavHeaderSize)

	// RIFF
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+ww.dataSize))
	copy(header[8:], "WAVE")

	// fmt: IEEE float, mono, 32 bit
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16)
	binary.LittleEndian.PutUint16(header[20:], 3)
	binary.LittleEndian.PutUint16(header[22:], 1)
	binary.LittleEndian.PutUint32(header[24:], ww.rate)
	binary.LittleEndian.PutUint32(header[28:], ww.rate*4)
	binary.LittleEndian.PutUint16(header[32:], 4)
	binary.LittleEndian.PutUint16(header[34:], 32)

	// data
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(ww.dataSize))

	if _, err := ww.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := ww.w.Write(header); err != nil {
		return err
	}
	if ww.closer != nil {
		return ww.closer.Close()
	}
	return nil
}

// WriteWAV stores sig at path.
func WriteWAV(path string, sig eeg.Signal) error {
	ww, err := CreateWAV(path, sig.Rate)
	if err != nil {
		return err
	}
	if err := ww.WriteSamples(sig.Samples); err != nil {
		ww.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return ww.Close()
}

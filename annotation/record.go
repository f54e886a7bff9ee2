// Package annotation persists classifier output next to human corrections.
//
// A Record holds one state per feature window together with the state a
// reviewer assigned to it. Labels hold free interval annotations made
// while browsing a recording.
package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"brainstate/state"

	"github.com/google/uuid"
)

// ErrInvalidRecord is returned when a record's series disagree or hold an
// out-of-range state.
var ErrInvalidRecord = errors.New("invalid annotation record")

// Record is the per-window annotation of one recording.
type Record struct {
	ID           string        `json:"id"`
	Recording    string        `json:"recording"`
	Rate         float64       `json:"fs"`
	Times        []float64     `json:"t_list"`
	States       []state.State `json:"state"`
	StateUpdated []state.State `json:"state_updated"`
}

// NewRecord creates a record with a fresh id. StateUpdated starts as a copy
// of states.
func NewRecord(recording string, rate float64, times []float64, states []state.State) *Record {
	updated := make([]state.State, len(states))
	copy(updated, states)
	return &Record{
		ID:           uuid.New().String(),
		Recording:    recording,
		Rate:         rate,
		Times:        times,
		States:       states,
		StateUpdated: updated,
	}
}

// Len returns the number of windows.
func (r *Record) Len() int { return len(r.Times) }

// Validate checks alignment and state ranges.
func (r *Record) Validate() error {
	if len(r.States) != len(r.Times) || len(r.StateUpdated) != len(r.Times) {
		return fmt.Errorf("%w: %d times, %d states, %d updated states",
			ErrInvalidRecord, len(r.Times), len(r.States), len(r.StateUpdated))
	}
	for i := range r.States {
		if !r.States[i].Valid() {
			return fmt.Errorf("%w: state %d at window %d", ErrInvalidRecord, r.States[i], i)
		}
		if !r.StateUpdated[i].Valid() {
			return fmt.Errorf("%w: updated state %d at window %d", ErrInvalidRecord, r.StateUpdated[i], i)
		}
	}
	return nil
}

// Update records a reviewer's state for window i.
func (r *Record) Update(i int, s state.State) error {
	if i < 0 || i >= len(r.StateUpdated) {
		return fmt.Errorf("%w: window %d out of range [0,%d)", ErrInvalidRecord, i, len(r.StateUpdated))
	}
	if !s.Valid() {
		return fmt.Errorf("%w: state %d", ErrInvalidRecord, s)
	}
	r.StateUpdated[i] = s
	return nil
}

// Agreement returns the fraction of windows where the reviewer kept the
// classifier's state. An empty record agrees fully.
func (r *Record) Agreement() float64 {
	n := len(r.States)
	if len(r.StateUpdated) < n {
		n = len(r.StateUpdated)
	}
	if n == 0 {
		return 1
	}
	same := 0
	for i := 0; i < n; i++ {
		if r.States[i] == r.StateUpdated[i] {
			same++
		}
	}
	return float64(same) / float64(n)
}

// Write encodes the record as indented JSON.
func (r *Record) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(r)
}

// Read decodes and validates a record.
func Read(rd io.Reader) (*Record, error) {
	var r Record
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save validates the record and writes it to path.
func (r *Record) Save(path string) error {
	if err := r.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a record from path.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"brainstate/eeg"
	"brainstate/state"
)

// ErrOverlap is returned when a state label overlaps an existing one.
var ErrOverlap = errors.New("label overlaps an existing one")

// StateLabel marks [Start, End) samples of a recording with a state. It is
// encoded as [state, start, end].
type StateLabel struct {
	State state.State
	eeg.Interval
}

func (l StateLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{int(l.State), l.Start, l.End})
}

func (l *StateLabel) UnmarshalJSON(data []byte) error {
	var v [3]int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("state label: %w", err)
	}
	l.State, l.Start, l.End = state.State(v[0]), v[1], v[2]
	return nil
}

// SegmentLabel names a selection inside a displayed segment. It is
// encoded as [[seg_start, seg_end], [sel_start, sel_end], label].
type SegmentLabel struct {
	Segment   eeg.Interval
	Selection eeg.Interval
	Label     string
}

func (l SegmentLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{
		[2]int{l.Segment.Start, l.Segment.End},
		[2]int{l.Selection.Start, l.Selection.End},
		l.Label,
	})
}

func (l *SegmentLabel) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("segment label: %w", err)
	}
	var seg, sel [2]int
	if err := json.Unmarshal(raw[0], &seg); err != nil {
		return fmt.Errorf("segment label segment: %w", err)
	}
	if err := json.Unmarshal(raw[1], &sel); err != nil {
		return fmt.Errorf("segment label selection: %w", err)
	}
	if err := json.Unmarshal(raw[2], &l.Label); err != nil {
		return fmt.Errorf("segment label name: %w", err)
	}
	l.Segment = eeg.Interval{Start: seg[0], End: seg[1]}
	l.Selection = eeg.Interval{Start: sel[0], End: sel[1]}
	return nil
}

// FileLabels are all labels of one recording.
type FileLabels struct {
	States   []StateLabel   `json:"states"`
	Segments []SegmentLabel `json:"segment label"`
}

// Labels maps recording names to their labels.
type Labels map[string]*FileLabels

func (ls Labels) file(name string) *FileLabels {
	fl, ok := ls[name]
	if !ok {
		fl = &FileLabels{States: []StateLabel{}, Segments: []SegmentLabel{}}
		ls[name] = fl
	}
	return fl
}

// Add labels [start, end) of file with s. A label touching an existing one
// end to start is accepted; any overlap is rejected with ErrOverlap.
func (ls Labels) Add(file string, s state.State, start, end int) error {
	if !s.Valid() {
		return fmt.Errorf("state %d out of range", s)
	}
	if end <= start {
		return fmt.Errorf("empty label [%d,%d)", start, end)
	}
	iv := eeg.Interval{Start: start, End: end}
	fl := ls.file(file)
	for _, l := range fl.States {
		if l.Overlaps(iv) {
			return fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrOverlap, start, end, l.Start, l.End)
		}
	}
	fl.States = append(fl.States, StateLabel{State: s, Interval: iv})
	return nil
}

// Remove deletes the exact label and reports whether it was present.
func (ls Labels) Remove(file string, s state.State, start, end int) bool {
	fl, ok := ls[file]
	if !ok {
		return false
	}
	want := StateLabel{State: s, Interval: eeg.Interval{Start: start, End: end}}
	for i, l := range fl.States {
		if l == want {
			fl.States = append(fl.States[:i], fl.States[i+1:]...)
			return true
		}
	}
	return false
}

// AddSegment stores a named selection inside a segment.
func (ls Labels) AddSegment(file string, segment, selection eeg.Interval, label string) {
	fl := ls.file(file)
	fl.Segments = append(fl.Segments, SegmentLabel{Segment: segment, Selection: selection, Label: label})
}

// StatesOf returns the state labels of file sorted by start.
func (ls Labels) StatesOf(file string) []StateLabel {
	fl, ok := ls[file]
	if !ok {
		return nil
	}
	out := make([]StateLabel, len(fl.States))
	copy(out, fl.States)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// LoadLabels reads a labels file. A missing file yields empty labels.
func LoadLabels(path string) (Labels, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Labels{}, nil
	}
	if err != nil {
		return nil, err
	}
	ls := Labels{}
	if err := json.Unmarshal(data, &ls); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ls, nil
}

// Save writes the labels to path as indented JSON.
func (ls Labels) Save(path string) error {
	data, err := json.MarshalIndent(ls, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

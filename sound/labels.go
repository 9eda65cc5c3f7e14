package sound

import (
	"fmt"
	"sort"
)

// LabelEncoder maps class label strings to dense integer ids and back.
// Ids are assigned by sorting the distinct labels, so the mapping
// depends only on the label set, never on sample order.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder builds an encoder over every distinct label in labels.
// It must be fitted on the complete label set before any train/test
// split so both sides share one mapping.
func NewLabelEncoder(labels []string) (*LabelEncoder, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to encode")
	}
	seen := make(map[string]struct{}, len(labels))
	var classes []string
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		classes = append(classes, label)
	}
	sort.Strings(classes)
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &LabelEncoder{classes: classes, index: index}, nil
}

// Encode returns the integer id of label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	id, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("unknown label %q", label)
	}
	return id, nil
}

// EncodeAll encodes every label, failing on the first unknown one.
func (e *LabelEncoder) EncodeAll(labels []string) ([]int, error) {
	ids := make([]int, len(labels))
	for i, label := range labels {
		id, err := e.Encode(label)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode returns the label for id.
func (e *LabelEncoder) Decode(id int) (string, error) {
	if id < 0 || id >= len(e.classes) {
		return "", fmt.Errorf("label id %d out of range [0, %d)", id, len(e.classes))
	}
	return e.classes[id], nil
}

// Classes returns the labels in id order.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// NumClasses returns the number of distinct labels.
func (e *LabelEncoder) NumClasses() int { return len(e.classes) }

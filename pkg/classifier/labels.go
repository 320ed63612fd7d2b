package classifier

import (
	"fmt"
	"strings"
)

// DefaultFallbackLabel is assigned when no configured label is a catch-all.
const DefaultFallbackLabel = "Other"

// DefaultLabels returns the built-in label set.
func DefaultLabels() []string {
	return []string{"Complaint", "Inquiry", "Feedback", "Other"}
}

// LabelSet is an ordered, immutable set of distinct classification labels.
type LabelSet struct {
	labels   []string
	fallback string
}

// NewLabelSet validates labels and copies them into a LabelSet.
// At least two non-blank, distinct labels are required.
func NewLabelSet(labels []string) (LabelSet, error) {
	if len(labels) < 2 {
		return LabelSet{}, fmt.Errorf("%w: at least 2 labels are required for classification, got %d", ErrConfiguration, len(labels))
	}

	seen := make(map[string]struct{}, len(labels))
	copied := make([]string, 0, len(labels))
	for i, l := range labels {
		if strings.TrimSpace(l) == "" {
			return LabelSet{}, fmt.Errorf("%w: label at index %d is blank", ErrConfiguration, i)
		}
		if _, dup := seen[l]; dup {
			return LabelSet{}, fmt.Errorf("%w: duplicate label %q", ErrConfiguration, l)
		}
		seen[l] = struct{}{}
		copied = append(copied, l)
	}

	set := LabelSet{labels: copied, fallback: DefaultFallbackLabel}
	for _, l := range copied {
		if strings.EqualFold(l, DefaultFallbackLabel) {
			set.fallback = l
			break
		}
	}
	return set, nil
}

// Labels returns a copy of the labels in configured order.
func (s LabelSet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Len returns the number of labels.
func (s LabelSet) Len() int { return len(s.labels) }

// Joined returns the labels joined with ", " as they appear in prompts.
func (s LabelSet) Joined() string {
	return strings.Join(s.labels, ", ")
}

// Fallback returns the label used for results that could not be classified.
func (s LabelSet) Fallback() string { return s.fallback }

// Contains reports whether label is a member under exact comparison.
func (s LabelSet) Contains(label string) bool {
	for _, l := range s.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Canonical resolves label to its configured casing. Exact matches win over
// case-insensitive ones.
func (s LabelSet) Canonical(label string) (string, bool) {
	if s.Contains(label) {
		return label, true
	}
	for _, l := range s.labels {
		if strings.EqualFold(l, label) {
			return l, true
		}
	}
	return "", false
}

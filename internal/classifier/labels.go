// Package classifier turns normalized hand features into sign labels.
package classifier

import (
	"fmt"
	"strings"
)

// Nothing is the sentinel label the model emits when no sign is being held.
const Nothing = "Nothing"

// LabelSet is the ordered, closed set of labels a model was trained on.
// Index i names the i-th component of the model's output vector.
type LabelSet []string

// Fingerspelling is the 27-label ASL alphabet set in model output order.
// "Nothing" sorts between N and O, matching the label encoder used in training.
var Fingerspelling = LabelSet{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", Nothing, "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
}

// Len returns the number of labels.
func (s LabelSet) Len() int { return len(s) }

// Label returns the label at index i. An out-of-range index is a programming
// error and panics.
func (s LabelSet) Label(i int) string {
	if i < 0 || i >= len(s) {
		panic(fmt.Sprintf("classifier: label index %d out of range [0,%d)", i, len(s)))
	}
	return s[i]
}

// Index returns the position of label, compared case-insensitively, or -1.
func (s LabelSet) Index(label string) int {
	for i, l := range s {
		if strings.EqualFold(l, label) {
			return i
		}
	}
	return -1
}

// Contains reports whether label is in the set.
func (s LabelSet) Contains(label string) bool {
	return s.Index(label) >= 0
}

// Signs returns the labels without the Nothing sentinel.
func (s LabelSet) Signs() []string {
	out := make([]string, 0, len(s))
	for _, l := range s {
		if l != Nothing {
			out = append(out, l)
		}
	}
	return out
}

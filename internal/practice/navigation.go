package practice

import (
	"slices"

	"github.com/ayusman/signtutor/internal/classifier"
)

// Neighbors returns the signs before and after sign in label order, skipping
// the Nothing sentinel. next is empty when the following sign is locked or
// sign is the last one; prev is empty at the start. An unknown sign has no
// neighbors.
func Neighbors(labels classifier.LabelSet, sign string, unlocked func(string) bool) (prev, next string) {
	idx := labels.Index(sign)
	if idx < 0 || labels[idx] == classifier.Nothing {
		return "", ""
	}

	signs := labels.Signs()
	pos := slices.Index(signs, labels[idx])

	if pos > 0 {
		prev = signs[pos-1]
	}
	if pos+1 < len(signs) && (unlocked == nil || unlocked(signs[pos+1])) {
		next = signs[pos+1]
	}
	return prev, next
}

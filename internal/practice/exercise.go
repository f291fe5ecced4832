package practice

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/signtutor/internal/classifier"
)

// Exercise kinds reported in snapshots.
const (
	KindLesson   = "lesson"
	KindSpelling = "spelling"
)

// Exercise decides what the learner should sign next and what a confirmed
// hold means.
type Exercise interface {
	// Target is the label to hold. Empty once the exercise is finished.
	Target() string
	// Hold is the required hold duration.
	Hold() time.Duration
	// Confirmed is called once per completed hold. It reports whether the
	// target changed as a result.
	Confirmed(ctx context.Context) (advanced bool, err error)
	// Progress describes the exercise for display.
	Progress() ExerciseProgress
}

// ExerciseProgress is the display state of an exercise.
type ExerciseProgress struct {
	Kind      string `json:"kind"`
	Target    string `json:"target"`
	Word      string `json:"word,omitempty"`
	Completed string `json:"completed,omitempty"`
	Remaining string `json:"remaining,omitempty"`
	Mastered  bool   `json:"mastered"`
	Done      bool   `json:"done"`
}

// AwardFunc records that sign was mastered for the first time.
type AwardFunc func(ctx context.Context, sign string) error

// LessonExercise practices one sign and awards progress the first time it is
// held correctly.
type LessonExercise struct {
	mu       sync.Mutex
	sign     string
	hold     time.Duration
	mastered bool
	award    AwardFunc
}

// NewLessonExercise creates a lesson for sign. mastered marks a sign that was
// already completed in an earlier session; it never awards again.
func NewLessonExercise(sign string, hold time.Duration, mastered bool, award AwardFunc) *LessonExercise {
	return &LessonExercise{
		sign:     sign,
		hold:     hold,
		mastered: mastered,
		award:    award,
	}
}

func (e *LessonExercise) Target() string      { return e.sign }
func (e *LessonExercise) Hold() time.Duration { return e.hold }

// Confirmed awards progress unless the sign is already mastered. The mastered
// flag is set before the award runs so repeated confirmations cannot award
// twice; a failed award clears it so a later hold can try again.
func (e *LessonExercise) Confirmed(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if e.mastered {
		e.mu.Unlock()
		return false, nil
	}
	e.mastered = true
	e.mu.Unlock()

	if e.award == nil {
		return false, nil
	}

	if err := e.award(ctx, e.sign); err != nil {
		e.mu.Lock()
		e.mastered = false
		e.mu.Unlock()
		return false, err
	}
	return false, nil
}

func (e *LessonExercise) Progress() ExerciseProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ExerciseProgress{
		Kind:     KindLesson,
		Target:   e.sign,
		Mastered: e.mastered,
		Done:     e.mastered,
	}
}

// SpellingExercise walks through a word one letter at a time.
type SpellingExercise struct {
	mu      sync.Mutex
	word    string
	letters []string
	pos     int
	hold    time.Duration
}

// NewSpellingExercise creates a spelling drill for word. Characters that are
// not signs in labels are skipped.
func NewSpellingExercise(word string, labels classifier.LabelSet, hold time.Duration) *SpellingExercise {
	word = strings.ToUpper(strings.TrimSpace(word))
	letters := make([]string, 0, len(word))
	for _, r := range word {
		l := string(r)
		if idx := labels.Index(l); idx >= 0 && labels[idx] != classifier.Nothing {
			letters = append(letters, labels[idx])
		}
	}
	return &SpellingExercise{word: word, letters: letters, hold: hold}
}

func (e *SpellingExercise) Target() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pos >= len(e.letters) {
		return ""
	}
	return e.letters[e.pos]
}

func (e *SpellingExercise) Hold() time.Duration { return e.hold }

// Confirmed moves on to the next letter.
func (e *SpellingExercise) Confirmed(context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pos >= len(e.letters) {
		return false, nil
	}
	e.pos++
	return true, nil
}

// Done reports whether every letter has been signed.
func (e *SpellingExercise) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos >= len(e.letters)
}

func (e *SpellingExercise) Progress() ExerciseProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := ExerciseProgress{
		Kind:      KindSpelling,
		Word:      e.word,
		Completed: strings.Join(e.letters[:e.pos], ""),
		Remaining: strings.Join(e.letters[e.pos:], ""),
		Done:      e.pos >= len(e.letters),
	}
	if !p.Done {
		p.Target = e.letters[e.pos]
	}
	return p
}

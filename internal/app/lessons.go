package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/ayusman/signtutor/internal/classifier"
	"github.com/ayusman/signtutor/internal/practice"
	"github.com/ayusman/signtutor/internal/store"
)

// LessonView is a lesson with its navigation neighbors.
type LessonView struct {
	store.Lesson
	Completed bool   `json:"completed"`
	Prev      string `json:"prev,omitempty"`
	Next      string `json:"next,omitempty"`
}

// Lessons returns every lesson in order.
func (a *App) Lessons() ([]store.Lesson, error) {
	return a.config.Store.Lessons().List()
}

// Lesson returns sign's lesson and the signs reachable from it.
func (a *App) Lesson(sign string) (*LessonView, error) {
	l, err := a.config.Store.Lessons().GetBySign(sign)
	if err != nil {
		return nil, err
	}

	lessons, err := a.config.Store.Lessons().List()
	if err != nil {
		return nil, err
	}
	unlocked := make(map[string]bool, len(lessons))
	for _, l := range lessons {
		unlocked[l.Sign] = l.Unlocked
	}

	completed, err := a.config.Store.Progress().Has(l.Sign)
	if err != nil {
		return nil, err
	}

	view := &LessonView{Lesson: *l, Completed: completed}
	view.Prev, view.Next = practice.Neighbors(a.config.Labels, l.Sign, func(s string) bool {
		return unlocked[s]
	})
	return view, nil
}

// UnlockLesson spends points on sign's lesson.
func (a *App) UnlockLesson(sign string) (*store.Lesson, error) {
	l, err := a.config.Store.Lessons().Unlock(sign)
	if err != nil {
		return nil, err
	}
	a.log.Infow("lesson unlocked", "sign", l.Sign, "cost", l.UnlockCost)
	return l, nil
}

// Progress returns the completion history, most recently practiced first.
func (a *App) Progress() ([]store.Progress, error) {
	return a.config.Store.Progress().List()
}

// Profile returns the learner profile.
func (a *App) Profile() (*store.Profile, error) {
	return a.config.Store.Profile().Get()
}

// SetLeftHanded stores the learner's handedness and returns the profile.
func (a *App) SetLeftHanded(left bool) (*store.Profile, error) {
	if err := a.config.Store.Profile().SetLeftHanded(left); err != nil {
		return nil, err
	}
	return a.config.Store.Profile().Get()
}

// SetWordOfTheDay stores word as today's word.
func (a *App) SetWordOfTheDay(word string) (*store.WordOfTheDay, error) {
	word = strings.TrimSpace(word)
	if practice.NewSpellingExercise(word, a.config.Labels, 0).Done() {
		return nil, fmt.Errorf("%q: %w", word, ErrNoLetters)
	}
	return a.config.Store.Words().Set(a.config.Now(), word)
}

// ImportTemplates trains templates from a landmark CSV and replaces the
// stored set. The running model is not swapped; templates load on next start.
func (a *App) ImportTemplates(r io.Reader) (int, error) {
	n, err := ImportTemplates(a.config.Store, a.config.Labels, r)
	if err != nil {
		return 0, err
	}
	a.log.Infow("templates imported", "count", n)
	return n, nil
}

// ImportTemplates trains one template per label found in the landmark CSV r
// and replaces the templates stored in s.
func ImportTemplates(s *store.Store, labels classifier.LabelSet, r io.Reader) (int, error) {
	templates, err := classifier.TrainTemplates(r, labels)
	if err != nil {
		return 0, err
	}
	if err := s.Templates().Replace(toStored(templates)); err != nil {
		return 0, err
	}
	return len(templates), nil
}

func toStored(templates []classifier.Template) []store.SignTemplate {
	out := make([]store.SignTemplate, len(templates))
	for i, t := range templates {
		out[i] = store.SignTemplate{Label: t.Label, Features: store.Vector(t.Features), Samples: t.Samples}
	}
	return out
}

func fromStored(templates []store.SignTemplate) []classifier.Template {
	out := make([]classifier.Template, len(templates))
	for i, t := range templates {
		out[i] = classifier.Template{Label: t.Label, Features: []float32(t.Features), Samples: t.Samples}
	}
	return out
}

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// WordOfTheDay is the word to fingerspell on a given day.
type WordOfTheDay struct {
	Day  string `db:"day" json:"day"`
	Word string `db:"word" json:"word"`
}

// WordRepository stores words of the day.
type WordRepository struct {
	db *sqlx.DB
}

// Words returns the word repository for this store.
func (s *Store) Words() *WordRepository {
	return &WordRepository{db: s.db}
}

// Set stores word for the calendar day of t, replacing any earlier word.
func (r *WordRepository) Set(t time.Time, word string) (*WordOfTheDay, error) {
	w := &WordOfTheDay{
		Day:  t.Format(time.DateOnly),
		Word: strings.ToUpper(strings.TrimSpace(word)),
	}
	if w.Word == "" {
		return nil, errors.New("word is empty")
	}

	_, err := r.db.NamedExec(
		`INSERT INTO words_of_the_day (day, word) VALUES (:day, :word)
		 ON CONFLICT (day) DO UPDATE SET word = excluded.word`,
		w,
	)
	if err != nil {
		return nil, fmt.Errorf("saving word of the day: %w", err)
	}
	return w, nil
}

// Get returns the word for the calendar day of t.
func (r *WordRepository) Get(t time.Time) (*WordOfTheDay, error) {
	var w WordOfTheDay
	err := r.db.Get(&w, `SELECT day, word FROM words_of_the_day WHERE day = ?`, t.Format(time.DateOnly))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting word of the day: %w", err)
	}
	return &w, nil
}

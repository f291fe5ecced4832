package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Progress records a mastered lesson.
type Progress struct {
	LessonID         int64     `db:"lesson_id" json:"lesson_id"`
	Sign             string    `db:"sign" json:"sign"`
	FirstCompletedAt time.Time `db:"first_completed_at" json:"first_completed_at"`
	LastPracticedAt  time.Time `db:"last_practiced_at" json:"last_practiced_at"`
	PracticeCount    int       `db:"practice_count" json:"practice_count"`
}

// Award is the outcome of recording a completed lesson.
type Award struct {
	Sign        string `json:"sign"`
	FirstTime   bool   `json:"first_time"`
	Points      int    `json:"points"`
	TotalPoints int    `json:"total_points"`
	Streak      int    `json:"streak"`
}

// ProgressRepository records lesson completions.
type ProgressRepository struct {
	db *sqlx.DB
}

// Progress returns the progress repository for this store.
func (s *Store) Progress() *ProgressRepository {
	return &ProgressRepository{db: s.db}
}

// Award records that sign was completed at now. The lesson's completion
// points are added only the first time, so repeating an award is safe.
// The practice streak counts consecutive local calendar days.
func (r *ProgressRepository) Award(sign string, now time.Time) (*Award, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("beginning award: %w", err)
	}
	defer tx.Rollback()

	l, err := getLesson(tx, sign)
	if err != nil {
		return nil, err
	}

	res, err := tx.Exec(
		`INSERT INTO progress (lesson_id, first_completed_at, last_practiced_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (lesson_id) DO NOTHING`,
		l.ID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("recording progress for %s: %w", sign, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("recording progress for %s: %w", sign, err)
	}

	award := &Award{Sign: l.Sign, FirstTime: inserted == 1}
	if award.FirstTime {
		award.Points = l.CompletionPoints
	} else {
		if _, err := tx.Exec(
			`UPDATE progress SET last_practiced_at = ?, practice_count = practice_count + 1 WHERE lesson_id = ?`,
			now, l.ID,
		); err != nil {
			return nil, fmt.Errorf("updating progress for %s: %w", sign, err)
		}
	}

	var p Profile
	if err := tx.Get(&p, `SELECT `+profileColumns+` FROM profile WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	today := now.Format(time.DateOnly)
	yesterday := now.AddDate(0, 0, -1).Format(time.DateOnly)
	switch p.LastPracticedOn {
	case today:
	case yesterday:
		p.Streak++
	default:
		p.Streak = 1
	}
	p.TotalPoints += award.Points

	if _, err := tx.Exec(
		`UPDATE profile SET total_points = ?, current_streak = ?, last_practiced_on = ? WHERE id = 1`,
		p.TotalPoints, p.Streak, today,
	); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing award: %w", err)
	}

	award.TotalPoints = p.TotalPoints
	award.Streak = p.Streak
	return award, nil
}

// Has reports whether sign has been completed before.
func (r *ProgressRepository) Has(sign string) (bool, error) {
	var ok bool
	err := r.db.Get(&ok,
		`SELECT EXISTS (SELECT 1 FROM progress p JOIN lessons l ON l.id = p.lesson_id WHERE l.sign = ?)`,
		sign,
	)
	if err != nil {
		return false, fmt.Errorf("checking progress for %s: %w", sign, err)
	}
	return ok, nil
}

// List returns all progress records, most recently practiced first.
func (r *ProgressRepository) List() ([]Progress, error) {
	records := []Progress{}
	err := r.db.Select(&records,
		`SELECT p.lesson_id, l.sign, p.first_completed_at, p.last_practiced_at, p.practice_count
		 FROM progress p JOIN lessons l ON l.id = p.lesson_id
		 ORDER BY p.last_practiced_at DESC, l.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}
	return records, nil
}

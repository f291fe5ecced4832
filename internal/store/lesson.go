package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrLocked is returned when practicing a lesson that has not been unlocked.
	ErrLocked = errors.New("lesson is locked")

	// ErrInsufficientPoints is returned when the learner cannot afford an unlock.
	ErrInsufficientPoints = errors.New("not enough points to unlock lesson")
)

// Lesson is one practicable sign.
type Lesson struct {
	ID               int64  `db:"id" json:"id"`
	Category         string `db:"category" json:"category"`
	Sign             string `db:"sign" json:"sign"`
	Description      string `db:"description" json:"description"`
	UnlockCost       int    `db:"unlock_cost" json:"unlock_cost"`
	CompletionPoints int    `db:"completion_points" json:"completion_points"`
	Unlocked         bool   `db:"unlocked" json:"unlocked"`
	Mastered         bool   `db:"mastered" json:"mastered"`
}

const lessonColumns = `
	l.id, l.category, l.sign, l.description, l.unlock_cost, l.completion_points,
	EXISTS (SELECT 1 FROM unlocked_lessons u WHERE u.lesson_id = l.id) AS unlocked,
	EXISTS (SELECT 1 FROM progress p WHERE p.lesson_id = l.id) AS mastered`

// LessonRepository reads lessons and manages unlocks.
type LessonRepository struct {
	db *sqlx.DB
}

// Lessons returns the lesson repository for this store.
func (s *Store) Lessons() *LessonRepository {
	return &LessonRepository{db: s.db}
}

// List returns every lesson in curriculum order.
func (r *LessonRepository) List() ([]Lesson, error) {
	lessons := []Lesson{}
	if err := r.db.Select(&lessons, `SELECT`+lessonColumns+` FROM lessons l ORDER BY l.id`); err != nil {
		return nil, fmt.Errorf("listing lessons: %w", err)
	}
	return lessons, nil
}

// GetBySign returns the lesson for sign, matched case-insensitively.
func (r *LessonRepository) GetBySign(sign string) (*Lesson, error) {
	return getLesson(r.db, sign)
}

func getLesson(q sqlx.Queryer, sign string) (*Lesson, error) {
	var l Lesson
	err := sqlx.Get(q, &l, `SELECT`+lessonColumns+` FROM lessons l WHERE l.sign = ?`, sign)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting lesson %s: %w", sign, err)
	}
	return &l, nil
}

// Unlock spends the lesson's unlock cost from the learner's points. Unlocking
// an already unlocked lesson is a no-op.
func (r *LessonRepository) Unlock(sign string) (*Lesson, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("beginning unlock: %w", err)
	}
	defer tx.Rollback()

	l, err := getLesson(tx, sign)
	if err != nil {
		return nil, err
	}
	if l.Unlocked {
		return l, nil
	}

	var points int
	if err := tx.Get(&points, `SELECT total_points FROM profile WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("reading points: %w", err)
	}
	if points < l.UnlockCost {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientPoints, points, l.UnlockCost)
	}

	if _, err := tx.Exec(`UPDATE profile SET total_points = total_points - ? WHERE id = 1`, l.UnlockCost); err != nil {
		return nil, fmt.Errorf("spending points: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO unlocked_lessons (lesson_id) VALUES (?)`, l.ID); err != nil {
		return nil, fmt.Errorf("unlocking %s: %w", sign, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing unlock: %w", err)
	}

	l.Unlocked = true
	return l, nil
}

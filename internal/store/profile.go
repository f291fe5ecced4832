package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Profile is the local learner.
type Profile struct {
	TotalPoints     int    `db:"total_points" json:"total_points"`
	Streak          int    `db:"current_streak" json:"current_streak"`
	LastPracticedOn string `db:"last_practiced_on" json:"last_practiced_on,omitempty"`
	LeftHanded      bool   `db:"left_handed" json:"left_handed"`
}

const profileColumns = `total_points, current_streak, last_practiced_on, left_handed`

// ProfileRepository reads and updates the learner profile.
type ProfileRepository struct {
	db *sqlx.DB
}

// Profile returns the profile repository for this store.
func (s *Store) Profile() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Get returns the learner profile.
func (r *ProfileRepository) Get() (*Profile, error) {
	var p Profile
	if err := r.db.Get(&p, `SELECT `+profileColumns+` FROM profile WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// SetLeftHanded stores the learner's handedness.
func (r *ProfileRepository) SetLeftHanded(left bool) error {
	if _, err := r.db.Exec(`UPDATE profile SET left_handed = ? WHERE id = 1`, left); err != nil {
		return fmt.Errorf("updating handedness: %w", err)
	}
	return nil
}

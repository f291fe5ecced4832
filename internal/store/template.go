package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Vector is a feature vector stored as a JSON array.
type Vector []float32

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	data, err := json.Marshal([]float32(v))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(src any) error {
	var data []byte
	switch s := src.(type) {
	case string:
		data = []byte(s)
	case []byte:
		data = s
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}
	return json.Unmarshal(data, (*[]float32)(v))
}

// SignTemplate is a stored reference pose for one label.
type SignTemplate struct {
	ID       int64  `db:"id"`
	Label    string `db:"label"`
	Features Vector `db:"features"`
	Samples  int    `db:"samples"`
}

// TemplateRepository stores sign templates.
type TemplateRepository struct {
	db *sqlx.DB
}

// Templates returns the template repository for this store.
func (s *Store) Templates() *TemplateRepository {
	return &TemplateRepository{db: s.db}
}

// Replace deletes all stored templates and saves templates in their place.
func (r *TemplateRepository) Replace(templates []SignTemplate) error {
	if len(templates) == 0 {
		return errors.New("no templates to save")
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning template save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sign_templates`); err != nil {
		return fmt.Errorf("clearing templates: %w", err)
	}

	if _, err := tx.NamedExec(
		`INSERT INTO sign_templates (label, features, samples) VALUES (:label, :features, :samples)`,
		templates,
	); err != nil {
		return fmt.Errorf("saving templates: %w", err)
	}

	return tx.Commit()
}

// List returns every stored template in insertion order.
func (r *TemplateRepository) List() ([]SignTemplate, error) {
	templates := []SignTemplate{}
	if err := r.db.Select(&templates, `SELECT id, label, features, samples FROM sign_templates ORDER BY id`); err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return templates, nil
}

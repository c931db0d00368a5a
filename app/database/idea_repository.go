package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ IdeaRepository = (*IdeaSQLRepository)(nil)

// IdeaSQLRepository manages the public idea pool. The pool is append-only:
// approvals add entries and nothing here removes them.
type IdeaSQLRepository struct {
	db *DB
}

func NewIdeaRepository(db *DB) *IdeaSQLRepository {
	return &IdeaSQLRepository{db: db}
}

func (r *IdeaSQLRepository) Insert(text string) error {
	_, err := r.db.Exec(`
		INSERT INTO ideas (idea, created_at) VALUES (?, ?)
	`, text, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return fmt.Errorf("failed to insert idea: %w", err)
	}
	return nil
}

// GetRandom returns a uniformly random idea from the pool, or nil when the
// pool is empty.
func (r *IdeaSQLRepository) GetRandom() (*Idea, error) {
	row := r.db.QueryRow(`SELECT id, idea, created_at FROM ideas ORDER BY RANDOM() LIMIT 1`)

	var idea Idea
	err := row.Scan(&idea.ID, &idea.Text, &idea.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random idea: %w", err)
	}

	return &idea, nil
}

func (r *IdeaSQLRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM ideas`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ideas: %w", err)
	}
	return count, nil
}

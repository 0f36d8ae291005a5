package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/themobileprof/helpdesk-intent/internal/intent"
)

// ExampleStore persists examples added through retraining so they survive restarts
type ExampleStore struct {
	db *DB
}

// NewExampleStore creates a store on top of db
func NewExampleStore(database *DB) *ExampleStore {
	return &ExampleStore{db: database}
}

// ListExamples returns all stored examples, oldest first
func (s *ExampleStore) ListExamples(ctx context.Context) ([]intent.Example, error) {
	query := `
		SELECT id, text, intent, created_at
		FROM training_examples
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query training examples: %w", err)
	}
	defer rows.Close()

	var examples []intent.Example
	for rows.Next() {
		var te TrainingExample
		if err := rows.Scan(&te.ID, &te.Text, &te.Intent, &te.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan training example: %w", err)
		}
		examples = append(examples, intent.Example{Text: te.Text, Intent: intent.Intent(te.Intent)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training examples: %w", err)
	}

	return examples, nil
}

// SaveExamples inserts examples in a single transaction
func (s *ExampleStore) SaveExamples(ctx context.Context, examples []intent.Example) error {
	if len(examples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO training_examples (id, text, intent, created_at)
		VALUES ($1, $2, $3, $4)
	`
	now := time.Now().UTC()
	for _, ex := range examples {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), ex.Text, string(ex.Intent), now); err != nil {
			return fmt.Errorf("failed to insert training example: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit training examples: %w", err)
	}
	return nil
}

// CountExamples returns the number of stored examples
func (s *ExampleStore) CountExamples(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_examples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count training examples: %w", err)
	}
	return n, nil
}

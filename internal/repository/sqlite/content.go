package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sakif/trivia-league/internal/model"
	"github.com/sakif/trivia-league/internal/repository"
)

var (
	_ repository.QuestionRepository = (*DB)(nil)
	_ repository.CategoryRepository = (*DB)(nil)
)

// ListQuestions returns every question ordered by id.
func (db *DB) ListQuestions(ctx context.Context) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, category, question, options, answer, image
		 FROM questions
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions: %w", err)
	}
	defer rows.Close()

	questions := make([]model.Question, 0)
	for rows.Next() {
		var (
			q       model.Question
			options string
		)
		if err := rows.Scan(&q.ID, &q.Category, &q.Question, &options, &q.Answer, &q.Image); err != nil {
			return nil, fmt.Errorf("sqlite: scanning question row: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("sqlite: decoding options of question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating questions: %w", err)
	}

	return questions, nil
}

// UpsertQuestions writes all questions in one transaction, replacing any
// existing question with the same id.
func (db *DB) UpsertQuestions(ctx context.Context, questions []model.Question) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning question upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (id, category, question, options, answer, image)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			question = excluded.question,
			options  = excluded.options,
			answer   = excluded.answer,
			image    = excluded.image`)
	if err != nil {
		return fmt.Errorf("sqlite: preparing question upsert: %w", err)
	}
	defer stmt.Close()

	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("sqlite: encoding options of question %s: %w", q.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, q.ID, q.Category, q.Question, string(options), q.Answer, q.Image); err != nil {
			return fmt.Errorf("sqlite: upserting question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing question upsert: %w", err)
	}
	return nil
}

// ListCategories returns every category ordered by id.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, image FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Image); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}

	return categories, nil
}

// UpsertCategories writes all categories in one transaction.
func (db *DB) UpsertCategories(ctx context.Context, categories []model.Category) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning category upsert: %w", err)
	}
	defer tx.Rollback()

	for _, c := range categories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, description, image)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				name        = excluded.name,
				description = excluded.description,
				image       = excluded.image`,
			c.ID, c.Name, c.Description, c.Image)
		if err != nil {
			return fmt.Errorf("sqlite: upserting category %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing category upsert: %w", err)
	}
	return nil
}

// Package repository declares the storage interfaces the service layer
// depends on. Implementations live in subpackages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/trivia-league/internal/model"
)

// UserRepository stores player records.
//
// The Update* methods are merge-writes: they overwrite exactly one field of one
// record and leave every other field untouched. There is no version check, so
// concurrent writers to the same field resolve as last-write-wins.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// List returns every user. Rankings are recomputed from this full scan.
	List(ctx context.Context) ([]model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateFollowing(ctx context.Context, id string, following []string) error
	UpdatePoints(ctx context.Context, id string, points int) error
}

// QuestionRepository stores trivia questions, keyed by their caller-supplied id.
type QuestionRepository interface {
	ListQuestions(ctx context.Context) ([]model.Question, error)
	UpsertQuestions(ctx context.Context, questions []model.Question) error
}

// CategoryRepository stores question categories, keyed by their caller-supplied id.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpsertCategories(ctx context.Context, categories []model.Category) error
}

// Pinger reports store liveness for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

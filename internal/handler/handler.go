// Package handler is the HTTP layer: it parses requests, calls a service,
// and writes JSON.
//
// Handlers depend on the small interfaces below rather than on concrete
// service types, so each can be tested against whatever implementation the
// test needs.
package handler

import (
	"context"

	"github.com/sakif/trivia-league/internal/model"
	"github.com/sakif/trivia-league/internal/service"
)

type Leaderboard interface {
	GlobalRanking(ctx context.Context) ([]model.PlayerScore, error)
	PlayerView(ctx context.Context, username string) (*model.PlayerView, error)
}

type FollowGraph interface {
	Follow(ctx context.Context, follower, target string) ([]string, error)
	Unfollow(ctx context.Context, follower, target string) ([]string, error)
}

type Points interface {
	GetPoints(ctx context.Context, username string) (int, error)
	UpdatePoints(ctx context.Context, username string, newPoints *int) error
	ApplyQuizResult(ctx context.Context, username string, correct, incorrect int) (*service.QuizOutcome, error)
	Profile(ctx context.Context, username string) (*model.Profile, error)
}

type Accounts interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

type Content interface {
	ListQuestions(ctx context.Context) ([]model.Question, error)
	AddQuestions(ctx context.Context, questions []model.Question) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	AddCategories(ctx context.Context, categories []model.Category) error
}

type Suggestions interface {
	Suggest(ctx context.Context, in model.CategorySuggestion) error
}

// Authorizer decides whether the request may act as username.
type Authorizer interface {
	Authorize(ctx context.Context, username string) error
}

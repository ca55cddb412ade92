// Package seed fills a store with fake players for local demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/model"
	"github.com/sakif/trivia-league/internal/repository"
)

// DefaultPassword is the password every seeded player can log in with.
const DefaultPassword = "trivia-demo"

// MaxPoints is the upper bound of seeded scores; it reaches into Platinum.
const MaxPoints = 1500

// Hasher is the subset of auth.PasswordService the generator needs.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Follower adds one follow edge, as service.FollowService does.
type Follower interface {
	Follow(ctx context.Context, follower, target string) ([]string, error)
}

// Generator produces deterministic fake players from a seed.
type Generator struct {
	faker   *gofakeit.Faker
	users   repository.UserRepository
	follows Follower
	hasher  Hasher
	logger  *slog.Logger
}

func NewGenerator(seed int64, users repository.UserRepository, follows Follower, hasher Hasher, logger *slog.Logger) *Generator {
	return &Generator{
		faker:   gofakeit.New(uint64(seed)),
		users:   users,
		follows: follows,
		hasher:  hasher,
		logger:  logger,
	}
}

// Result summarises a Seed run.
type Result struct {
	Players []string
	Edges   int
}

// Seed creates n players with random points, then gives each up to five
// follow edges to other seeded players. Name collisions with existing
// accounts are skipped rather than treated as failures.
func (g *Generator) Seed(ctx context.Context, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("seed: player count must be positive, got %d", n)
	}

	hash, err := g.hasher.Hash(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("seed: hashing default password: %w", err)
	}

	res := &Result{}
	for i := 0; i < n; i++ {
		user := g.player(i, hash)
		if err := g.users.Create(ctx, user); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				g.logger.Warn("seed player already exists", slog.String("username", user.Username))
				continue
			}
			return res, fmt.Errorf("seed: creating %s: %w", user.Username, err)
		}
		res.Players = append(res.Players, user.Username)
	}

	if len(res.Players) < 2 {
		return res, nil
	}

	for _, name := range res.Players {
		for _, target := range g.pickTargets(name, res.Players) {
			if _, err := g.follows.Follow(ctx, name, target); err != nil {
				if errors.Is(err, apperror.ErrAlreadyFollowing) {
					continue
				}
				return res, fmt.Errorf("seed: %s following %s: %w", name, target, err)
			}
			res.Edges++
		}
	}

	g.logger.Info("seeded players",
		slog.Int("players", len(res.Players)),
		slog.Int("edges", res.Edges),
	)
	return res, nil
}

func (g *Generator) player(i int, hash string) *model.User {
	// The index suffix keeps names unique within one run.
	username := fmt.Sprintf("%s%d", strings.ToLower(g.faker.Username()), i)
	return &model.User{
		Username:        username,
		Email:           username + "@example.com",
		PasswordHash:    hash,
		KnowledgePoints: g.faker.Number(0, MaxPoints),
		Following:       []string{},
		Avatar:          g.faker.URL(),
	}
}

// pickTargets returns between 0 and 5 distinct players other than self.
func (g *Generator) pickTargets(self string, players []string) []string {
	others := make([]string, 0, len(players)-1)
	for _, p := range players {
		if p != self {
			others = append(others, p)
		}
	}
	g.faker.ShuffleAnySlice(others)
	return others[:g.faker.Number(0, min(5, len(others)))]
}

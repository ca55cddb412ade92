package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/trivia-league/internal/auth"
	sqliteRepo "github.com/sakif/trivia-league/internal/repository/sqlite"
	"github.com/sakif/trivia-league/internal/service"
)

func newTestGenerator(t *testing.T, seed int64) (*Generator, *sqliteRepo.DB) {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	follows := service.NewFollowService(db, nil, logger)
	return NewGenerator(seed, db, follows, auth.NewPasswordServiceWithCost(bcrypt.MinCost), logger), db
}

func TestSeed(t *testing.T) {
	g, db := newTestGenerator(t, 42)
	ctx := context.Background()

	res, err := g.Seed(ctx, 25)
	require.NoError(t, err)
	require.Len(t, res.Players, 25)

	users, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 25)

	edges := 0
	for _, u := range users {
		assert.GreaterOrEqual(t, u.KnowledgePoints, 0)
		assert.LessOrEqual(t, u.KnowledgePoints, MaxPoints)
		assert.NotContains(t, u.Following, u.Username, "no self edges")
		assert.LessOrEqual(t, len(u.Following), 5)
		edges += len(u.Following)
	}
	assert.Equal(t, res.Edges, edges)

	// Seeded accounts can log in with the shared password.
	ps := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	assert.NoError(t, ps.Verify(users[0].PasswordHash, DefaultPassword))
}

func TestSeed_Deterministic(t *testing.T) {
	g1, _ := newTestGenerator(t, 7)
	g2, _ := newTestGenerator(t, 7)

	r1, err := g1.Seed(context.Background(), 10)
	require.NoError(t, err)
	r2, err := g2.Seed(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, r1.Players, r2.Players)
	assert.Equal(t, r1.Edges, r2.Edges)
}

func TestSeed_SkipsExisting(t *testing.T) {
	g, _ := newTestGenerator(t, 3)
	ctx := context.Background()

	_, err := g.Seed(ctx, 5)
	require.NoError(t, err)

	// Same seed on the same store regenerates the same names.
	again := NewGenerator(3, g.users, g.follows, g.hasher, g.logger)
	res, err := again.Seed(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, res.Players)
}

func TestSeed_InvalidCount(t *testing.T) {
	g, _ := newTestGenerator(t, 1)
	_, err := g.Seed(context.Background(), 0)
	assert.Error(t, err)
}

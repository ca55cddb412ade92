package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/trivia-league/internal/auth"
	"github.com/sakif/trivia-league/internal/handler"
	"github.com/sakif/trivia-league/internal/mailer"
	"github.com/sakif/trivia-league/internal/model"
	sqliteRepo "github.com/sakif/trivia-league/internal/repository/sqlite"
	"github.com/sakif/trivia-league/internal/service"
)

const testSecret = "handler-test-secret-0123456789"

// testAPI wires real services over an in-memory database behind a chi
// router with the same paths the server registers.
type testAPI struct {
	t      *testing.T
	router chi.Router
	db     *sqliteRepo.DB
	tokens *auth.TokenService
	mail   *recordingMailer
}

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestAPI(t *testing.T, withAuth bool) *testAPI {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var tokens *auth.TokenService
	if withAuth {
		tokens, err = auth.NewTokenService(testSecret, time.Hour)
		require.NoError(t, err)
	}
	guard := auth.NewGuard(tokens)
	mail := &recordingMailer{}

	leaderboard := handler.NewLeaderboardHandler(
		service.NewLeaderboardService(db, nil, logger),
		service.NewFollowService(db, nil, logger),
		guard, logger)
	points := handler.NewPointsHandler(service.NewPointsService(db, nil, logger), guard, logger)
	accounts := handler.NewAccountHandler(
		service.NewAccountService(db, auth.NewPasswordServiceWithCost(bcrypt.MinCost), tokens, logger),
		time.Hour, logger)
	content := handler.NewContentHandler(
		service.NewContentService(db, db, logger),
		service.NewSuggestionService(mail, "support@example.com", logger),
		logger)
	health := handler.NewHealthHandler(db, logger)

	r := chi.NewRouter()
	r.Use(guard.LoadSession)
	r.Get("/leaderboard", leaderboard.HandleGlobal)
	r.Get("/leaderboard/{username}", leaderboard.HandlePlayerView)
	r.Post("/follow/{username}/{playerToFollow}", leaderboard.HandleFollow)
	r.Post("/unfollow/{username}/{playerToUnfollow}", leaderboard.HandleUnfollow)
	r.Get("/getUserPoints/{username}", points.HandleGetPoints)
	r.Post("/updatePoints", points.HandleUpdatePoints)
	r.Post("/quizResult", points.HandleQuizResult)
	r.Get("/profile/{username}", points.HandleProfile)
	r.Get("/me", points.HandleMe)
	r.Post("/register", accounts.HandleRegister)
	r.Post("/login", accounts.HandleLogin)
	r.Post("/logout", accounts.HandleLogout)
	r.Get("/data", content.HandleListQuestions)
	r.Post("/addquestions", content.HandleAddQuestions)
	r.Get("/datacategories", content.HandleListCategories)
	r.Post("/addcategories", content.HandleAddCategories)
	r.Post("/suggestcategory", content.HandleSuggestCategory)
	r.Get("/healthz", health.HandleHealth)

	return &testAPI{t: t, router: r, db: db, tokens: tokens, mail: mail}
}

// addPlayer inserts a player directly, bypassing registration.
func (a *testAPI) addPlayer(username string, points int, following ...string) {
	a.t.Helper()
	err := a.db.Create(context.Background(), &model.User{
		Username:        username,
		Email:           username + "@example.com",
		PasswordHash:    "unused",
		KnowledgePoints: points,
		Following:       following,
	})
	require.NoError(a.t, err)
}

func (a *testAPI) tokenFor(username string) string {
	a.t.Helper()
	token, err := a.tokens.Generate(username)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path, body, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func errorType(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rr).Error
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/trivia-league/internal/auth"
	"github.com/sakif/trivia-league/internal/config"
	"github.com/sakif/trivia-league/internal/mailer"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           0,
		DBPath:         ":memory:",
		JWTSecret:      "server-test-secret-0123456789",
		TokenTTL:       time.Hour,
		LogLevel:       "error",
		LogFormat:      "text",
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		SupportEmail:   "support@example.com",
		MetricsEnabled: true,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(cfg, logger,
		WithMailer(mailer.NewLog(logger)),
		WithPasswordService(auth.NewPasswordServiceWithCost(bcrypt.MinCost)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func call(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// TestServer_EndToEnd drives a full session: two players register, log in,
// play, follow each other and read the leaderboards.
func TestServer_EndToEnd(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	register := func(name string) string {
		rr := call(t, h, http.MethodPost, "/register",
			`{"username":"`+name+`","email":"`+name+`@example.com","password":"pw-`+name+`"}`, "")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		rr = call(t, h, http.MethodPost, "/login",
			`{"email":"`+name+`@example.com","password":"pw-`+name+`"}`, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var body struct{ Token string }
		require.NoError(t, jsonDecode(rr, &body))
		return body.Token
	}
	alice := register("alice")
	bob := register("bob")

	rr := call(t, h, http.MethodPost, "/quizResult", `{"username":"alice","correct":35,"incorrect":0}`, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"knowledge_points":350,"league":"Gold"}`, rr.Body.String())

	rr = call(t, h, http.MethodPost, "/updatePoints", `{"username":"bob","newPoints":320}`, bob)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, h, http.MethodPost, "/follow/alice/bob", "", alice)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, h, http.MethodPost, "/follow/bob/alice", "", alice)
	assert.Equal(t, http.StatusForbidden, rr.Code, "alice cannot act as bob")

	rr = call(t, h, http.MethodGet, "/leaderboard", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"username":"alice","knowledgePoints":350},{"username":"bob","knowledgePoints":320}]`, rr.Body.String())

	rr = call(t, h, http.MethodGet, "/leaderboard/alice", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"currentLeague":"Gold",
		"sortedPlayers":[{"username":"alice","knowledgePoints":350},{"username":"bob","knowledgePoints":320}],
		"followingPlayers":[{"username":"bob","knowledgePoints":320}]
	}`, rr.Body.String())

	rr = call(t, h, http.MethodGet, "/me", "", bob)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"bob"`)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	rr := call(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	call(t, h, http.MethodGet, "/leaderboard/ghost", "", "")

	rr = call(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(),
		`trivia_http_requests_total{method="GET",route="/leaderboard/{username}",status="404"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	h := newTestServer(t, cfg).Handler()

	rr := call(t, h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_OpenWhenAuthDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""
	h := newTestServer(t, cfg).Handler()

	rr := call(t, h, http.MethodPost, "/register", `{"username":"alice","email":"alice@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = call(t, h, http.MethodPost, "/updatePoints", `{"username":"alice","newPoints":42}`, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_RateLimitsMutations(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 2
	h := newTestServer(t, cfg).Handler()

	for i := 0; i < 2; i++ {
		rr := call(t, h, http.MethodPost, "/logout", "", "")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := call(t, h, http.MethodPost, "/logout", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// Reads are not limited.
	rr = call(t, h, http.MethodGet, "/leaderboard", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(testConfig(), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func jsonDecode(rr *httptest.ResponseRecorder, v any) error {
	return json.NewDecoder(rr.Body).Decode(v)
}

package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/league"
	"github.com/sakif/trivia-league/internal/metrics"
	"github.com/sakif/trivia-league/internal/model"
	"github.com/sakif/trivia-league/internal/repository"
)

// LeaderboardService computes rankings from the full set of users.
//
// Nothing is cached: every call scans the user store and recomputes leagues,
// so a ranking always reflects the latest committed points.
type LeaderboardService struct {
	users   repository.UserRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewLeaderboardService(users repository.UserRepository, m *metrics.Metrics, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{users: users, metrics: m, logger: logger}
}

// GlobalRanking returns every user ordered by knowledge points, highest first.
// Equal scores are ordered by username so the output is reproducible.
func (s *LeaderboardService) GlobalRanking(ctx context.Context) ([]model.PlayerScore, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(s.logger, "listing users for ranking", err)
	}
	s.metrics.SetLeaderboardSize(len(users))

	return rankScores(users, nil), nil
}

// PlayerView returns the league and following leaderboards for username.
//
// LeaguePeers holds every user in the player's league (the player included).
// FollowingPeers holds the users named in the player's following list;
// names that no longer match a user are skipped.
func (s *LeaderboardService) PlayerView(ctx context.Context, username string) (*model.PlayerView, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(s.logger, "listing users for player view", err)
	}
	s.metrics.SetLeaderboardSize(len(users))

	player := findUser(users, username)
	if player == nil {
		return nil, apperror.NotFound("user", username)
	}

	current := league.Classify(player.KnowledgePoints)
	following := make(map[string]struct{}, len(player.Following))
	for _, name := range player.Following {
		following[name] = struct{}{}
	}

	return &model.PlayerView{
		CurrentLeague: current.String(),
		LeaguePeers: rankScores(users, func(u *model.User) bool {
			return league.Classify(u.KnowledgePoints) == current
		}),
		FollowingPeers: rankScores(users, func(u *model.User) bool {
			_, ok := following[u.Username]
			return ok
		}),
	}, nil
}

// rankScores projects the users that pass keep (all of them when keep is nil)
// onto score rows and sorts them with compareScores. The result is never nil.
func rankScores(users []model.User, keep func(*model.User) bool) []model.PlayerScore {
	scores := make([]model.PlayerScore, 0, len(users))
	for i := range users {
		if keep == nil || keep(&users[i]) {
			scores = append(scores, users[i].Score())
		}
	}
	slices.SortFunc(scores, compareScores)
	return scores
}

// compareScores orders by points descending, then username ascending.
func compareScores(a, b model.PlayerScore) int {
	if c := cmp.Compare(b.KnowledgePoints, a.KnowledgePoints); c != 0 {
		return c
	}
	return strings.Compare(a.Username, b.Username)
}

func findUser(users []model.User, username string) *model.User {
	for i := range users {
		if users[i].Username == username {
			return &users[i]
		}
	}
	return nil
}

package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/metrics"
	"github.com/sakif/trivia-league/internal/repository"
)

// FollowService maintains the one-way follow graph.
//
// An edge lives only on the follower's record. Follow and Unfollow rewrite
// the follower's following list and nothing else; the target's record is
// never touched. Each operation either writes the full new list or leaves
// the record unchanged.
type FollowService struct {
	users   repository.UserRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewFollowService(users repository.UserRepository, m *metrics.Metrics, logger *slog.Logger) *FollowService {
	return &FollowService{users: users, metrics: m, logger: logger}
}

// Follow adds target to follower's following list and returns the new list.
//
// Errors:
//   - NotFound if either user does not exist
//   - InvalidOperation if follower and target are the same user
//   - AlreadyFollowing if the edge already exists
func (s *FollowService) Follow(ctx context.Context, follower, target string) ([]string, error) {
	following, err := s.follow(ctx, follower, target)
	s.observe(metrics.OpFollow, err)
	return following, err
}

func (s *FollowService) follow(ctx context.Context, follower, target string) ([]string, error) {
	if err := requireNames(follower, target); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(s.logger, "listing users for follow", err)
	}

	user := findUser(users, follower)
	if user == nil {
		return nil, apperror.NotFound("user", follower)
	}
	if findUser(users, target) == nil {
		return nil, apperror.NotFound("user", target)
	}
	if follower == target {
		return nil, apperror.InvalidOperation("players cannot follow themselves")
	}
	if user.Follows(target) {
		return nil, apperror.AlreadyFollowing(follower, target)
	}

	updated := append(slices.Clone(user.Following), target)
	if err := s.users.UpdateFollowing(ctx, user.ID, updated); err != nil {
		return nil, storeError(s.logger, "updating following", err)
	}

	s.logger.Info("follow edge added",
		slog.String("follower", follower),
		slog.String("target", target),
	)
	return updated, nil
}

// Unfollow removes target from follower's following list and returns the new
// list. The target need not exist: a dangling name left behind by a removed
// account can still be unfollowed.
//
// Errors:
//   - NotFound if follower does not exist
//   - NotInFollowing if the edge does not exist
func (s *FollowService) Unfollow(ctx context.Context, follower, target string) ([]string, error) {
	following, err := s.unfollow(ctx, follower, target)
	s.observe(metrics.OpUnfollow, err)
	return following, err
}

func (s *FollowService) unfollow(ctx context.Context, follower, target string) ([]string, error) {
	if err := requireNames(follower, target); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, follower)
	if err != nil {
		return nil, storeError(s.logger, "loading follower", err)
	}
	if !user.Follows(target) {
		return nil, apperror.NotInFollowing(follower, target)
	}

	updated := slices.DeleteFunc(slices.Clone(user.Following), func(name string) bool {
		return name == target
	})
	if err := s.users.UpdateFollowing(ctx, user.ID, updated); err != nil {
		return nil, storeError(s.logger, "updating following", err)
	}

	s.logger.Info("follow edge removed",
		slog.String("follower", follower),
		slog.String("target", target),
	)
	return updated, nil
}

func (s *FollowService) observe(op string, err error) {
	switch {
	case err == nil:
		s.metrics.ObserveFollowMutation(op, metrics.ResultOK)
	case isStoreFailure(err):
		s.metrics.ObserveFollowMutation(op, metrics.ResultError)
	default:
		s.metrics.ObserveFollowMutation(op, metrics.ResultRejected)
	}
}

func requireNames(follower, target string) error {
	if strings.TrimSpace(follower) == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if strings.TrimSpace(target) == "" {
		return apperror.ValidationFailed("target", "target username is required")
	}
	return nil
}


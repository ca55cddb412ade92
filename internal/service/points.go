package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/league"
	"github.com/sakif/trivia-league/internal/metrics"
	"github.com/sakif/trivia-league/internal/model"
	"github.com/sakif/trivia-league/internal/repository"
)

// Quiz scoring.
const (
	PointsPerCorrect   = 10
	PointsPerIncorrect = 15

	// MaxAnswersPerQuiz bounds each count in a single quiz result.
	MaxAnswersPerQuiz = 1000
)

// QuizOutcome is the player's state after a quiz result has been applied.
type QuizOutcome struct {
	KnowledgePoints int
	League          league.Tier
}

// PointsService reads and writes knowledge points and builds profiles.
type PointsService struct {
	users   repository.UserRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewPointsService(users repository.UserRepository, m *metrics.Metrics, logger *slog.Logger) *PointsService {
	return &PointsService{users: users, metrics: m, logger: logger}
}

func (s *PointsService) GetPoints(ctx context.Context, username string) (int, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.KnowledgePoints, nil
}

// UpdatePoints overwrites the player's knowledge points. A nil value means
// the field was missing from the request. Negative values are stored as 0.
func (s *PointsService) UpdatePoints(ctx context.Context, username string, newPoints *int) error {
	if newPoints == nil {
		return apperror.ValidationFailed("newPoints", "newPoints is required")
	}

	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	return s.write(ctx, user, max(*newPoints, 0))
}

// ApplyQuizResult adds PointsPerCorrect for each correct answer and removes
// PointsPerIncorrect for each incorrect one. Counts above MaxAnswersPerQuiz
// are rejected. The total never drops below 0 and saturates at math.MaxInt.
func (s *PointsService) ApplyQuizResult(ctx context.Context, username string, correct, incorrect int) (*QuizOutcome, error) {
	if correct < 0 {
		return nil, apperror.ValidationFailed("correct", "correct must not be negative")
	}
	if incorrect < 0 {
		return nil, apperror.ValidationFailed("incorrect", "incorrect must not be negative")
	}
	if correct > MaxAnswersPerQuiz {
		return nil, apperror.ValidationFailed("correct", fmt.Sprintf("correct must be at most %d", MaxAnswersPerQuiz))
	}
	if incorrect > MaxAnswersPerQuiz {
		return nil, apperror.ValidationFailed("incorrect", fmt.Sprintf("incorrect must be at most %d", MaxAnswersPerQuiz))
	}

	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	points := addPoints(user.KnowledgePoints, correct*PointsPerCorrect-incorrect*PointsPerIncorrect)
	if err := s.write(ctx, user, points); err != nil {
		return nil, err
	}

	return &QuizOutcome{KnowledgePoints: points, League: league.Classify(points)}, nil
}

// Profile is the public view of a player. The league is derived from the
// current points on every call.
func (s *PointsService) Profile(ctx context.Context, username string) (*model.Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	p := &model.Profile{
		Username:        user.Username,
		KnowledgePoints: user.KnowledgePoints,
		League:          league.Classify(user.KnowledgePoints).String(),
	}
	if user.Avatar != "" {
		avatar := user.Avatar
		p.Avatar = &avatar
	}
	return p, nil
}

func (s *PointsService) lookup(ctx context.Context, username string) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeError(s.logger, "loading user", err)
	}
	return user, nil
}

func (s *PointsService) write(ctx context.Context, user *model.User, points int) error {
	if err := s.users.UpdatePoints(ctx, user.ID, points); err != nil {
		return storeError(s.logger, "updating points", err)
	}
	s.metrics.ObservePointsUpdate()
	s.logger.Info("points updated",
		slog.String("username", user.Username),
		slog.Int("from", user.KnowledgePoints),
		slog.Int("to", points),
	)
	return nil
}

// addPoints applies delta to points, clamping the result to [0, math.MaxInt].
func addPoints(points, delta int) int {
	if delta > 0 && points > math.MaxInt-delta {
		return math.MaxInt
	}
	return max(points+delta, 0)
}

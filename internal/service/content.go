package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/model"
	"github.com/sakif/trivia-league/internal/repository"
)

// Content limits.
const (
	MinQuestionOptions = 2
	MaxBatchSize       = 500
)

// ContentService manages the question bank and the category list.
// Both are upserted in batches keyed by the caller's ids.
type ContentService struct {
	questions  repository.QuestionRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewContentService(
	questions repository.QuestionRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{questions: questions, categories: categories, logger: logger}
}

func (s *ContentService) ListQuestions(ctx context.Context) ([]model.Question, error) {
	qs, err := s.questions.ListQuestions(ctx)
	if err != nil {
		return nil, storeError(s.logger, "listing questions", err)
	}
	return qs, nil
}

// AddQuestions validates every question before writing any of them, so a
// bad item rejects the whole batch.
func (s *ContentService) AddQuestions(ctx context.Context, questions []model.Question) error {
	if err := checkBatch(len(questions)); err != nil {
		return err
	}
	for i := range questions {
		if err := validateQuestion(i, &questions[i]); err != nil {
			return err
		}
	}

	if err := s.questions.UpsertQuestions(ctx, questions); err != nil {
		return storeError(s.logger, "upserting questions", err)
	}
	s.logger.Info("questions upserted", slog.Int("count", len(questions)))
	return nil
}

func (s *ContentService) ListCategories(ctx context.Context) ([]model.Category, error) {
	cs, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, storeError(s.logger, "listing categories", err)
	}
	return cs, nil
}

func (s *ContentService) AddCategories(ctx context.Context, categories []model.Category) error {
	if err := checkBatch(len(categories)); err != nil {
		return err
	}
	for i, c := range categories {
		if strings.TrimSpace(c.ID) == "" {
			return apperror.ValidationFailed("id", fmt.Sprintf("category %d: id is required", i))
		}
	}

	if err := s.categories.UpsertCategories(ctx, categories); err != nil {
		return storeError(s.logger, "upserting categories", err)
	}
	s.logger.Info("categories upserted", slog.Int("count", len(categories)))
	return nil
}

func checkBatch(n int) error {
	if n == 0 {
		return apperror.ValidationFailed("body", "expected a non-empty array")
	}
	if n > MaxBatchSize {
		return apperror.ValidationFailed("body", fmt.Sprintf("at most %d items per request", MaxBatchSize))
	}
	return nil
}

func validateQuestion(i int, q *model.Question) error {
	switch {
	case strings.TrimSpace(q.ID) == "":
		return apperror.ValidationFailed("id", fmt.Sprintf("question %d: id is required", i))
	case strings.TrimSpace(q.Question) == "":
		return apperror.ValidationFailed("question", fmt.Sprintf("question %s: text is required", q.ID))
	case len(q.Options) < MinQuestionOptions:
		return apperror.ValidationFailed("options",
			fmt.Sprintf("question %s: at least %d options are required", q.ID, MinQuestionOptions))
	case !slices.Contains(q.Options, q.Answer):
		return apperror.ValidationFailed("answer", fmt.Sprintf("question %s: answer must be one of the options", q.ID))
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/mailer"
	"github.com/sakif/trivia-league/internal/model"
)

const suggestionSubject = "New category suggestion"

// SuggestionService forwards category suggestions to the support inbox.
type SuggestionService struct {
	mailer  mailer.Mailer
	support string
	logger  *slog.Logger
}

// NewSuggestionService sends from and to the support address.
func NewSuggestionService(m mailer.Mailer, supportEmail string, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{mailer: m, support: supportEmail, logger: logger}
}

func (s *SuggestionService) Suggest(ctx context.Context, in model.CategorySuggestion) error {
	if strings.TrimSpace(in.CategoryName) == "" {
		return apperror.ValidationFailed("categoryName", "categoryName is required")
	}
	if strings.TrimSpace(in.CategoryDescription) == "" {
		return apperror.ValidationFailed("categoryDescription", "categoryDescription is required")
	}

	username := in.Username
	if username == "" {
		username = "an anonymous player"
	}

	msg := mailer.Message{
		From:    s.support,
		To:      []string{s.support},
		Subject: suggestionSubject,
		Body: fmt.Sprintf("%s suggested a new category.\n\nName: %s\nDescription: %s\n",
			username, in.CategoryName, in.CategoryDescription),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("sending category suggestion failed",
			slog.String("category", in.CategoryName),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/suggestion: sending mail: %w", err)
	}

	s.logger.Info("category suggestion sent",
		slog.String("category", in.CategoryName),
		slog.String("username", in.Username),
	)
	return nil
}

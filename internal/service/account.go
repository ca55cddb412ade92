package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/auth"
	"github.com/sakif/trivia-league/internal/model"
	"github.com/sakif/trivia-league/internal/repository"
)

// MaxUsernameLength bounds usernames; they appear in URLs and rankings.
const MaxUsernameLength = 32

// AccountService handles registration and login.
//
//	AccountHandler (HTTP) → AccountService → UserRepository (DB)
//	                      ↘ PasswordService (bcrypt)
//	                      ↘ TokenService (JWT, optional)
//
// tokens may be nil. The service then runs without sessions: Login still
// checks credentials but issues no token.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// RegisterInput is what a new player submits.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult bundles the authenticated user with the session token so the
// handler can set the cookie and respond in one step. Token is empty when
// sessions are disabled.
type LoginResult struct {
	User  *model.User
	Token string
}

// Register creates a player with zero points and an empty following list.
//
// Username and email must both be unused. The email check runs first so the
// common "already have an account" mistake gets the clearer message.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	if err := s.ensureUnused(ctx, "email", in.Email, s.users.GetByEmail); err != nil {
		return nil, err
	}
	if err := s.ensureUnused(ctx, "username", in.Username, s.users.GetByUsername); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:        in.Username,
		Email:           in.Email,
		PasswordHash:    hash,
		KnowledgePoints: 0,
		Following:       []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(s.logger, "creating user", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks credentials and, when sessions are enabled, issues a token
// whose subject is the username. An unknown email and a wrong password
// produce the same Unauthorized error.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, storeError(s.logger, "loading user by email", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash unusable",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.Unauthorized("invalid email or password")
	}

	result := &LoginResult{User: user}
	if s.tokens != nil {
		token, err := s.tokens.Generate(user.Username)
		if err != nil {
			return nil, fmt.Errorf("service/account: generating token for %s: %w", user.Username, err)
		}
		result.Token = token
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))
	return result, nil
}

func (s *AccountService) ensureUnused(
	ctx context.Context,
	field, value string,
	get func(context.Context, string) (*model.User, error),
) error {
	_, err := get(ctx, value)
	switch {
	case err == nil:
		return apperror.Conflict(field, value)
	case errors.Is(err, apperror.ErrNotFound):
		return nil
	default:
		return storeError(s.logger, "checking "+field, err)
	}
}

func validateRegistration(in RegisterInput) error {
	if in.Username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if len(in.Username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or fewer", MaxUsernameLength))
	}
	if strings.ContainsAny(in.Username, "/ \t\n") {
		return apperror.ValidationFailed("username", "username must not contain slashes or whitespace")
	}
	if in.Email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperror.ValidationFailed("email", "email is not a valid address")
	}
	if in.Password == "" {
		return apperror.ValidationFailed("password", "password is required")
	}
	return nil
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	repo "github.com/oksasatya/go-books-api/internal/domain/repository"
	"github.com/oksasatya/go-books-api/pkg/apperror"
	"github.com/oksasatya/go-books-api/pkg/helpers"
	"github.com/oksasatya/go-books-api/pkg/mailer"
	"github.com/oksasatya/go-books-api/pkg/validation"
)

const (
	MsgNotLoggedIn        = "You are not logged in! Please log in to get access."
	MsgTokenExpired       = "Your token has expired! Please log in again."
	MsgTokenInvalid       = "Invalid token. Please log in again!"
	MsgUserGone           = "The user belonging to this token does no longer exist."
	MsgMissingCredentials = "Please enter email and password"
	MsgWrongCredentials   = "Please enter correct email and password"
)

type AuthService struct {
	Users   repo.UserRepository
	Tokens  TokenService
	Hasher  PasswordHasher
	Jobs    JobPublisher // nil disables welcome emails
	Logger  *logrus.Logger
	AppName string
}

func NewAuthService(users repo.UserRepository, tokens TokenService, hasher PasswordHasher, jobs JobPublisher, logger *logrus.Logger, appName string) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Hasher: hasher, Jobs: jobs, Logger: logger, AppName: appName}
}

type SignupInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is a signed token and the identity it belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Signup validates the input, stores the user with a hashed password and
// returns a token for it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.sendWelcome(ctx, u)
	return res, nil
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperror.Validation(MsgMissingCredentials)
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Unauthenticated(MsgWrongCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !s.Hasher.Compare(u.Password, in.Password) {
		return nil, apperror.Unauthenticated(MsgWrongCredentials)
	}
	return s.issue(u)
}

// Authenticate resolves an Authorization header value to the user it was
// issued for.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*entity.User, error) {
	token, ok := bearerToken(header)
	if !ok {
		return nil, apperror.Unauthenticated(MsgNotLoggedIn)
	}

	claims, err := s.Tokens.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return nil, apperror.Unauthenticated(MsgTokenExpired)
		}
		return nil, &apperror.Error{Kind: apperror.KindUnauthenticated, Message: MsgTokenInvalid, Err: err}
	}

	u, err := s.Users.GetByID(ctx, claims.Subject)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Unauthenticated(MsgUserGone)
	}
	if err != nil {
		return nil, fmt.Errorf("load token user: %w", err)
	}
	return u, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// sendWelcome queues the welcome email. Failures are logged only.
func (s *AuthService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Jobs == nil {
		return
	}
	job := mailer.WelcomeJob(u.Email, u.Name, s.AppName)
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Jobs.PublishJSON(c, job); err != nil {
		helpers.LogWarn(s.Logger, "publish welcome email failed", err, logrus.Fields{"user_id": u.ID})
	}
}

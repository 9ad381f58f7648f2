package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"todo_server/internal/common"
	"todo_server/internal/common/security"
	"todo_server/internal/common/validation"
	"todo_server/internal/domain/model"
	"todo_server/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	limiter  LoginLimiter
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, hasher security.PasswordHasher, limiter LoginLimiter, logger *slog.Logger) *UserService {
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{userRepo: userRepo, hasher: hasher, limiter: limiter, logger: logger}
}

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest carries the only two mutable user fields. Both are required.
type UpdateUserRequest struct {
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (s *UserService) CreateUser(ctx context.Context, req SignupRequest) (*model.User, error) {
	if err := validation.User(req.Username, req.Email, req.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on duplicate username or email
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login returns the stored user when username and password match. The
// caller issues the token.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*model.User, error) {
	locked, err := s.limiter.Locked(ctx, req.Username)
	if err != nil {
		s.logger.WarnContext(ctx, "login limiter unavailable", "error", err)
	}
	if locked {
		return nil, common.NewAuthError(common.AuthTooManyAttempts)
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.recordFailure(ctx, req.Username)
			return nil, common.NewAuthError(common.AuthUserNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, req.Username)
		return nil, common.NewAuthError(common.AuthBadCredentials)
	}

	if err := s.limiter.Reset(ctx, req.Username); err != nil {
		s.logger.WarnContext(ctx, "login limiter reset failed", "error", err)
	}
	return user, nil
}

func (s *UserService) recordFailure(ctx context.Context, username string) {
	if err := s.limiter.RecordFailure(ctx, username); err != nil {
		s.logger.WarnContext(ctx, "login limiter record failed", "error", err)
	}
}

// UpdateUser replaces the email and password of user id. The username is
// never touched.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, selfLookupError(err)
	}

	if err := validation.User(user.Username, req.Email, req.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Email = req.Email
	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, selfLookupError(err)
	}
	return user, nil
}

// DeleteUser removes user id. Their todos go with them.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return selfLookupError(err)
	}
	return nil
}

// selfLookupError handles a user that passed the gate but no longer exists,
// e.g. deleted while their token is still valid.
func selfLookupError(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewAuthError(common.AuthUnauthorized)
	}
	return fmt.Errorf("user storage: %w", err)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrmmllrs/test-app-backend/internal/model"
	"github.com/jrmmllrs/test-app-backend/internal/repository"
)

// ErrSelfDeletion guards admins from removing their own account.
var ErrSelfDeletion = errors.New("cannot delete your own account")

// UserService manages platform accounts. Admin only, enforced upstream.
type UserService struct {
	users *repository.UserRepository
	auth  *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

// List returns every account with department names resolved.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Get returns one account by ID.
func (s *UserService) Get(ctx context.Context, id int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Create provisions an account with a hashed password.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	taken, err := s.users.EmailExists(ctx, req.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.Role(req.Role),
		DepartmentID: req.DepartmentID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Update edits an account. An empty password leaves the hash untouched;
// an empty role keeps the current one.
func (s *UserService) Update(ctx context.Context, id int, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.users.EmailExists(ctx, req.Email, id)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	user.Name = req.Name
	user.Email = req.Email
	user.DepartmentID = req.DepartmentID
	if req.Role != "" {
		user.Role = model.Role(req.Role)
	}

	hash := ""
	if req.Password != "" {
		hash, err = s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.users.Update(ctx, user, hash); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes an account. Principals cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, p Principal, id int) error {
	if p.ID == id {
		return ErrSelfDeletion
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// Departments lists the active candidate departments.
func (s *UserService) Departments(ctx context.Context) ([]model.Department, error) {
	return s.users.ListDepartments(ctx)
}

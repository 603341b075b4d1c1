package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
	"beanbrew/internal/repos"
	"beanbrew/internal/validate"
)

var ErrBadCreds = errors.New("invalid username or password")

type AuthService struct {
	Users *repos.UserRepo
	// Cost is the bcrypt cost for new passwords; zero means bcrypt.DefaultCost.
	Cost int
}

func (s *AuthService) Login(ctx context.Context, sid, username, password string) (*domain.User, error) {
	u, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, sid)
}

// CreateUser registers a staff or admin account.
func (s *AuthService) CreateUser(ctx context.Context, username, password, name, role string) (*domain.User, error) {
	username, ok := validate.Username(username)
	if !ok {
		return nil, domain.Invalid("username", "3-32 letters, digits, '.', '_' or '-'")
	}
	if !validate.Password(password) {
		return nil, domain.Invalid("password", "4-72 characters")
	}
	if name, ok = validate.Name(name); !ok {
		return nil, domain.Invalid("name", "required, at most 80 characters")
	}
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		return nil, domain.Invalid("role", "must be ADMIN or STAFF")
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	u := domain.User{ID: uuid.NewString(), Username: username, Name: name, Hash: string(h), Role: role}
	if err := s.Users.Insert(ctx, u); err != nil {
		return nil, err
	}
	applog.Audit(nil, "auth.create_user", map[string]any{"user_id": u.ID, "username": u.Username, "role": u.Role})
	return &u, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.Users.DeleteUser(ctx, id); err != nil {
		return err
	}
	applog.Audit(nil, "auth.delete_user", map[string]any{"user_id": id})
	return nil
}

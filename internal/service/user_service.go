package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hac-portal/internal/domain"
	"hac-portal/internal/repository"
)

// ErrInvalidCredentials indicates that provided login credentials are incorrect.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserSeed is one configured directory entry. Password is hashed during
// seeding; PasswordHash, when set, is stored as-is and wins over
// Password.
type UserSeed struct {
	Username           string
	Password           string
	PasswordHash       string
	DailyHours         float64
	Role               domain.Role
	CanBackfill        bool
	CanManageInventory bool
}

// UserService describes directory lookups and authentication.
type UserService interface {
	Seed(ctx context.Context, seeds []UserSeed) error
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Seed upserts the configured user directory. Runs at startup so config
// edits (quota changes, new hires) take effect on restart.
func (s *userService) Seed(ctx context.Context, seeds []UserSeed) error {
	for _, seed := range seeds {
		username := strings.TrimSpace(seed.Username)
		if username == "" {
			return errors.New("seed user without username")
		}

		hash := seed.PasswordHash
		if hash == "" {
			if seed.Password == "" {
				return fmt.Errorf("seed user %s: password or password hash required", username)
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", username, err)
			}
			hash = string(hashed)
		}

		role := seed.Role
		if role == "" {
			role = domain.RoleEmployee
		}
		if role != domain.RoleAdmin && role != domain.RoleEmployee {
			return fmt.Errorf("seed user %s: unknown role %q", username, role)
		}
		if seed.DailyHours < 0 {
			return fmt.Errorf("seed user %s: daily hours must not be negative", username)
		}

		user := &domain.User{
			Username:           username,
			PasswordHash:       hash,
			DailyHours:         seed.DailyHours,
			Role:               role,
			CanBackfill:        seed.CanBackfill,
			CanManageInventory: seed.CanManageInventory,
		}
		if _, err := s.users.Upsert(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", username, err)
		}
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	sanitized := make([]domain.User, len(users))
	for i := range users {
		sanitized[i] = *sanitizeUser(&users[i])
	}
	return sanitized, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}

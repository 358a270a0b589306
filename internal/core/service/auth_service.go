package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
)

// AuthService implements registration, login and profile lookup.
// Registration also creates the user's character.
type AuthService struct {
	repo            ports.AuthRepository
	characters      ports.CharacterRepository
	jwtSecret       string
	tokenTTL        time.Duration
	startingBalance int64
}

func NewAuthService(repo ports.AuthRepository, characters ports.CharacterRepository, jwtSecret string, tokenTTL time.Duration, startingBalance int64) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if startingBalance < 0 {
		startingBalance = 0
	}
	return &AuthService{
		repo:            repo,
		characters:      characters,
		jwtSecret:       jwtSecret,
		tokenTTL:        tokenTTL,
		startingBalance: startingBalance,
	}
}

// Register opens a player account. Admin accounts only come from EnsureAdmin.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, *domain.Character, error) {
	return s.register(ctx, in, domain.RolePlayer)
}

// EnsureAdmin creates the bootstrap admin account unless it already exists.
// An existing player with the same username is refused.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	existing, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("bootstrap admin %q: %w", username, domain.ErrUserExists)
		}
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	user, _, err := s.register(ctx, ports.RegisterInput{Username: username, Password: password}, domain.RoleAdmin)
	return user, err
}

func (s *AuthService) register(ctx context.Context, in ports.RegisterInput, role string) (*domain.User, *domain.Character, error) {
	if in.Username == "" || in.Password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Balance:      s.startingBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	character := &domain.Character{
		ID:        uuid.NewString(),
		UserID:    created.ID,
		Name:      created.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.characters.Create(ctx, character); err != nil {
		// A user without a character cannot play and blocks its username.
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), created.ID); delErr != nil {
			return nil, nil, fmt.Errorf("create character: %w (user %s left behind: %v)", err, created.ID, delErr)
		}
		return nil, nil, fmt.Errorf("create character: %w", err)
	}
	return created, character, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Profile returns the user and their character.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, *domain.Character, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	character, err := s.characters.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, character, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

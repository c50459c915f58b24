package service

import (
	"context"
	"errors"
	"time"

	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// authServiceImpl is the production implementation of AuthService.
type authServiceImpl struct {
	repo   repository.AdminRepository
	secret []byte
	ttl    time.Duration
}

// NewAuthService creates an AuthService signing tokens with secret, valid
// for ttl.
func NewAuthService(repo repository.AdminRepository, secret []byte, ttl time.Duration) AuthService {
	return &authServiceImpl{repo: repo, secret: secret, ttl: ttl}
}

func (s *authServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a comparison anyway so unknown usernames cost the same as
			// wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return auth.CreateToken(admin.Username, s.secret, s.ttl)
}

func (s *authServiceImpl) Verify(token string) (string, error) {
	return auth.VerifyToken(token, s.secret)
}

// dummyHash is a bcrypt hash of a throwaway value, used to keep login timing
// uniform when the username does not exist.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

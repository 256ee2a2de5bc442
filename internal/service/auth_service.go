// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"os"
	"time"

	"school-concierge-be/internal/config"
	"school-concierge-be/internal/dto"
	"school-concierge-be/internal/entity"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 12 * time.Hour

// IAuthService signs moderators into the review console. There is a single
// configured account; the password is stored as a bcrypt hash.
type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	moderator config.ModeratorConfig
}

func NewAuthService(moderator config.ModeratorConfig) IAuthService {
	return &authService{
		moderator: moderator,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.moderator.PasswordHash == "" {
		return nil, entity.NewValidationError("moderator login is not configured")
	}
	if req.Username != s.moderator.Username {
		return nil, entity.NewValidationError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.moderator.PasswordHash), []byte(req.Password)); err != nil {
		return nil, entity.NewValidationError("invalid credentials")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"username": req.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     signed,
		ExpiresIn: int64(tokenTTL.Seconds()),
	}, nil
}

package service

import (
	"errors"

	"handraft-backend/internal/dto"
	"handraft-backend/pkg/auth"
	"handraft-backend/pkg/config"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService exchanges the shared admin/demo password for a bearer token
// carrying the matching access level.
type AuthService struct {
	cfg        *config.AuthConfig
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthService(cfg *config.AuthConfig, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

func (s *AuthService) Login(password string) (*dto.LoginResponse, error) {
	level, err := s.resolveLevel(password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(level)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded", zap.String("level", level))
	return &dto.LoginResponse{
		Level:       level,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtManager.GetTokenDuration().Seconds()),
	}, nil
}

func (s *AuthService) resolveLevel(password string) (string, error) {
	if auth.VerifyPassword(password, s.cfg.AdminPassword) {
		return auth.LevelAdmin, nil
	}
	if auth.VerifyPassword(password, s.cfg.DemoPassword) {
		return auth.LevelDemo, nil
	}
	return "", ErrInvalidCredentials
}

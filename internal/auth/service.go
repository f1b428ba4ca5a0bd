package auth

import (
	"log/slog"
)

// UserRecord is what the repository hands back for authentication.
type UserRecord struct {
	ID           int64
	Email        string
	Name         string
	Role         string
	PasswordHash string
	IsActive     bool
}

type RepositoryAPI interface {
	GetByEmail(email string) (*UserRecord, error)
	GetByID(id int64) (*UserRecord, error)
}

type Service struct {
	repo   RepositoryAPI
	tokens *JWTTokenGenerator
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tokens *JWTTokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, *User, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, nil, ErrInvalidCredentials
	}

	record, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Warn("login failed: unknown email", "email", dto.Email)
		return AuthTokens{}, nil, ErrInvalidCredentials
	}

	if !record.IsActive {
		s.logger.Warn("login rejected: inactive user", "user_id", record.ID)
		return AuthTokens{}, nil, ErrUserInactive
	}

	if err := VerifyPassword(record.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: bad password", "user_id", record.ID)
		return AuthTokens{}, nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(record.ID, record.Email, record.Role)
	if err != nil {
		s.logger.Error("failed to sign access token", "error", err, "user_id", record.ID)
		return AuthTokens{}, nil, err
	}

	user := &User{ID: record.ID, Email: record.Email, Name: record.Name, Role: record.Role}
	s.logger.Info("user authenticated", "user_id", record.ID, "role", record.Role)

	return AuthTokens{AccessToken: token, ExpiresAt: expiresAt.Unix()}, user, nil
}

// ValidateAccessToken resolves a bearer token to the acting principal.
// The role is re-read from storage so a revoked admin cannot keep acting
// on a stale token.
func (s *Service) ValidateAccessToken(tokenString string) (*User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !record.IsActive {
		return nil, ErrUserInactive
	}

	return &User{ID: record.ID, Email: record.Email, Name: record.Name, Role: record.Role}, nil
}

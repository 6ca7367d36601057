package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/onlineworkerske/backend/internal/auth"
	"github.com/onlineworkerske/backend/internal/config"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/repositories"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo  *repositories.UserRepo
	auditRepo *repositories.AuditRepo
	cfg       *config.Config
	log       *zap.Logger
}

func NewAuthService(userRepo *repositories.UserRepo, auditRepo *repositories.AuditRepo, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, auditRepo: auditRepo, cfg: cfg, log: log}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    *string
	Role     string
	Skills   []string
	Bio      *string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" || input.FullName == "" {
		return nil, "", fmt.Errorf("%w: email, password and full_name are required", ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	role := input.Role
	if role == "" {
		role = models.RoleWorker
	}
	if role != models.RoleWorker && role != models.RoleEmployer {
		return nil, "", fmt.Errorf("%w: role must be worker or employer", ErrValidation)
	}
	// Admin role is never self-assigned; it is granted by email allowlist.
	if s.cfg.IsAdminEmail(email) {
		role = models.RoleAdmin
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Role:         role,
		Skills:       input.Skills,
		Bio:          input.Bio,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &user.ID,
		ActorType:   "user",
		Action:      "user_registered",
		EntityType:  "user",
		EntityID:    &user.ID,
		Meta:        map[string]any{"role": role},
	})

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.JWTExpiration)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.JWTExpiration)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfee/internal/logger"
	"portfee/internal/model"
	"portfee/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username        string      `json:"username" binding:"required"`
	Email           string      `json:"email" binding:"omitempty,email"`
	Password        string      `json:"password" binding:"required,min=6"`
	Group           model.Group `json:"group"`
	IsSuperuser     bool        `json:"is_superuser"`
	PortAuthorityID *uuid.UUID  `json:"port_authority_id"`
	PortID          *uuid.UUID  `json:"port_id"`
	ShippingAgentID *uuid.UUID  `json:"shipping_agent_id"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetActiveUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *zap.Logger
}

const DefaultTokenTTL = 24 * time.Hour

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, jwtSecret []byte, log *zap.Logger) UserService {
	return &userService{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  DefaultTokenTTL,
		log:       logger.OrNop(log).Named("service.user"),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if !req.IsSuperuser && !req.Group.Valid() {
		return nil, fmt.Errorf("%w: unknown group %q", ErrInvalidInput, req.Group)
	}
	if req.Group == model.GroupPortAuthority && req.PortAuthorityID == nil {
		return nil, fmt.Errorf("%w: port authority users need a port authority", ErrInvalidInput)
	}
	if req.Group == model.GroupShippingAgent && req.ShippingAgentID == nil {
		return nil, fmt.Errorf("%w: shipping agent users need a shipping agent", ErrInvalidInput)
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username already exists", ErrInvalidInput)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:        req.Username,
		Email:           req.Email,
		Password:        string(hashedPassword),
		Group:           req.Group,
		IsSuperuser:     req.IsSuperuser,
		IsActive:        true,
		PortAuthorityID: req.PortAuthorityID,
		PortID:          req.PortID,
		ShippingAgentID: req.ShippingAgentID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := IssueToken(s.jwtSecret, user.ID, string(user.Group), s.tokenTTL, time.Now())
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", zap.String("username", user.Username))
	return &TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// GetActiveUser loads the user a token was issued to. Inactive users are
// reported as not found.
func (s *userService) GetActiveUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	return user, nil
}

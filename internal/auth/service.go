package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/internal/stores"
	"github.com/voltline/voltline-backend/internal/users"
	pkgauth "github.com/voltline/voltline-backend/pkg/auth"
	"github.com/voltline/voltline-backend/pkg/config"
	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service handles account registration and login.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type storeFinder interface {
	FindActiveByOwner(ctx context.Context, ownerUserID int64) (*models.Store, error)
}

type storeService interface {
	Create(ctx context.Context, ownerUserID int64, input stores.CreateStoreInput) (*stores.StoreDTO, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo     userRepository
	StoreFinder  storeFinder
	StoreService storeService
	JWTConfig    config.JWTConfig
	Password     config.PasswordConfig
}

type service struct {
	users    userRepository
	stores   storeFinder
	storeSvc storeService
	jwtCfg   config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.StoreFinder == nil {
		return nil, fmt.Errorf("store finder is required")
	}
	if params.StoreService == nil {
		return nil, fmt.Errorf("store service is required")
	}
	return &service{
		users:    params.UserRepo,
		stores:   params.StoreFinder,
		storeSvc: params.StoreService,
		jwtCfg:   params.JWTConfig,
		password: params.Password,
		now:      time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}
	user.LastLoginAt = &now

	return s.respond(ctx, user, now)
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

// respond mints an access token for the account. Seller tokens carry the
// seller's active store id so order authorization can scope to it.
func (s *service) respond(ctx context.Context, user *models.User, now time.Time) (*AuthResponse, error) {
	payload := pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	}
	if user.Role == enums.RoleSeller {
		store, err := s.stores.FindActiveByOwner(ctx, user.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seller store")
		}
		if store == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller account has no active store")
		}
		payload.StoreID = &store.ID
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &AuthResponse{
		Token: token,
		User:  users.FromModel(user),
	}, nil
}

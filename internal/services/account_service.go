package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"saasbase/internal/models/db_models"
	"saasbase/internal/models/request_models"
	"saasbase/internal/models/response_models"
	"saasbase/internal/repositories"
	"saasbase/pkg/auth"
	"saasbase/pkg/memcache"
	"saasbase/pkg/utils"
)

const validCodeTTL = 10 * time.Minute

type AccountServiceInterface interface {
	RequestValidCode(ctx context.Context, email string) error
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) error
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.LoginResponse, error)
	ChangePassword(ctx context.Context, userID string, request request_models.ChangePasswordRequest) error
}

type AccountService struct {
	users    repositories.UserRepository
	roles    repositories.RoleRepository
	codes    memcache.CodeStore
	notifier Notifier
	logger   *zap.SugaredLogger
}

func NewAccountService(
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	codes memcache.CodeStore,
	notifier Notifier,
	logger *zap.SugaredLogger,
) AccountServiceInterface {
	return &AccountService{
		users:    users,
		roles:    roles,
		codes:    codes,
		notifier: notifier,
		logger:   logger,
	}
}

func (a *AccountService) RequestValidCode(ctx context.Context, email string) error {
	code, err := utils.GenerateOtpCode(6)
	if err != nil {
		return err
	}
	a.codes.Set(email, code, validCodeTTL)
	return a.notifier.SendValidCode(ctx, email, code)
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) error {
	if !a.codes.Consume(request.Email, request.ValidCode) {
		return utils.ErrInvalidValidCode
	}

	existing, err := a.users.FindByEmail(ctx, request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existing != nil {
		return utils.ErrEmailAlreadyExists
	}

	hashed, err := utils.HashPassword(request.Password)
	if err != nil {
		return utils.ErrDatabaseError
	}

	user := &db_models.User{
		Name:              request.DisplayName,
		Email:             request.Email,
		PasswordHash:      hashed,
		RoleID:            auth.RoleUser,
		ProductType:       db_models.ProductFree,
		EndSubscriptionAt: db_models.EndSubscriptionPlaceholder,
	}
	if err := a.users.Insert(ctx, user); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.LoginResponse, error) {
	user, err := a.users.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrInvalidCredentials
	}

	// Hard block regardless of role.
	if user.Forbidden {
		return nil, utils.ErrAccountForbidden
	}

	// OAuth-only accounts carry no password hash and cannot use this path.
	if user.PasswordHash == "" {
		return nil, utils.ErrInvalidCredentials
	}
	if err := utils.ComparePasswords(user.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	var permissions []string
	role, err := a.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if role != nil {
		permissions = role.Permissions
	}

	token, err := utils.CreateToken(user.ID, user.Email, user.RoleID, permissions)
	if err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	return &response_models.LoginResponse{
		Token:             token,
		Role:              user.RoleID,
		EndSubscriptionAt: user.EndSubscriptionAt,
	}, nil
}

func (a *AccountService) ChangePassword(ctx context.Context, userID string, request request_models.ChangePasswordRequest) error {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if user == nil {
		return utils.ErrAccountNotFound
	}
	if user.PasswordHash != "" {
		if err := utils.ComparePasswords(user.PasswordHash, request.OldPassword); err != nil {
			return utils.ErrInvalidCredentials
		}
	}

	hashed, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return utils.ErrDatabaseError
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return utils.ErrAccountNotFound
	}
	if err := a.users.UpdatePassword(ctx, id, hashed); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

package services

import (
	"context"

	"saasbase/internal/models/db_models"
	"saasbase/internal/models/request_models"
	"saasbase/internal/models/response_models"
	"saasbase/internal/repositories"
	"saasbase/pkg/auth"
	"saasbase/pkg/utils"
)

type AdminServiceInterface interface {
	ListUsers(ctx context.Context, page, size int) ([]response_models.UserSummary, int64, error)
	SetForbidden(ctx context.Context, request request_models.ForbiddenRequest) error
	ListRoles(ctx context.Context) ([]db_models.UserRole, error)
	UpsertRole(ctx context.Context, request request_models.RoleUpsertRequest) error
	DeleteRole(ctx context.Context, id string) error
	ListOrders(ctx context.Context, page, size int) ([]response_models.OrderResponse, int64, error)
}

type AdminService struct {
	users  repositories.UserRepository
	roles  repositories.RoleRepository
	orders repositories.OrderRepository
}

func NewAdminService(
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	orders repositories.OrderRepository,
) AdminServiceInterface {
	return &AdminService{users: users, roles: roles, orders: orders}
}

func validatePage(page, size int) error {
	if page < 1 {
		return utils.ErrInvalidPage
	}
	if size < 1 || size > 100 {
		return utils.ErrInvalidPageSize
	}
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, page, size int) ([]response_models.UserSummary, int64, error) {
	if err := validatePage(page, size); err != nil {
		return nil, 0, err
	}
	users, total, err := s.users.List(ctx, page, size)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}
	out := make([]response_models.UserSummary, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, response_models.UserSummary{
			ID:                u.ID.String(),
			Email:             u.Email,
			Name:              u.Name,
			RoleID:            u.RoleID,
			ProductType:       string(u.ProductType),
			EndSubscriptionAt: u.EndSubscriptionAt,
			TotalMoney:        u.TotalMoney,
			MonthlyMoney:      u.MonthlyMoney,
			Forbidden:         u.Forbidden,
		})
	}
	return out, total, nil
}

func (s *AdminService) SetForbidden(ctx context.Context, request request_models.ForbiddenRequest) error {
	user, err := s.users.FindByID(ctx, request.UserID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if user == nil {
		return utils.ErrAccountNotFound
	}
	if err := s.users.SetForbidden(ctx, request.UserID, request.Forbidden); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *AdminService) ListRoles(ctx context.Context) ([]db_models.UserRole, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return roles, nil
}

func (s *AdminService) UpsertRole(ctx context.Context, request request_models.RoleUpsertRequest) error {
	role := &db_models.UserRole{
		ID:          request.ID,
		Permissions: request.Permissions,
	}
	if err := s.roles.Save(ctx, role); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *AdminService) DeleteRole(ctx context.Context, id string) error {
	// The three built-in roles are unreplaceable sentinels.
	if id == auth.RoleUser || id == auth.RoleAdmin || id == auth.RoleSuperAdmin {
		return utils.ErrRoleProtected
	}
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if role == nil {
		return utils.ErrRoleNotFound
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *AdminService) ListOrders(ctx context.Context, page, size int) ([]response_models.OrderResponse, int64, error) {
	if err := validatePage(page, size); err != nil {
		return nil, 0, err
	}
	orders, total, err := s.orders.List(ctx, page, size)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}
	out := make([]response_models.OrderResponse, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		out = append(out, response_models.OrderResponse{
			OrderID:   o.OrderID,
			Email:     o.Email,
			ProductID: o.ProductID,
			Price:     o.Price,
			Type:      string(o.Type),
			Simulate:  o.Simulate,
			CreatedAt: o.CreatedAt,
		})
	}
	return out, total, nil
}

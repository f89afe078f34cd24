package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"saasbase/internal/models/db_models"
	"saasbase/internal/models/request_models"
	"saasbase/internal/models/response_models"
	"saasbase/internal/repositories"
	"saasbase/pkg/utils"
)

type ProductServiceInterface interface {
	ListActive(ctx context.Context) ([]response_models.ProductResponse, error)
	List(ctx context.Context) ([]response_models.ProductResponse, error)
	Upsert(ctx context.Context, request request_models.ProductUpsertRequest) (*response_models.ProductResponse, error)
	Delete(ctx context.Context, id string) error
}

type ProductService struct {
	products repositories.ProductRepository
	roles    repositories.RoleRepository
}

func NewProductService(products repositories.ProductRepository, roles repositories.RoleRepository) ProductServiceInterface {
	return &ProductService{products: products, roles: roles}
}

func toProductResponse(p *db_models.Product) response_models.ProductResponse {
	return response_models.ProductResponse{
		ID:          p.ID.String(),
		Weight:      p.Weight,
		ProductType: string(p.ProductType),
		TimeCycle:   string(p.TimeCycle),
		Discount:    p.Discount,
		RoleID:      p.RoleID,
		Locales:     json.RawMessage(p.Locales),
		IsActive:    p.IsActive,
	}
}

func (s *ProductService) ListActive(ctx context.Context) ([]response_models.ProductResponse, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]response_models.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out, nil
}

func (s *ProductService) List(ctx context.Context) ([]response_models.ProductResponse, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]response_models.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out, nil
}

func (s *ProductService) Upsert(ctx context.Context, request request_models.ProductUpsertRequest) (*response_models.ProductResponse, error) {
	// The granted role must exist before a product can point at it.
	role, err := s.roles.FindByID(ctx, request.RoleID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if role == nil {
		return nil, utils.ErrRoleNotFound
	}

	var product *db_models.Product
	if request.ID != "" {
		product, err = s.products.FindByID(ctx, request.ID)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if product == nil {
			return nil, utils.ErrProductNotFound
		}
	} else {
		product = &db_models.Product{BaseModel: db_models.BaseModel{ID: uuid.New()}}
	}

	product.Weight = request.Weight
	product.ProductType = db_models.ProductType(request.ProductType)
	product.TimeCycle = db_models.TimeCycle(request.TimeCycle)
	product.Discount = request.Discount
	product.RoleID = request.RoleID
	if request.StripeInfo != nil {
		product.StripeInfo = datatypes.NewJSONType(db_models.StripeInfo{
			PriceID:  request.StripeInfo.PriceID,
			Quantity: request.StripeInfo.Quantity,
		})
	}
	if request.Aifadian != nil {
		product.AifadianInfo = datatypes.NewJSONType(db_models.AifadianInfo{
			PlanID: request.Aifadian.PlanID,
		})
	}
	if request.Locales != nil {
		product.Locales = datatypes.JSON(request.Locales)
	}
	if request.IsActive != nil {
		product.IsActive = *request.IsActive
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, utils.ErrDatabaseError
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if product == nil {
		return utils.ErrProductNotFound
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"saasbase/internal/models/db_models"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*db_models.Product, error)
	ListActive(ctx context.Context) ([]db_models.Product, error)
	List(ctx context.Context) ([]db_models.Product, error)
	Insert(ctx context.Context, product *db_models.Product) error
	Save(ctx context.Context, product *db_models.Product) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (p *productRepository) FindByID(ctx context.Context, id string) (*db_models.Product, error) {
	// Ids arrive from webhook remarks and query params. A malformed one can
	// never match the uuid column, so it is a miss, not a database error.
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var product db_models.Product
	err := p.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) ListActive(ctx context.Context) ([]db_models.Product, error) {
	var products []db_models.Product
	err := p.db.WithContext(ctx).
		Where("is_active = TRUE").
		Order("weight").
		Find(&products).Error
	return products, err
}

func (p *productRepository) List(ctx context.Context) ([]db_models.Product, error) {
	var products []db_models.Product
	err := p.db.WithContext(ctx).Order("weight").Find(&products).Error
	return products, err
}

func (p *productRepository) Insert(ctx context.Context, product *db_models.Product) error {
	return p.db.WithContext(ctx).Create(product).Error
}

func (p *productRepository) Save(ctx context.Context, product *db_models.Product) error {
	return p.db.WithContext(ctx).Save(product).Error
}

func (p *productRepository) Delete(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Delete(&db_models.Product{}, "id = ?", id).Error
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/repository"
)

type CatalogService struct {
	products *repository.ProductRepo
	log      *zap.Logger
}

func NewCatalogService(products *repository.ProductRepo, log *zap.Logger) *CatalogService {
	return &CatalogService{products: products, log: log}
}

func (s *CatalogService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.products.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, skip, limit int) ([]models.Product, error) {
	return s.products.List(ctx, skip, limit)
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *CatalogService) Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(p); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

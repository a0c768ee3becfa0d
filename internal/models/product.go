package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"image_url"`
	Category    *string         `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductInput carries create fields; ProductPatch carries the optional update fields.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Category    *string         `json:"category,omitempty"`
}

func (in ProductInput) Validate() error {
	if in.Name == "" {
		return invalid("name is required")
	}
	if !in.Price.IsPositive() {
		return invalid("price must be greater than 0")
	}
	if in.Stock < 0 {
		return invalid("stock must be greater than or equal to 0")
	}
	return nil
}

type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

// Apply merges the patch into p and validates the result.
func (pp ProductPatch) Apply(p *Product) error {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.ImageURL != nil {
		p.ImageURL = pp.ImageURL
	}
	if pp.Category != nil {
		p.Category = pp.Category
	}
	return ProductInput{
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}.Validate()
}

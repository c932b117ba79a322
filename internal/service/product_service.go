package service

import (
	"context"
	"strings"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/session"
	"deposito-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)
}

type ProductRequest struct {
	Code            string          `json:"code" validate:"required"`
	Name            string          `json:"name" validate:"required"`
	Category        string          `json:"category"`
	CostPrice       decimal.Decimal `json:"cost_price" validate:"gte=0"`
	SalePrice       decimal.Decimal `json:"sale_price" validate:"gte=0"`
	StockQuantity   int             `json:"stock_quantity" validate:"gte=0"`
	MinimumQuantity int             `json:"minimum_quantity" validate:"gte=0"`
	Unit            string          `json:"unit"`
	Supplier        string          `json:"supplier"`
	Active          *bool           `json:"active"`
}

// ProductPatch is a partial update; nil fields are left unchanged.
type ProductPatch struct {
	Code            *string          `json:"code" validate:"omitempty,min=1"`
	Name            *string          `json:"name" validate:"omitempty,min=1"`
	Category        *string          `json:"category"`
	CostPrice       *decimal.Decimal `json:"cost_price"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	StockQuantity   *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	MinimumQuantity *int             `json:"minimum_quantity" validate:"omitempty,gte=0"`
	Unit            *string          `json:"unit"`
	Supplier        *string          `json:"supplier"`
	Active          *bool            `json:"active"`
}

func (p *ProductPatch) apply(product *model.Product) {
	if p.Code != nil {
		product.Code = strings.TrimSpace(*p.Code)
	}
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.CostPrice != nil {
		product.CostPrice = *p.CostPrice
	}
	if p.SalePrice != nil {
		product.SalePrice = *p.SalePrice
	}
	if p.StockQuantity != nil {
		product.StockQuantity = *p.StockQuantity
	}
	if p.MinimumQuantity != nil {
		product.MinimumQuantity = *p.MinimumQuantity
	}
	if p.Unit != nil {
		product.Unit = *p.Unit
	}
	if p.Supplier != nil {
		product.Supplier = *p.Supplier
	}
	if p.Active != nil {
		product.Active = *p.Active
	}
}

type productService struct {
	products  repository.ProductRepository
	snapshots *Snapshotter
	hub       ws.Broadcaster
}

func NewProductService(products repository.ProductRepository, snapshots *Snapshotter, hub ws.Broadcaster) ProductService {
	return &productService{products: products, snapshots: snapshots, hub: hub}
}

func (s *productService) CreateProduct(ctx context.Context, req *ProductRequest) (*model.Product, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	if existing, err := s.products.FindByCode(ctx, code); err == nil && existing != nil {
		return nil, ErrConflict
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	unit := req.Unit
	if unit == "" {
		unit = "Unidade"
	}
	product := &model.Product{
		Code:            code,
		Name:            strings.TrimSpace(req.Name),
		Category:        req.Category,
		CostPrice:       req.CostPrice,
		SalePrice:       req.SalePrice,
		StockQuantity:   req.StockQuantity,
		MinimumQuantity: req.MinimumQuantity,
		Unit:            unit,
		Supplier:        req.Supplier,
		Active:          active,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, storeErr("create product", err)
	}

	s.snapshots.RefreshProducts(ctx)
	notify(s.hub, "stock_update", "product_created", sess, product, "%s cadastrou o produto '%s'", sess.Name, product.Name)
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductPatch) (*model.Product, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find product", err)
	}
	oldStock := product.StockQuantity

	if req.Code != nil && strings.TrimSpace(*req.Code) != product.Code {
		if other, err := s.products.FindByCode(ctx, strings.TrimSpace(*req.Code)); err == nil && other.ID != id {
			return nil, ErrConflict
		}
	}
	req.apply(product)
	if product.CostPrice.IsNegative() || product.SalePrice.IsNegative() {
		return nil, invalid("price", "preços não podem ser negativos")
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, storeErr("update product", err)
	}

	s.snapshots.RefreshProducts(ctx)
	notify(s.hub, "stock_update", "product_updated", sess, map[string]any{
		"product":   product,
		"old_stock": oldStock,
		"new_stock": product.StockQuantity,
	}, "%s atualizou o produto '%s'", sess.Name, product.Name)
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return storeErr("find product", err)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return storeErr("delete product", err)
	}

	s.snapshots.RefreshProducts(ctx)
	notify(s.hub, "stock_update", "product_deleted", sess, map[string]string{"id": id.String()}, "%s excluiu o produto '%s'", sess.Name, product.Name)
	return nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find product", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	return products, nil
}

func (s *productService) ListLowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, storeErr("list products", err)
	}
	return model.LowStock(products), nil
}

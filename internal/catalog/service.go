package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	"go.uber.org/zap"
)

type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	IsActive    *bool    `json:"isActive"`
}

// ProductPatch holds the fields a seller may change; nil fields are kept.
type ProductPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *int64    `json:"price"`
	Stock       *int      `json:"stock"`
	Category    *string   `json:"category"`
	Images      *[]string `json:"images"`
	IsActive    *bool     `json:"isActive"`
}

type ListFilter struct {
	Category        string
	SellerID        string
	IncludeInactive bool
}

// Service manages the product catalog. Sellers write their own products; the
// seller's display name and contact are copied from their profile.
type Service struct {
	store  docstore.Store
	logger observability.Logger
	now    func() time.Time
}

func NewService(store docstore.Store, logger observability.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Add(ctx context.Context, actor domain.Identity, in ProductInput) (*domain.Product, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	if !actor.IsVerifiedSeller() {
		return nil, &domain.ForbiddenError{Msg: "only verified sellers can add products"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validationf("product name is required")
	}
	if err := checkAmounts(in.Price, in.Stock); err != nil {
		return nil, err
	}

	seller, err := s.loadSeller(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := s.now()
	product := domain.Product{
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Price:          in.Price,
		Stock:          in.Stock,
		Category:       in.Category,
		Images:         in.Images,
		IsActive:       active,
		SellerID:       seller.ID,
		SellerName:     seller.DisplayName(),
		SellerWhatsapp: seller.Phone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	id, err := s.store.Insert(ctx, docstore.Products, product)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	product.ID = id

	s.logger.Info("🆕 Product added", zap.String("product_id", id), zap.String("seller_id", seller.ID))
	return &product, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Identity, id string, patch ProductPatch) (*domain.Product, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsVerifiedSeller() || product.SellerID != actor.UserID {
		return nil, &domain.ForbiddenError{Msg: "only the owning seller can edit this product"}
	}

	fields := map[string]any{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, domain.Validationf("product name is required")
		}
		product.Name = strings.TrimSpace(*patch.Name)
		fields["name"] = product.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
		fields["description"] = product.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
		fields["price"] = product.Price
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
		fields["stock"] = product.Stock
	}
	if patch.Category != nil {
		product.Category = *patch.Category
		fields["category"] = product.Category
	}
	if patch.Images != nil {
		product.Images = *patch.Images
		fields["images"] = product.Images
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
		fields["isActive"] = product.IsActive
	}
	if err := checkAmounts(product.Price, product.Stock); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return product, nil
	}

	product.UpdatedAt = s.now()
	fields["updatedAt"] = product.UpdatedAt
	if err := s.store.Update(ctx, docstore.Products, id, fields); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}

	s.logger.Info("✏️ Product updated", zap.String("product_id", id), zap.Int("fields", len(fields)-1))
	return product, nil
}

// Delete removes a product. Orders that reference it become invalid and are
// picked up by the invalid-order cleanup.
func (s *Service) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if s.store == nil {
		return domain.ErrStoreNotConfigured
	}
	if !actor.IsAdmin() {
		return &domain.ForbiddenError{Msg: "only admins can delete products"}
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteMany(ctx, docstore.Products, []string{id}); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.logger.Info("🗑️ Product deleted", zap.String("product_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	rec, err := s.store.Get(ctx, docstore.Products, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, &domain.NotFoundError{Kind: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	product, err := domain.DecodeProduct(rec.ID, rec.Data)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns products newest first. Inactive products are hidden unless
// requested.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}

	var filters []docstore.Filter
	if !filter.IncludeInactive {
		filters = append(filters, docstore.Eq("isActive", true))
	}
	if filter.Category != "" {
		filters = append(filters, docstore.Eq("category", filter.Category))
	}
	if filter.SellerID != "" {
		filters = append(filters, docstore.Eq("sellerId", filter.SellerID))
	}

	records, err := s.store.Query(ctx, docstore.Products, filters...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		p, err := domain.DecodeProduct(rec.ID, rec.Data)
		if err != nil {
			s.logger.Warn("⚠️ Skipping malformed product", zap.String("product_id", rec.ID), zap.Error(err))
			continue
		}
		products = append(products, p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (s *Service) loadSeller(ctx context.Context, id string) (domain.UserProfile, error) {
	rec, err := s.store.Get(ctx, docstore.Users, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.UserProfile{}, &domain.NotFoundError{Kind: "user", ID: id}
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("load seller %s: %w", id, err)
	}
	seller, err := domain.DecodeUser(rec.ID, rec.Data)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if seller.Phone == "" {
		return domain.UserProfile{}, domain.Validationf("seller profile has no whatsapp number")
	}
	return seller, nil
}

func checkAmounts(price int64, stock int) error {
	if price < 0 {
		return domain.Validationf("price must not be negative")
	}
	if stock < 0 {
		return domain.Validationf("stock must not be negative")
	}
	return nil
}

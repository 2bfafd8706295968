package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
)

// loadOrder reads and decodes one order. A missing order is a NotFoundError.
func loadOrder(ctx context.Context, store docstore.Store, id string) (domain.Order, error) {
	rec, err := store.Get(ctx, docstore.Orders, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Order{}, &domain.NotFoundError{Kind: "order", ID: id}
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("load order %s: %w", id, err)
	}
	return domain.DecodeOrder(rec.ID, rec.Data)
}

// loadProduct reads and decodes one product. A missing product is a NotFoundError.
func loadProduct(ctx context.Context, store docstore.Store, id string) (domain.Product, error) {
	rec, err := store.Get(ctx, docstore.Products, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Product{}, &domain.NotFoundError{Kind: "product", ID: id}
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("load product %s: %w", id, err)
	}
	return domain.DecodeProduct(rec.ID, rec.Data)
}

func isNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}

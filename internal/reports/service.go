package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	"go.uber.org/zap"
)

const (
	topN          = 10
	lowStockLimit = 10
)

type SellerRevenue struct {
	SellerID   string `json:"sellerId"`
	SellerName string `json:"sellerName"`
	Revenue    int64  `json:"revenue"`
	Orders     int    `json:"orders"`
}

type ProductSales struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

type Summary struct {
	TotalOrders       int                   `json:"totalOrders"`
	CompletedRevenue  int64                 `json:"completedRevenue"`
	AverageOrderValue int64                 `json:"averageOrderValue"`
	StatusCounts      map[domain.Status]int `json:"statusCounts"`
	TopSellers        []SellerRevenue       `json:"topSellers"`
	TopProducts       []ProductSales        `json:"topProducts"`
	TotalProducts     int                   `json:"totalProducts"`
	LowStock          int                   `json:"lowStock"`
	OutOfStock        int                   `json:"outOfStock"`
}

// Service computes admin reports over the whole order and product collections.
type Service struct {
	store  docstore.Store
	logger observability.Logger
}

func NewService(store docstore.Store, logger observability.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Summary aggregates revenue over completed orders and sales rankings over
// every order that was not rejected or cancelled.
func (s *Service) Summary(ctx context.Context, actor domain.Identity) (*Summary, error) {
	if err := s.check(actor); err != nil {
		return nil, err
	}
	orders, err := s.orders(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.Query(ctx, docstore.Products)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	summary := &Summary{
		TotalOrders:  len(orders),
		StatusCounts: make(map[domain.Status]int),
	}
	sellers := map[string]*SellerRevenue{}
	sales := map[string]*ProductSales{}
	completed := 0

	for _, o := range orders {
		summary.StatusCounts[o.Status]++
		if o.Status == domain.StatusCompleted {
			summary.CompletedRevenue += o.Total
			completed++
		}
		if o.Status == domain.StatusRejected || o.Status == domain.StatusCancelled {
			continue
		}

		seenSellers := map[string]bool{}
		for _, item := range o.Items {
			sr, ok := sellers[item.SellerID]
			if !ok {
				sr = &SellerRevenue{SellerID: item.SellerID, SellerName: item.SellerName}
				sellers[item.SellerID] = sr
			}
			sr.Revenue += item.Subtotal()
			if !seenSellers[item.SellerID] {
				seenSellers[item.SellerID] = true
				sr.Orders++
			}

			ps, ok := sales[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Name: item.Name}
				sales[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue += item.Subtotal()
		}
	}
	if completed > 0 {
		summary.AverageOrderValue = summary.CompletedRevenue / int64(completed)
	}

	for _, sr := range sellers {
		summary.TopSellers = append(summary.TopSellers, *sr)
	}
	sort.Slice(summary.TopSellers, func(i, j int) bool {
		a, b := summary.TopSellers[i], summary.TopSellers[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.SellerID < b.SellerID
	})
	summary.TopSellers = truncate(summary.TopSellers)

	for _, ps := range sales {
		summary.TopProducts = append(summary.TopProducts, *ps)
	}
	sort.Slice(summary.TopProducts, func(i, j int) bool {
		a, b := summary.TopProducts[i], summary.TopProducts[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.ProductID < b.ProductID
	})
	summary.TopProducts = truncate(summary.TopProducts)

	for _, rec := range products {
		p, err := domain.DecodeProduct(rec.ID, rec.Data)
		if err != nil {
			s.logger.Warn("⚠️ Skipping malformed product", zap.String("product_id", rec.ID), zap.Error(err))
			continue
		}
		summary.TotalProducts++
		switch {
		case p.Stock == 0:
			summary.OutOfStock++
		case p.Stock > 0 && p.Stock < lowStockLimit:
			summary.LowStock++
		}
	}
	return summary, nil
}

// ExportOrdersCSV writes one row per order, oldest first.
func (s *Service) ExportOrdersCSV(ctx context.Context, actor domain.Identity, w io.Writer) error {
	if err := s.check(actor); err != nil {
		return err
	}
	orders, err := s.orders(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Order ID", "Customer", "WhatsApp", "Total", "Status", "Created", "Item Count"}); err != nil {
		return err
	}
	for _, o := range orders {
		if err := cw.Write([]string{
			o.ID,
			o.Customer.Name,
			o.Customer.Whatsapp,
			strconv.FormatInt(o.Total, 10),
			string(o.Status),
			o.CreatedAt.Format(time.RFC3339),
			strconv.Itoa(len(o.Items)),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Service) check(actor domain.Identity) error {
	if s.store == nil {
		return domain.ErrStoreNotConfigured
	}
	if !actor.IsAdmin() {
		return &domain.ForbiddenError{Msg: "only admins can view reports"}
	}
	return nil
}

func (s *Service) orders(ctx context.Context) ([]domain.Order, error) {
	records, err := s.store.Query(ctx, docstore.Orders)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		o, err := domain.DecodeOrder(rec.ID, rec.Data)
		if err != nil {
			s.logger.Warn("⚠️ Skipping malformed order", zap.String("order_id", rec.ID), zap.Error(err))
			continue
		}
		orders = append(orders, o)
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func truncate[T any](list []T) []T {
	if len(list) > topN {
		return list[:topN]
	}
	return list
}

package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DecodeError reports a stored document that does not match its record type.
type DecodeError struct {
	Kind  string
	ID    string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s %s: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("malformed %s %s: missing field %q", e.Kind, e.ID, e.Field)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type productDoc struct {
	Name           *string   `json:"name"`
	Description    string    `json:"description"`
	Price          *int64    `json:"price"`
	Stock          *int      `json:"stock"`
	Category       string    `json:"category"`
	Images         []string  `json:"images"`
	IsActive       *bool     `json:"isActive"`
	SellerID       *string   `json:"sellerId"`
	SellerName     string    `json:"sellerName"`
	SellerWhatsapp string    `json:"sellerWhatsapp"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DecodeProduct turns a stored product document into a Product. The name,
// price, stock and seller id fields are required; isActive defaults to true.
func DecodeProduct(id string, data []byte) (Product, error) {
	var doc productDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Product{}, &DecodeError{Kind: "product", ID: id, Err: err}
	}

	missing := func(field string) error { return &DecodeError{Kind: "product", ID: id, Field: field} }
	switch {
	case doc.Name == nil:
		return Product{}, missing("name")
	case doc.Price == nil:
		return Product{}, missing("price")
	case doc.Stock == nil:
		return Product{}, missing("stock")
	case doc.SellerID == nil:
		return Product{}, missing("sellerId")
	}

	active := true
	if doc.IsActive != nil {
		active = *doc.IsActive
	}

	return Product{
		ID:             id,
		Name:           *doc.Name,
		Description:    doc.Description,
		Price:          *doc.Price,
		Stock:          *doc.Stock,
		Category:       doc.Category,
		Images:         doc.Images,
		IsActive:       active,
		SellerID:       *doc.SellerID,
		SellerName:     doc.SellerName,
		SellerWhatsapp: doc.SellerWhatsapp,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

type orderItemDoc struct {
	ProductID      *string `json:"id"`
	Name           *string `json:"name"`
	Price          *int64  `json:"price"`
	Quantity       *int    `json:"quantity"`
	SellerID       string  `json:"sellerId"`
	SellerName     string  `json:"sellerName"`
	SellerWhatsapp string  `json:"sellerWhatsapp"`
}

type orderDoc struct {
	Customer *struct {
		Name     *string `json:"name"`
		Whatsapp *string `json:"whatsapp"`
	} `json:"customer"`
	Items     *[]orderItemDoc `json:"items"`
	Total     *int64          `json:"total"`
	Status    *Status         `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// DecodeOrder turns a stored order document into an Order. Every item must
// carry its product id, name, price and quantity.
func DecodeOrder(id string, data []byte) (Order, error) {
	var doc orderDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Order{}, &DecodeError{Kind: "order", ID: id, Err: err}
	}

	missing := func(field string) error { return &DecodeError{Kind: "order", ID: id, Field: field} }
	switch {
	case doc.Customer == nil:
		return Order{}, missing("customer")
	case doc.Customer.Name == nil:
		return Order{}, missing("customer.name")
	case doc.Customer.Whatsapp == nil:
		return Order{}, missing("customer.whatsapp")
	case doc.Items == nil:
		return Order{}, missing("items")
	case doc.Total == nil:
		return Order{}, missing("total")
	case doc.Status == nil:
		return Order{}, missing("status")
	}
	if !doc.Status.Valid() {
		return Order{}, &DecodeError{Kind: "order", ID: id, Err: fmt.Errorf("unknown status %q", *doc.Status)}
	}

	items := make([]OrderItem, 0, len(*doc.Items))
	for i, item := range *doc.Items {
		field := func(name string) error { return missing(fmt.Sprintf("items[%d].%s", i, name)) }
		switch {
		case item.ProductID == nil:
			return Order{}, field("id")
		case item.Name == nil:
			return Order{}, field("name")
		case item.Price == nil:
			return Order{}, field("price")
		case item.Quantity == nil:
			return Order{}, field("quantity")
		}
		items = append(items, OrderItem{
			ProductID:      *item.ProductID,
			Name:           *item.Name,
			Price:          *item.Price,
			Quantity:       *item.Quantity,
			SellerID:       item.SellerID,
			SellerName:     item.SellerName,
			SellerWhatsapp: item.SellerWhatsapp,
		})
	}

	return Order{
		ID:        id,
		Customer:  Customer{Name: *doc.Customer.Name, Whatsapp: *doc.Customer.Whatsapp},
		Items:     items,
		Total:     *doc.Total,
		Status:    *doc.Status,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

type userDoc struct {
	Email         *string   `json:"email"`
	Role          *Role     `json:"role"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	StoreName     string    `json:"storeName"`
	StoreCategory string    `json:"storeCategory"`
	IsVerified    bool      `json:"isVerified"`
	Rejected      bool      `json:"rejected"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DecodeUser turns a stored user document into a UserProfile.
func DecodeUser(id string, data []byte) (UserProfile, error) {
	var doc userDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return UserProfile{}, &DecodeError{Kind: "user", ID: id, Err: err}
	}
	if doc.Email == nil {
		return UserProfile{}, &DecodeError{Kind: "user", ID: id, Field: "email"}
	}
	if doc.Role == nil {
		return UserProfile{}, &DecodeError{Kind: "user", ID: id, Field: "role"}
	}
	if !doc.Role.Valid() {
		return UserProfile{}, &DecodeError{Kind: "user", ID: id, Err: fmt.Errorf("unknown role %q", *doc.Role)}
	}

	return UserProfile{
		ID:            id,
		Email:         *doc.Email,
		Role:          *doc.Role,
		Name:          doc.Name,
		Phone:         doc.Phone,
		Address:       doc.Address,
		StoreName:     doc.StoreName,
		StoreCategory: doc.StoreCategory,
		IsVerified:    doc.IsVerified,
		Rejected:      doc.Rejected,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

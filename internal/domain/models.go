package domain

import "time"

// Role is the account type of a user profile.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller || r == RoleBuyer
}

type Product struct {
	ID             string    `json:"-"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          int64     `json:"price"`
	Stock          int       `json:"stock"`
	Category       string    `json:"category"`
	Images         []string  `json:"images,omitempty"`
	IsActive       bool      `json:"isActive"`
	SellerID       string    `json:"sellerId"`
	SellerName     string    `json:"sellerName"`
	SellerWhatsapp string    `json:"sellerWhatsapp"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Customer struct {
	Name     string `json:"name"`
	Whatsapp string `json:"whatsapp"`
}

// OrderItem is a snapshot of a product taken when the order was placed.
type OrderItem struct {
	ProductID      string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	Quantity       int    `json:"quantity"`
	SellerID       string `json:"sellerId,omitempty"`
	SellerName     string `json:"sellerName"`
	SellerWhatsapp string `json:"sellerWhatsapp"`
}

func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

type Order struct {
	ID        string      `json:"-"`
	Customer  Customer    `json:"customer"`
	Items     []OrderItem `json:"items"`
	Total     int64       `json:"total"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ItemsTotal sums price times quantity over every item.
func (o Order) ItemsTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}

// HasSeller reports whether any item of the order was sold by sellerID.
func (o Order) HasSeller(sellerID string) bool {
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}

type UserProfile struct {
	ID            string    `json:"-"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	StoreName     string    `json:"storeName,omitempty"`
	StoreCategory string    `json:"storeCategory,omitempty"`
	IsVerified    bool      `json:"isVerified"`
	Rejected      bool      `json:"rejected,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DisplayName is the name shown to buyers: the store name when set.
func (u UserProfile) DisplayName() string {
	if u.StoreName != "" {
		return u.StoreName
	}
	return u.Name
}

// Identity is the authenticated caller of an operation.
type Identity struct {
	UserID   string
	Role     Role
	Verified bool
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func (i Identity) IsVerifiedSeller() bool { return i.Role == RoleSeller && i.Verified }

// IdentityOf derives the caller identity from a stored profile.
func IdentityOf(u UserProfile) Identity {
	return Identity{UserID: u.ID, Role: u.Role, Verified: u.IsVerified}
}

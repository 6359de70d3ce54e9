package models

import (
	"time"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:buyer"   json:"role"`
}

// PublicView strips everything that must not leave the credential store.
func (u *User) PublicView() map[string]any {
	return map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"not null"                 json:"name"`
	Description   string    `json:"description"`
	Category      string    `gorm:"index"                    json:"category"`
	Price         float64   `gorm:"not null;check:price>=0"  json:"price"`
	ImageURL      string    `json:"imageUrl"`
	SellerID      uint      `gorm:"index;not null"           json:"sellerId"`
	AverageRating float64   `gorm:"default:0"                json:"averageRating"`
	RatingCount   uint      `gorm:"default:0"                json:"ratingCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ShippingDetails struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Rating struct {
	Value   int    `json:"value"`
	Comment string `json:"comment"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	CustomerID      uint            `gorm:"index;not null"                    json:"customerId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"                json:"products"`
	TotalAmount     float64         `gorm:"not null"                          json:"totalAmount"`
	ShippingDetails ShippingDetails `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingDetails"`
	PaymentMethod   string          `gorm:"default:COD"                       json:"paymentMethod"`
	Status          string          `gorm:"not null;default:Pending"          json:"status"`
	IsDelivered     bool            `gorm:"default:false"                     json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	Rating          *Rating         `gorm:"embedded;embeddedPrefix:rating_"   json:"rating,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem is a snapshot of the product at order time, so later price
// changes or deletions never rewrite order history.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                  json:"id"`
	OrderID   uint    `gorm:"index;not null"              json:"order_id"`
	ProductID uint    `gorm:"not null"                    json:"productId"`
	SellerID  uint    `gorm:"index;not null"              json:"sellerId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  uint    `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

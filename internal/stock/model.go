// Package stock tracks salon supplies: product categories, products and the
// shopping runs that restock them.
package stock

import (
	"strings"
	"time"

	"github.com/velvetrow/salonbook/internal/dateutil"
)

// Category groups products for the inventory views.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is one tracked supply item. CategoryName is joined on reads.
type Product struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	CategoryID     int64     `json:"category_id"`
	CategoryName   string    `json:"category_name"`
	Barcode        string    `json:"barcode"`
	Quantity       int       `json:"quantity"`
	Brand          *string   `json:"brand"`
	LastOpenedDate *string   `json:"last_opened_date"`
	Color          *string   `json:"color"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShoppingItem is one line of a shopping run. Name is joined on reads.
type ShoppingItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Cost      float64 `json:"cost"`
	Name      string  `json:"name,omitempty"`
}

// ShoppingList is one recorded shopping run.
type ShoppingList struct {
	ID          int64          `json:"id"`
	ShopName    string         `json:"shop_name"`
	TotalCost   float64        `json:"total_cost"`
	MonthYear   string         `json:"month_year"`
	PurchasedAt time.Time      `json:"purchased_at"`
	Items       []ShoppingItem `json:"items"`
}

// CreateCategoryRequest is the body for adding a category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

func (r *CreateCategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// CreateProductRequest is the body for adding a product.
type CreateProductRequest struct {
	Name           string  `json:"name"`
	CategoryID     int64   `json:"category_id"`
	Barcode        string  `json:"barcode"`
	Quantity       int     `json:"quantity"`
	Brand          *string `json:"brand"`
	LastOpenedDate *string `json:"last_opened_date"`
	Color          *string `json:"color"`
}

func (r *CreateProductRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Barcode = strings.TrimSpace(r.Barcode)
	if r.Name == "" || r.CategoryID <= 0 || r.Barcode == "" {
		return ErrProductFieldsRequired
	}
	if r.Quantity < 0 {
		return ErrBadQuantity
	}
	if r.LastOpenedDate != nil && !dateutil.ValidDate(*r.LastOpenedDate) {
		return ErrBadDate
	}
	return nil
}

// ShoppingRequest is the body for recording a shopping run.
type ShoppingRequest struct {
	ShopName  string         `json:"shop_name"`
	TotalCost float64        `json:"total_cost"`
	Items     []ShoppingItem `json:"items"`
}

func (r *ShoppingRequest) Validate() error {
	r.ShopName = strings.TrimSpace(r.ShopName)
	if r.ShopName == "" || r.TotalCost <= 0 || len(r.Items) == 0 {
		return ErrShoppingFieldsRequired
	}
	for _, it := range r.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return ErrBadItem
		}
	}
	return nil
}

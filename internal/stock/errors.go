package stock

import "errors"

var (
	// ErrNameRequired is returned when a category name is missing.
	ErrNameRequired = errors.New("name is required")

	// ErrProductFieldsRequired is returned when name, category_id or barcode is absent.
	ErrProductFieldsRequired = errors.New("name, category_id and barcode are required")

	// ErrShoppingFieldsRequired is returned when shop_name, total_cost or items is absent.
	ErrShoppingFieldsRequired = errors.New("shop_name, total_cost and items are required")

	// ErrBadQuantity is returned for negative product quantities.
	ErrBadQuantity = errors.New("quantity must not be negative")

	// ErrBadItem is returned when a shopping item lacks product_id or quantity.
	ErrBadItem = errors.New("each item needs a product_id and a positive quantity")

	// ErrBadDate is returned for dates not in YYYY-MM-DD form.
	ErrBadDate = errors.New("last_opened_date must be YYYY-MM-DD")

	// ErrDuplicateCategory is returned when the category name is taken.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrDuplicateBarcode is returned when the barcode is taken.
	ErrDuplicateBarcode = errors.New("barcode already exists")

	// ErrCategoryNotFound is returned when category_id references nothing.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrProductNotFound is returned when the product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotFound is a generic missing-row sentinel for deletes.
	ErrNotFound = errors.New("not found")
)

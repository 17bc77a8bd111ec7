package products

type productForm struct {
	CategoryID    *int64  `json:"category_id" validate:"omitempty,gt=0"`
	SupplierID    *int64  `json:"supplier_id" validate:"omitempty,gt=0"`
	Name          string  `json:"name" validate:"required,min=2,max=150"`
	Description   string  `json:"description" validate:"max=500"`
	Stock         int     `json:"stock" validate:"gte=0"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
	SalePrice     float64 `json:"sale_price" validate:"gte=0"`
	IsActive      *bool   `json:"is_active"`
}

func (f productForm) toProduct() Product {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return Product{
		CategoryID:    f.CategoryID,
		SupplierID:    f.SupplierID,
		Name:          f.Name,
		Description:   f.Description,
		Stock:         f.Stock,
		PurchasePrice: f.PurchasePrice,
		SalePrice:     f.SalePrice,
		IsActive:      active,
	}
}

package models

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LineInput is one requested (product, quantity) pair, used both by order
// submission and by aggregate edits.
type LineInput struct {
	ProductID int     `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity"`
}

type SubmitOrderRequest struct {
	RestaurantID int         `json:"restaurant_id" binding:"required"`
	Note         string      `json:"note"`
	Lines        []LineInput `json:"lines" binding:"required"`
}

type UpdateAggregateRequest struct {
	Lines []LineInput `json:"lines" binding:"required"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"image_url"`
	SupplierID  int     `json:"supplier_id" binding:"required"`
}

type UpdateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	SupplierID  int     `json:"supplier_id"`
}

type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type CreateRestaurantRequest struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

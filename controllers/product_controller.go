package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resto-supply/models"
	"resto-supply/repositories"
)

type ProductController struct {
	products *repositories.ProductRepository
}

func NewProductController(products *repositories.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

const productCacheKey = "products_list"

func invalidateProductCache() {
	if models.RedisClient == nil {
		return
	}
	ctx := context.Background()
	iter := models.RedisClient.Scan(ctx, 0, productCacheKey+"*", 0).Iterator()
	for iter.Next(ctx) {
		models.RedisClient.Del(ctx, iter.Val())
	}
}

// @Summary Get all products
// @Description List the product catalog
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /products [get]
func (ctrl *ProductController) GetAll(c *gin.Context) {
	ctx := context.Background()

	if models.RedisClient != nil {
		cached, err := models.RedisClient.Get(ctx, productCacheKey).Result()
		if err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	products, err := ctrl.products.GetAll(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	response := models.Response{Success: true, Data: products}

	if models.RedisClient != nil {
		jsonData, _ := json.Marshal(response)
		models.RedisClient.Set(ctx, productCacheKey, string(jsonData), 5*time.Minute)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get product by ID
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid product ID"})
		return
	}

	product, err := ctrl.products.GetByID(context.Background(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: product})
}

// @Summary Create product
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product data"
// @Success 201 {object} models.Response
// @Router /admin/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		SupplierID:  req.SupplierID,
	}
	if err := ctrl.products.Create(context.Background(), product); err != nil {
		respondError(c, err)
		return
	}
	invalidateProductCache()

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Product created", Data: product})
}

// @Summary Update product
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body models.UpdateProductRequest true "Product data"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [put]
func (ctrl *ProductController) Update(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid product ID"})
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	ctx := context.Background()
	product, err := ctrl.products.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.ImageURL != "" {
		product.ImageURL = req.ImageURL
	}
	if req.SupplierID > 0 {
		product.SupplierID = req.SupplierID
	}

	if err := ctrl.products.Update(ctx, product); err != nil {
		respondError(c, err)
		return
	}
	invalidateProductCache()

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product updated", Data: product})
}

// @Summary Delete product
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid product ID"})
		return
	}

	if err := ctrl.products.Delete(context.Background(), id); err != nil {
		respondError(c, err)
		return
	}
	invalidateProductCache()

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product deleted"})
}

// @Summary Get product visibility
// @Description Restaurant IDs the product is visible to
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id}/visibility [get]
func (ctrl *ProductController) GetVisibility(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid product ID"})
		return
	}

	restaurantIDs, err := ctrl.products.Visibility(context.Background(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: gin.H{"restaurant_ids": restaurantIDs}})
}

// @Summary Add product visibility
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Param restaurant_id path int true "Restaurant ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id}/visibility/{restaurant_id} [post]
func (ctrl *ProductController) AddVisibility(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	restaurantID, _ := strconv.Atoi(c.Param("restaurant_id"))
	if id <= 0 || restaurantID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid ID"})
		return
	}

	if err := ctrl.products.AddVisibility(context.Background(), id, restaurantID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Visibility added"})
}

// @Summary Remove product visibility
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Param restaurant_id path int true "Restaurant ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id}/visibility/{restaurant_id} [delete]
func (ctrl *ProductController) RemoveVisibility(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	restaurantID, _ := strconv.Atoi(c.Param("restaurant_id"))
	if id <= 0 || restaurantID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid ID"})
		return
	}

	if err := ctrl.products.RemoveVisibility(context.Background(), id, restaurantID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Visibility removed"})
}

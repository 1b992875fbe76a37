package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resto-supply/models"
	"resto-supply/repositories"
)

type SupplierController struct {
	suppliers *repositories.SupplierRepository
}

func NewSupplierController(suppliers *repositories.SupplierRepository) *SupplierController {
	return &SupplierController{suppliers: suppliers}
}

// @Summary Get all suppliers
// @Tags Admin - Suppliers
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /admin/suppliers [get]
func (ctrl *SupplierController) GetAll(c *gin.Context) {
	suppliers, err := ctrl.suppliers.GetAll(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: suppliers})
}

// @Summary Get supplier by ID
// @Tags Admin - Suppliers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/suppliers/{id} [get]
func (ctrl *SupplierController) GetByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid supplier ID"})
		return
	}

	supplier, err := ctrl.suppliers.GetByID(context.Background(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: supplier})
}

// @Summary Create supplier
// @Tags Admin - Suppliers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param supplier body models.CreateSupplierRequest true "Supplier data"
// @Success 201 {object} models.Response
// @Router /admin/suppliers [post]
func (ctrl *SupplierController) Create(c *gin.Context) {
	var req models.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	supplier := &models.Supplier{Name: req.Name, Email: req.Email}
	if err := ctrl.suppliers.Create(context.Background(), supplier); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Supplier created", Data: supplier})
}

package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resto-supply/models"
	"resto-supply/repositories"
)

type RestaurantController struct {
	restaurants *repositories.RestaurantRepository
}

func NewRestaurantController(restaurants *repositories.RestaurantRepository) *RestaurantController {
	return &RestaurantController{restaurants: restaurants}
}

// @Summary Get all restaurants
// @Tags Admin - Restaurants
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /admin/restaurants [get]
func (ctrl *RestaurantController) GetAll(c *gin.Context) {
	restaurants, err := ctrl.restaurants.GetAll(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: restaurants})
}

// @Summary Get restaurant by ID
// @Tags Admin - Restaurants
// @Security BearerAuth
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/restaurants/{id} [get]
func (ctrl *RestaurantController) GetByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid restaurant ID"})
		return
	}

	restaurant, err := ctrl.restaurants.GetByID(context.Background(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: restaurant})
}

// @Summary Create restaurant
// @Tags Admin - Restaurants
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param restaurant body models.CreateRestaurantRequest true "Restaurant data"
// @Success 201 {object} models.Response
// @Router /admin/restaurants [post]
func (ctrl *RestaurantController) Create(c *gin.Context) {
	var req models.CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	restaurant := &models.Restaurant{Name: req.Name, Active: true}
	if req.Active != nil {
		restaurant.Active = *req.Active
	}
	if err := ctrl.restaurants.Create(context.Background(), restaurant); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Restaurant created", Data: restaurant})
}

// @Summary Delete restaurant
// @Description Remove a restaurant, detach its members and deactivate users left without one
// @Tags Admin - Restaurants
// @Security BearerAuth
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/restaurants/{id} [delete]
func (ctrl *RestaurantController) Delete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid restaurant ID"})
		return
	}

	deactivated, err := ctrl.restaurants.Delete(context.Background(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Restaurant deleted",
		Data:    gin.H{"deactivated_users": deactivated},
	})
}

// @Summary Add restaurant member
// @Tags Admin - Restaurants
// @Security BearerAuth
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param user_id path int true "User ID"
// @Success 200 {object} models.Response
// @Router /admin/restaurants/{id}/members/{user_id} [post]
func (ctrl *RestaurantController) AddMember(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	userID, _ := strconv.Atoi(c.Param("user_id"))
	if id <= 0 || userID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid ID"})
		return
	}

	if err := ctrl.restaurants.AddMember(context.Background(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Member added"})
}

package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resto-supply/models"
	"resto-supply/services"
)

type OrderController struct {
	orders   *services.OrderService
	dispatch *services.DispatchService
}

func NewOrderController(orders *services.OrderService, dispatch *services.DispatchService) *OrderController {
	return &OrderController{orders: orders, dispatch: dispatch}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrCutoffExceeded):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Success: false, Message: err.Error()})
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: err.Error()})
	case models.IsValidation(err):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Internal error",
			Error:   err.Error(),
		})
	}
}

// @Summary Submit order
// @Description Submit a draft order; it is merged into the day's aggregate for the restaurant
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param order body models.SubmitOrderRequest true "Order data"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /orders [post]
func (ctrl *OrderController) Submit(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	order, err := ctrl.orders.Submit(context.Background(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order submitted and aggregated",
		Data:    order,
	})
}

// @Summary Get current aggregate order
// @Description Current unsent aggregate for the caller and a restaurant; pending drafts are merged first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param restaurant_id query int false "Restaurant ID (defaults to the caller's first restaurant)"
// @Success 200 {object} models.Response
// @Router /orders/current [get]
func (ctrl *OrderController) GetCurrent(c *gin.Context) {
	userID := c.GetInt("user_id")

	restaurantID, _ := strconv.Atoi(c.Query("restaurant_id"))
	if restaurantID == 0 {
		restaurants, err := ctrl.orders.MyRestaurants(context.Background(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(restaurants) == 0 {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "No restaurant associated with the user"})
			return
		}
		restaurantID = restaurants[0].ID
	}

	order, err := ctrl.orders.GetCurrentAggregate(context.Background(), userID, restaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusOK, models.Response{
			Success: true,
			Data:    gin.H{"lines": []models.OrderLine{}, "total": 0},
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: order})
}

// @Summary Update current aggregate order
// @Description Edit line quantities of the caller's most recent unsent order
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param lines body models.UpdateAggregateRequest true "Requested lines"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/current [put]
func (ctrl *OrderController) UpdateCurrent(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.UpdateAggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	order, err := ctrl.orders.UpdateCurrentAggregate(context.Background(), userID, req.Lines)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order updated", Data: order})
}

// @Summary My restaurants
// @Description Restaurants the caller belongs to
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /orders/my-restaurants [get]
func (ctrl *OrderController) MyRestaurants(c *gin.Context) {
	userID := c.GetInt("user_id")

	restaurants, err := ctrl.orders.MyRestaurants(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: restaurants})
}

// @Summary Send order now
// @Description Dispatch one aggregate order immediately instead of waiting for the daily flush
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id}/send [post]
func (ctrl *OrderController) SendNow(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid order ID"})
		return
	}

	if err := ctrl.dispatch.SendOne(context.Background(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order dispatched"})
}

// @Summary Sent orders report
// @Description Flattened per-line report over sent orders for the caller's restaurants
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /admin/orders [get]
func (ctrl *OrderController) SentReport(c *gin.Context) {
	userID := c.GetInt("user_id")

	restaurants, err := ctrl.orders.MyRestaurants(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]int, 0, len(restaurants))
	for _, r := range restaurants {
		ids = append(ids, r.ID)
	}

	report, err := ctrl.orders.ListSentOrders(context.Background(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Data: report})
}

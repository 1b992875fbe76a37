package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-supply/models"
	"resto-supply/repositories"
	"resto-supply/utils"
)

type AuthController struct {
	users *repositories.UserRepository
}

func NewAuthController(users *repositories.UserRepository) *AuthController {
	return &AuthController{users: users}
}

// @Summary Login
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	user, err := ctrl.users.GetByEmail(context.Background(), req.Email)
	if err != nil {
		if models.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Invalid email or password"})
			return
		}
		respondError(c, err)
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Account is disabled"})
		return
	}

	ok, err := utils.VerifyPassword(user.Password, req.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data:    models.LoginResponse{Token: token, User: *user},
	})
}

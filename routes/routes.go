package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"resto-supply/controllers"
	"resto-supply/middleware"
	"resto-supply/models"
)

type Controllers struct {
	Auth       *controllers.AuthController
	Order      *controllers.OrderController
	Product    *controllers.ProductController
	Supplier   *controllers.SupplierController
	Restaurant *controllers.RestaurantController
}

func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/login", ctrl.Auth.Login)

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/products", ctrl.Product.GetAll)
		auth.GET("/products/:id", ctrl.Product.GetByID)

		orders := auth.Group("/orders", middleware.Authorize(models.PermSubmitOrders))
		{
			orders.POST("", ctrl.Order.Submit)
			orders.GET("/my-restaurants", ctrl.Order.MyRestaurants)
			orders.GET("/current", ctrl.Order.GetCurrent)
		}
		auth.PUT("/orders/current", middleware.Authorize(models.PermEditAggregate), ctrl.Order.UpdateCurrent)
		auth.POST("/orders/:id/send", middleware.Authorize(models.PermSendOrders), ctrl.Order.SendNow)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.GET("/orders", middleware.Authorize(models.PermViewReports), ctrl.Order.SentReport)

		products := admin.Group("/products", middleware.Authorize(models.PermManageCatalog))
		{
			products.POST("", ctrl.Product.Create)
			products.PUT("/:id", ctrl.Product.Update)
			products.DELETE("/:id", ctrl.Product.Delete)
			products.GET("/:id/visibility", ctrl.Product.GetVisibility)
			products.POST("/:id/visibility/:restaurant_id", ctrl.Product.AddVisibility)
			products.DELETE("/:id/visibility/:restaurant_id", ctrl.Product.RemoveVisibility)
		}

		suppliers := admin.Group("/suppliers", middleware.Authorize(models.PermManageSuppliers))
		{
			suppliers.GET("", ctrl.Supplier.GetAll)
			suppliers.GET("/:id", ctrl.Supplier.GetByID)
			suppliers.POST("", ctrl.Supplier.Create)
		}

		restaurants := admin.Group("/restaurants", middleware.Authorize(models.PermManageRestaurants))
		{
			restaurants.GET("", ctrl.Restaurant.GetAll)
			restaurants.GET("/:id", ctrl.Restaurant.GetByID)
			restaurants.POST("", ctrl.Restaurant.Create)
			restaurants.DELETE("/:id", ctrl.Restaurant.Delete)
			restaurants.POST("/:id/members/:user_id", ctrl.Restaurant.AddMember)
		}
	}
}

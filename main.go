package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"resto-supply/config"
	"resto-supply/controllers"
	_ "resto-supply/docs"
	"resto-supply/libs"
	"resto-supply/middleware"
	"resto-supply/models"
	"resto-supply/repositories"
	"resto-supply/routes"
	"resto-supply/services"
)

// @title Resto Supply API
// @version 1.0
// @description Restaurant procurement API: order consolidation and supplier dispatch
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.LoadConfig()

	if config.AppConfig.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	config.ConnectDB()
	defer config.CloseDB()

	models.InitRedis()
	defer models.CloseRedis()

	cutoff, err := services.ParseTimeOfDay(config.AppConfig.OrderCutoff)
	if err != nil {
		log.Fatalf("Invalid ORDER_CUTOFF: %v", err)
	}
	dispatchAt, err := services.ParseTimeOfDay(config.AppConfig.DispatchAt)
	if err != nil {
		log.Fatalf("Invalid DISPATCH_AT: %v", err)
	}

	mailer, err := libs.NewMailer(config.AppConfig)
	if err != nil {
		log.Fatalf("Failed to configure mailer: %v", err)
	}

	orderRepo := repositories.NewOrderRepository(config.DB)
	productRepo := repositories.NewProductRepository(config.DB)
	supplierRepo := repositories.NewSupplierRepository(config.DB)
	restaurantRepo := repositories.NewRestaurantRepository(config.DB)
	userRepo := repositories.NewUserRepository(config.DB)

	clock := services.SystemClock()
	orderSvc := services.NewOrderService(orderRepo, productRepo, restaurantRepo, clock, cutoff)
	dispatchSvc := services.NewDispatchService(orderRepo, userRepo, mailer, config.AppConfig.SystemSender)

	scheduler := services.NewScheduler(clock, dispatchAt, func(ctx context.Context) {
		sent, err := dispatchSvc.FlushAll(ctx)
		if err != nil {
			log.Printf("Scheduled dispatch failed: %v", err)
			return
		}
		log.Printf("Scheduled dispatch complete: %d orders sent", sent)
	})
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	scheduler.Start(schedulerCtx)
	log.Printf("Dispatch scheduler armed for %s daily", config.AppConfig.DispatchAt)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	routes.SetupRoutes(router, routes.Controllers{
		Auth:       controllers.NewAuthController(userRepo),
		Order:      controllers.NewOrderController(orderSvc, dispatchSvc),
		Product:    controllers.NewProductController(productRepo),
		Supplier:   controllers.NewSupplierController(supplierRepo),
		Restaurant: controllers.NewRestaurantController(restaurantRepo),
	})

	port := ":" + config.AppConfig.Port
	log.Printf("Server starting on port %s", port)
	log.Printf("Swagger UI: http://localhost:%s/swagger/index.html", config.AppConfig.Port)

	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

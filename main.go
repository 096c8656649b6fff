package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yashrajoria/farm-marketplace/controllers"
	"github.com/yashrajoria/farm-marketplace/database"
	"github.com/yashrajoria/farm-marketplace/kafka"
	"github.com/yashrajoria/farm-marketplace/logger"
	"github.com/yashrajoria/farm-marketplace/middleware"
	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/repository"
	"github.com/yashrajoria/farm-marketplace/routes"
	"github.com/yashrajoria/farm-marketplace/services"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Log.Sync()

	db, err := database.ConnectPostgres(cfg.Postgres, logger.Log,
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Message{},
		&models.ActivityLogEntry{},
	)
	if err != nil {
		logger.Log.Fatal("Database connection failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL, logger.Log)
	if err != nil {
		logger.Log.Fatal("Redis connection failed", zap.Error(err))
	}

	var events kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger.Log)
		defer producer.Close()
		events = producer
	} else {
		logger.Log.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	productRepo := repository.NewGormProductRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)
	activityRepo := repository.NewGormActivityRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	cartRepo := repository.NewRedisCartRepository(redisClient, time.Duration(cfg.CartTTLDays)*24*time.Hour)

	productService := services.NewProductService(productRepo, events, logger.Log)
	cartService := services.NewCartService(cartRepo, productRepo, orderRepo, events, logger.Log)
	orderService := services.NewOrderService(orderRepo, productRepo, events, logger.Log)
	messageService := services.NewMessageService(messageRepo, userRepo, logger.Log)
	activityService := services.NewActivityService(activityRepo)
	userService := services.NewUserService(userRepo, logger.Log)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.RateLimit(rate.Every(time.Second/10), 30))

	routes.Register(r, routes.Controllers{
		Products: controllers.NewProductController(productService),
		Cart:     controllers.NewCartController(cartService),
		Orders:   controllers.NewOrderController(orderService),
		Messages: controllers.NewMessageController(messageService),
		Admin:    controllers.NewAdminController(activityService, userService),
	}, []byte(cfg.JWTSecret))

	logger.Log.Info("Starting server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed", zap.Error(err))
	}
}

package main

import (
	"log"
	"time"

	shttp "shoestore/internal/controllers/http"
	"shoestore/internal/infra"
	mmysql "shoestore/internal/infra/mysql"
	"shoestore/internal/infra/rabbitmq"
	"shoestore/internal/pricing"
	mysqlrepo "shoestore/internal/repository/mysql"
	"shoestore/internal/services"
	"shoestore/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := mmysql.NewMySQL(cfg)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1000)
	sqlDB.SetMaxIdleConns(200)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	cartRepo := mysqlrepo.NewCartRepository(db)
	stockRepo := mysqlrepo.NewStockRepository(db)
	couponRepo := mysqlrepo.NewCouponRepository(db)
	orderRepo := mysqlrepo.NewOrderRepository(db)

	catalogClient := infra.NewCatalogClient(cfg.CatalogURL, 2*time.Second)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, "order.exchange")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	ledger := services.NewStockLedger(stockRepo, logger)
	carts := services.NewCartManager(cartRepo, ledger, catalogClient, logger)
	coupons := services.NewCouponValidator(couponRepo, logger)
	shipping := pricing.TieredRule{Flat: cfg.ShippingFlatFee, FreeOver: cfg.ShippingFreeOver}
	checkout := services.NewCheckoutService(carts, orderRepo, ledger, coupons, publisher, shipping, logger)
	orders := services.NewOrderService(orderRepo, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost + ":" + cfg.RedisPort,
		DB:           0,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	carts.SetRedisClient(redisClient)

	handler := shttp.NewHandler(carts, checkout, coupons, orders, shipping, redisClient, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.PrometheusEnabled {
		logger.Info("registering /metrics endpoint")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "shoestore"})
	})

	handler.RegisterRoutes(r)

	logger.Info("starting shoestore service", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server run", zap.Error(err))
	}
}

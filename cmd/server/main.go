// VenderSphere 服务主程序
// 功能：商品目录、购物车、订单、支付对账、卖家提现与管理端看板的统一 REST 入口
// 架构：DDD 单体 + MySQL + Redis + Kafka
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	adminapp "github.com/wyfcoding/vendersphere/internal/admin/application"
	adminmysql "github.com/wyfcoding/vendersphere/internal/admin/infrastructure/persistence/mysql"
	adminhttp "github.com/wyfcoding/vendersphere/internal/admin/interfaces/http"
	cartapp "github.com/wyfcoding/vendersphere/internal/cart/application"
	cartdomain "github.com/wyfcoding/vendersphere/internal/cart/domain"
	cartmysql "github.com/wyfcoding/vendersphere/internal/cart/infrastructure/persistence/mysql"
	carthttp "github.com/wyfcoding/vendersphere/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/vendersphere/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	catalogmessaging "github.com/wyfcoding/vendersphere/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/vendersphere/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/vendersphere/internal/catalog/interfaces/http"
	notifyapp "github.com/wyfcoding/vendersphere/internal/notification/application"
	notifydomain "github.com/wyfcoding/vendersphere/internal/notification/domain"
	notifymail "github.com/wyfcoding/vendersphere/internal/notification/infrastructure/mail"
	notifymessaging "github.com/wyfcoding/vendersphere/internal/notification/infrastructure/messaging"
	notifymysql "github.com/wyfcoding/vendersphere/internal/notification/infrastructure/persistence/mysql"
	notifyhttp "github.com/wyfcoding/vendersphere/internal/notification/interfaces/http"
	orderapp "github.com/wyfcoding/vendersphere/internal/order/application"
	orderdomain "github.com/wyfcoding/vendersphere/internal/order/domain"
	ordermessaging "github.com/wyfcoding/vendersphere/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/vendersphere/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/vendersphere/internal/order/interfaces/http"
	paymentapp "github.com/wyfcoding/vendersphere/internal/payment/application"
	paymentdomain "github.com/wyfcoding/vendersphere/internal/payment/domain"
	paymentmessaging "github.com/wyfcoding/vendersphere/internal/payment/infrastructure/messaging"
	paymentmysql "github.com/wyfcoding/vendersphere/internal/payment/infrastructure/persistence/mysql"
	paymenthttp "github.com/wyfcoding/vendersphere/internal/payment/interfaces/http"
	payoutapp "github.com/wyfcoding/vendersphere/internal/payout/application"
	payoutdomain "github.com/wyfcoding/vendersphere/internal/payout/domain"
	payoutmysql "github.com/wyfcoding/vendersphere/internal/payout/infrastructure/persistence/mysql"
	payouthttp "github.com/wyfcoding/vendersphere/internal/payout/interfaces/http"
	userapp "github.com/wyfcoding/vendersphere/internal/user/application"
	userdomain "github.com/wyfcoding/vendersphere/internal/user/domain"
	usermysql "github.com/wyfcoding/vendersphere/internal/user/infrastructure/persistence/mysql"
	userhttp "github.com/wyfcoding/vendersphere/internal/user/interfaces/http"
	"github.com/wyfcoding/vendersphere/pkg/cache"
	"github.com/wyfcoding/vendersphere/pkg/config"
	"github.com/wyfcoding/vendersphere/pkg/db"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/metrics"
	"github.com/wyfcoding/vendersphere/pkg/middleware"
	"github.com/wyfcoding/vendersphere/pkg/mq"
	"github.com/wyfcoding/vendersphere/pkg/ratelimit"
)

func main() {
	// 1. 加载配置
	configPath := flag.String("config", "configs/server/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting VenderSphere",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	dbCfg := db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}
	database, err := db.Init(dbCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	// 4. 初始化 Redis
	redisCfg := cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisCache, err := cache.New(redisCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
	}
	defer redisCache.Close()

	// 5. 初始化限流器
	rateLimiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())

	// 6. 初始化 Kafka 生产者
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
	}
	defer producer.Close()

	// 7. 初始化指标
	metricsInstance := metrics.New("server")
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 8. 建表与索引（唯一索引是幂等与去重判定的依据）
	if err := database.DB.AutoMigrate(
		&catalogdomain.Product{}, &catalogdomain.Category{},
		&catalogdomain.Review{}, &catalogdomain.Testimonial{},
		&cartdomain.Cart{}, &cartdomain.CartItem{},
		&orderdomain.Order{}, &orderdomain.OrderItem{},
		&paymentdomain.Payment{},
		&payoutdomain.Payout{},
		&userdomain.User{}, &userdomain.SellerRequest{},
		&notifydomain.Subscriber{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database schema", "error", err)
	}

	// 9. 初始化仓储
	productRepo := catalogmysql.NewProductRepository(database.DB)
	categoryRepo := catalogmysql.NewCategoryRepository(database.DB)
	reviewRepo := catalogmysql.NewReviewRepository(database.DB)
	testimonialRepo := catalogmysql.NewTestimonialRepository(database.DB)
	cartRepo := cartmysql.NewCartRepository(database.DB)
	orderRepo := ordermysql.NewOrderRepository(database)
	paymentRepo := paymentmysql.NewPaymentRepository(database)
	payoutRepo := payoutmysql.NewPayoutRepository(database.DB)
	ledgerRepo := payoutmysql.NewLedgerRepository(database.DB)
	userRepo := usermysql.NewUserRepository(database.DB)
	sellerRequestRepo := usermysql.NewSellerRequestRepository(database.DB)
	subscriberRepo := notifymysql.NewSubscriberRepository(database.DB)
	dashboardRepo := adminmysql.NewDashboardRepository(database.DB)

	// 10. 初始化应用服务
	checkoutPolicy, err := orderapp.PolicyFromConfig(cfg.Checkout)
	if err != nil {
		logger.Fatal(ctx, "Invalid checkout policy", "error", err)
	}

	mailSender := notifymail.NewSMTPSender(cfg.Mail)
	notifyService := notifyapp.NewNotificationApplicationService(subscriberRepo, mailSender)
	catalogService := catalogapp.NewCatalogApplicationService(
		productRepo, categoryRepo, reviewRepo, testimonialRepo,
		redisCache, catalogmessaging.NewKafkaPublisher(producer))
	cartService := cartapp.NewCartApplicationService(cartRepo, productRepo, metricsInstance)
	orderService := orderapp.NewOrderApplicationService(
		orderRepo, cartRepo, productRepo,
		ordermessaging.NewKafkaPublisher(producer), checkoutPolicy, metricsInstance)
	paymentService := paymentapp.NewPaymentApplicationService(
		paymentRepo, orderRepo,
		paymentmessaging.NewKafkaPublisher(producer), metricsInstance)
	payoutService := payoutapp.NewPayoutApplicationService(payoutRepo, ledgerRepo, metricsInstance)
	userService := userapp.NewUserApplicationService(userRepo, sellerRequestRepo, productRepo, notifyService)
	adminService := adminapp.NewAdminApplicationService(dashboardRepo, redisCache)

	// 11. 启动订单事件消费者（发送下单确认邮件）
	orderConsumer := notifymessaging.NewOrderEventConsumer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	}, notifyService)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := orderConsumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "Order event consumer stopped", "error", err)
		}
	}()

	// 12. 创建 HTTP 服务器
	router := gin.New()
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	public := router.Group("/api/v1")
	private := router.Group("/api/v1", middleware.JWTAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Issuer))
	if cfg.RateLimit.Enabled {
		// 挂在 JWT 之后，已认证流量按用户限流，公开流量按 IP
		limit := middleware.RateLimitMiddleware(rateLimiter, cfg.RateLimit)
		public.Use(limit)
		private.Use(limit)
	}

	cataloghttp.NewCatalogHandler(catalogService).RegisterRoutes(public, private)
	carthttp.NewCartHandler(cartService).RegisterRoutes(private)
	orderhttp.NewOrderHandler(orderService).RegisterRoutes(private)
	paymenthttp.NewPaymentHandler(paymentService).RegisterRoutes(private)
	payouthttp.NewPayoutHandler(payoutService).RegisterRoutes(private)
	userhttp.NewUserHandler(userService).RegisterRoutes(public, private)
	notifyhttp.NewNotificationHandler(notifyService).RegisterRoutes(public)
	adminhttp.NewAdminHandler(adminService).RegisterRoutes(private)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 13. 启动 HTTP 服务器
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 14. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down VenderSphere")

	stopConsumer()
	if err := orderConsumer.Close(); err != nil {
		logger.Error(ctx, "Order event consumer close error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}

	logger.Info(ctx, "VenderSphere stopped")
}

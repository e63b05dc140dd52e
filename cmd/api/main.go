package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/opsdash/platform/internal/application"
	kafkaInfra "github.com/opsdash/platform/internal/infrastructure/kafka"
	mongoRepo "github.com/opsdash/platform/internal/infrastructure/mongodb"
	"github.com/opsdash/platform/pkg/kafka"
	"github.com/opsdash/platform/pkg/logging"
	"github.com/opsdash/platform/pkg/metrics"
	"github.com/opsdash/platform/pkg/middleware"
	"github.com/opsdash/platform/pkg/mongodb"
)

const serviceName = "opsdash-api"

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting opsdash API")

	config := loadConfig()
	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := kafka.NewProducer(config.Kafka)
	guardedProducer := kafka.NewGuardedProducer(producer, m, logger)
	defer guardedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := kafka.NewEnvelopeFactory("/opsdash/api")
	publisher := kafkaInfra.NewEventPublisher(guardedProducer, eventFactory)

	db := mongoClient.Database()
	batchRepo := mongoRepo.NewBatchRepository(db)
	productRepo := mongoRepo.NewProductRepository(db)
	warehouseRepo := mongoRepo.NewWarehouseRepository(db)
	transportRepo := mongoRepo.NewTransportRepository(db)
	shipmentRepo := mongoRepo.NewShipmentRepository(db)
	saleRepo := mongoRepo.NewSaleRepository(db)
	uow := mongoRepo.NewUnitOfWork(mongoClient)

	stockService := application.NewStockService(batchRepo, productRepo, saleRepo, uow, publisher, m, logger)
	shipmentService := application.NewShipmentService(shipmentRepo, warehouseRepo, transportRepo, uow, publisher, m, logger)
	analyticsService := application.NewAnalyticsService(batchRepo, productRepo, saleRepo, logger)
	reportService := application.NewReportService(stockService, analyticsService, logger)
	catalogService := application.NewCatalogService(productRepo, warehouseRepo, transportRepo, logger)

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	authConfig := &middleware.AuthConfig{
		Secret:   []byte(config.JWTSecret),
		Required: config.AuthRequired,
	}
	tenantConfig := &middleware.TenantConfig{DefaultTenantID: config.DefaultTenantID}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(authConfig))
	api.Use(middleware.Tenant(tenantConfig))
	{
		// Catalog
		api.POST("/products", createProductHandler(catalogService, logger))
		api.GET("/products", listProductsHandler(catalogService, logger))
		api.GET("/products/:id", getProductHandler(catalogService, logger))
		api.POST("/warehouses", createWarehouseHandler(catalogService, logger))
		api.GET("/warehouses", listWarehousesHandler(catalogService, logger))
		api.POST("/transports", createTransportHandler(catalogService, logger))
		api.GET("/transports/available", listTransportsHandler(catalogService, logger))

		// Stock ledger
		api.POST("/stock/receive", receiveStockHandler(stockService, logger))
		api.POST("/stock/adjust", adjustStockHandler(stockService, logger))
		api.POST("/stock/transfer", transferStockHandler(stockService, logger))
		api.PUT("/stock/prices", updatePricesHandler(stockService, logger))
		api.GET("/warehouses/:id/stock", warehouseStockHandler(stockService, logger))
		api.GET("/warehouses/:id/stock/report", warehouseStockReportHandler(reportService, logger))
		api.DELETE("/warehouses/:id/products/:productId", removeProductHandler(stockService, logger))
		api.POST("/sales", recordSaleHandler(stockService, logger))

		// Shipments
		api.POST("/shipments", createShipmentHandler(shipmentService, logger))
		api.GET("/shipments", listShipmentsHandler(shipmentService, logger))
		api.GET("/shipments/track/:trackingNumber", trackShipmentHandler(shipmentService, logger))
		api.POST("/shipments/wizard/:step/validate", wizardStepHandler(logger))
		api.GET("/shipments/:id", getShipmentHandler(shipmentService, logger))
		api.PATCH("/shipments/:id/status", updateShipmentStatusHandler(shipmentService, logger))
		api.POST("/shipments/:id/location", updateShipmentLocationHandler(shipmentService, logger))
		api.POST("/shipments/:id/quality-check", qualityCheckHandler(shipmentService, logger))
		api.DELETE("/shipments/:id", deleteShipmentHandler(shipmentService, logger))

		// Analytics
		api.GET("/analytics/turnover", turnoverHandler(analyticsService, logger))
		api.GET("/analytics/profitability", profitabilityHandler(analyticsService, logger))
		api.GET("/analytics/slow-moving", slowMovingHandler(analyticsService, logger))
		api.GET("/analytics/expiry", expiryAlertsHandler(analyticsService, logger))
		api.GET("/analytics/expiry/report", expiryReportHandler(reportService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr      string
	JWTSecret       string
	AuthRequired    bool
	DefaultTenantID string
	MongoDB         *mongodb.Config
	Kafka           *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		AuthRequired:    getEnv("AUTH_REQUIRED", "true") == "true",
		DefaultTenantID: getEnv("DEFAULT_TENANT_ID", "default"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "opsdash"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createProductHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateProductCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		product, err := service.CreateProduct(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func listProductsHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		products, err := service.ListProducts(c.Request.Context(), middleware.GetTenantID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func getProductHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		product, err := service.GetProduct(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func createWarehouseHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateWarehouseCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		warehouse, err := service.CreateWarehouse(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusCreated, warehouse)
	}
}

func listWarehousesHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		warehouses, err := service.ListWarehouses(c.Request.Context(), middleware.GetTenantID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, warehouses)
	}
}

func createTransportHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateTransportCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		transport, err := service.CreateTransport(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusCreated, transport)
	}
}

func listTransportsHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		transports, err := service.ListAvailableTransports(c.Request.Context(), middleware.GetTenantID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, transports)
	}
}

func receiveStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.ReceiveStockCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		batch, err := service.ReceiveStock(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusCreated, batch)
	}
}

func adjustStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.AdjustStockCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := service.AdjustStock(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func transferStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.TransferStockCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := service.TransferStock(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func updatePricesHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateBatchPricesCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := service.UpdateBatchPrices(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func warehouseStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		stock, err := service.GetWarehouseStock(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, stock)
	}
}

func warehouseStockReportHandler(service *application.ReportService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		warehouseID := c.Param("id")
		data, err := service.WarehouseStockReport(c.Request.Context(), middleware.GetTenantID(c), warehouseID)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		filename := fmt.Sprintf("warehouse-stock-%s.xlsx", warehouseID)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}
}

func removeProductHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.RemoveProductCommand{
			WarehouseID: c.Param("id"),
			ProductID:   c.Param("productId"),
		}

		result, err := service.RemoveProductFromWarehouse(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func recordSaleHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.RecordSaleCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}
		if cmd.SoldBy == "" {
			cmd.SoldBy = middleware.GetUserID(c)
		}

		sale, err := service.RecordSale(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusCreated, sale)
	}
}

func createShipmentHandler(service *application.ShipmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateShipmentCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		shipment, err := service.CreateShipment(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusCreated, shipment)
	}
}

func listShipmentsHandler(service *application.ShipmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query application.ListShipmentsQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		shipments, err := service.ListShipments(c.Request.Context(), middleware.GetTenantID(c), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, shipments)
	}
}

func getShipmentHandler(service *application.ShipmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		shipment, err := service.GetShipment(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, shipment)
	}
}

func trackShipmentHandler(service *application.ShipmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		shipment, err := service.TrackShipment(c.Request.Context(), middleware.GetTenantID(c), c.Param("trackingNumber"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, shipment)
	}
}

func updateShipmentStatusHandler(service *application.ShipmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateShipmentStatusCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}
		cmd.ShipmentID = c.Param("id")

		shipment, err := service.UpdateStatus(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, shipment)
	}
}

func updateShipmentLocationHandler(service *application.ShipmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateShipmentLocationCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}
		cmd.ShipmentID = c.Param("id")

		shipment, err := service.UpdateLocation(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, shipment)
	}
}

func qualityCheckHandler(service *application.ShipmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.PerformQualityCheckCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}
		cmd.ShipmentID = c.Param("id")
		if cmd.PerformedBy == "" {
			cmd.PerformedBy = middleware.GetUserID(c)
		}

		shipment, err := service.PerformQualityCheck(c.Request.Context(), middleware.GetTenantID(c), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, shipment)
	}
}

func deleteShipmentHandler(service *application.ShipmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteShipment(c.Request.Context(), middleware.GetTenantID(c), c.Param("id")); err != nil {
			responder.RespondWithError(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func wizardStepHandler(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		step, err := strconv.Atoi(c.Param("step"))
		if err != nil {
			responder.RespondBadRequest("wizard step must be a number")
			return
		}

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			responder.RespondBadRequest("failed to read request body")
			return
		}

		if err := application.ValidateWizardStep(step, payload); err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"step": step, "valid": true})
	}
}

func windowDaysParam(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("windowDays", "0"))
	if err != nil {
		return 0
	}
	return days
}

func turnoverHandler(service *application.AnalyticsService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		entries, err := service.Turnover(c.Request.Context(), middleware.GetTenantID(c), windowDaysParam(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func profitabilityHandler(service *application.AnalyticsService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		entries, err := service.Profitability(c.Request.Context(), middleware.GetTenantID(c), windowDaysParam(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func slowMovingHandler(service *application.AnalyticsService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		ageDays, _ := strconv.Atoi(c.DefaultQuery("ageDays", "0"))
		batches, err := service.SlowMoving(c.Request.Context(), middleware.GetTenantID(c), ageDays)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, batches)
	}
}

func expiryAlertsHandler(service *application.AnalyticsService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		alerts, err := service.ExpiryAlerts(c.Request.Context(), middleware.GetTenantID(c), windowDaysParam(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, alerts)
	}
}

func expiryReportHandler(service *application.ReportService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		data, err := service.ExpiryReport(c.Request.Context(), middleware.GetTenantID(c), windowDaysParam(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="expiry-alerts.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}
}

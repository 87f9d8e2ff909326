package server

import (
	"context"

	"eth-gateway/internal/handler"
	"eth-gateway/internal/handler/response"
	"eth-gateway/internal/server/middleware"
	"eth-gateway/pkg/monitor"
	"eth-gateway/pkg/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterConfig struct {
	RateLimitRPS   int // 0 = 不限流
	RateLimitBurst int
	CorsOrigins    []string
}

// NewHTTPRouter 初始化并返回一个 Gin Engine; ctx 控制限流器的后台清理
func NewHTTPRouter(ctx context.Context, cfg RouterConfig, node handler.NodeAPI) *gin.Engine {
	// 0. 初始化监控指标与自定义校验规则
	monitor.Init()
	validator.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(middleware.CorrelationID())
	r.Use(middleware.CORS(cfg.CorsOrigins))
	r.Use(monitor.PrometheusMiddleware())
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	}

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", monitor.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, gin.H{"pong": true})
		})
		registerNodeRoutes(api, handler.NewNodeHandler(node))
	}

	return r
}

func registerNodeRoutes(rg *gin.RouterGroup, h *handler.NodeHandler) {
	node := rg.Group("/node")
	{
		node.GET("/syncing", h.IsSyncing)
		node.GET("/block-number", h.GetBlockNumber)
		node.GET("/accounts", h.GetAccounts)
	}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.CreateAccount)
		accounts.GET("/:address/balance", h.GetBalance)
	}

	blocks := rg.Group("/blocks")
	{
		blocks.GET("/:number", h.GetBlock)
		blocks.GET("/:number/transactions/:index", h.GetTransactionFromBlock)
	}

	txs := rg.Group("/transactions")
	{
		txs.GET("/:hash", h.GetTransaction)
		txs.POST("/info", h.SendTransactionInfo)
		txs.POST("", h.SendTransaction)
	}

	rg.GET("/gas-prices", h.GetGasPrices)
}

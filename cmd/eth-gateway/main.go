package main

import (
	"context"
	"time"

	"eth-gateway/internal/gasoracle"
	"eth-gateway/internal/server"
	"eth-gateway/internal/service"
	"eth-gateway/internal/service/mq"
	"eth-gateway/pkg/cache"
	"eth-gateway/pkg/config"
	"eth-gateway/pkg/database"
	"eth-gateway/pkg/logger"
	"eth-gateway/pkg/utils/lock"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "eth-gateway/docs/swagger"
)

// @title Ethereum Gateway API
// @version 1.0
// @description HTTP gateway in front of an Ethereum JSON-RPC node

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()
	cfg := config.Global

	// 1. 初始化 Logger
	logger.Init(logger.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. 连接节点
	dialCtx, dialCancel := context.WithTimeout(ctx, cfg.Eth.RpcTimeout)
	node, err := service.DialNode(dialCtx, cfg.Eth.RpcUrl)
	dialCancel()
	if err != nil {
		logger.Fatal("节点连接失败", zap.String("rpc", cfg.Eth.RpcUrl), zap.Error(err))
	}
	defer node.Close()
	logger.Info("节点已连接", zap.String("rpc", cfg.Eth.RpcUrl))

	// 3. Redis (可选): L2 缓存、发送锁、Redis Streams
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		defer rdb.Close()
	}

	// 4. 缓存: 本地内存, 有 Redis 时叠加为两级缓存
	var c cache.Cache = cache.NewMemoryCache(5*time.Minute, 10*time.Minute)
	if rdb != nil {
		c = cache.NewMultiLevelCache(c, cache.NewRedisCache(rdb, "eth_gateway:"))
	}

	// 5. Gas 预言机
	oracle := gasoracle.WithCache(
		gasoracle.NewHTTPOracle(cfg.GasOracle.Url, cfg.GasOracle.Timeout),
		c, cfg.GasOracle.CacheTTL)

	// 6. 消息队列
	options := []service.Option{service.WithCache(c)}
	switch cfg.MQ.Type {
	case "kafka":
		logger.Info("使用 Kafka 作为消息队列...", zap.Strings("brokers", cfg.MQ.Brokers))
		producer := mq.NewKafkaProducer(cfg.MQ.Brokers)
		defer producer.Close()
		options = append(options, service.WithProducer(producer))
	case "redis":
		if rdb == nil {
			logger.Fatal("mq.type=redis 需要开启 redis.enabled")
		}
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer := mq.NewRedisProducer(rdb, 10000)
		defer producer.Close()
		options = append(options, service.WithProducer(producer))
	case "", "none":
	default:
		logger.Fatal("未知的 mq.type", zap.String("type", cfg.MQ.Type))
	}
	if rdb != nil {
		options = append(options, service.WithLock(lock.NewRedisLock(rdb)))
	}

	// 7. 业务服务
	nodeService := service.NewNodeService(node, oracle, service.Options{
		RPCTimeout:     cfg.Eth.RpcTimeout,
		BlockTTL:       cfg.Cache.BlockTTL,
		WaitReceipt:    cfg.Send.WaitReceipt,
		ReceiptTimeout: cfg.Send.ReceiptTimeout,
		PollInterval:   cfg.Send.PollInterval,
		LockTTL:        cfg.Send.LockTTL,
		EventTopic:     cfg.MQ.Topic,
	}, options...)

	// 8. HTTP Router
	r := server.NewHTTPRouter(ctx, server.RouterConfig{
		RateLimitRPS:   cfg.App.RateLimitRPS,
		RateLimitBurst: cfg.App.RateLimitBurst,
		CorsOrigins:    cfg.App.CorsOrigins,
	}, nodeService)

	// 9. 运行 (阻塞)
	server.New(server.Config{HttpPort: cfg.App.HttpPort}, r).Run()

	logger.Info("系统已退出")
}

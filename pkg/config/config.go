package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Eth       EthConfig       `mapstructure:"eth"`
	GasOracle GasOracleConfig `mapstructure:"gas_oracle"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Send      SendConfig      `mapstructure:"send"`
	MQ        MQConfig        `mapstructure:"mq"`
}

type AppConfig struct {
	Env            string   `mapstructure:"env"`
	LogLevel       string   `mapstructure:"log_level"` // 空 = 按 env 默认
	HttpPort       string   `mapstructure:"http_port"`
	RateLimitRPS   int      `mapstructure:"rate_limit_rps"` // 0 = 不限流
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	CorsOrigins    []string `mapstructure:"cors_origins"`
}

type EthConfig struct {
	RpcUrl     string        `mapstructure:"rpc_url"`
	RpcTimeout time.Duration `mapstructure:"rpc_timeout"` // 单次 RPC 调用超时
}

type GasOracleConfig struct {
	Url      string        `mapstructure:"url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // 0 = 每次都实时查询
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	BlockTTL time.Duration `mapstructure:"block_ttl"` // 0 = 不缓存区块
}

type SendConfig struct {
	WaitReceipt    bool          `mapstructure:"wait_receipt"`
	ReceiptTimeout time.Duration `mapstructure:"receipt_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
}

type MQConfig struct {
	Type    string   `mapstructure:"type"` // "none", "redis" or "kafka"
	Topic   string   `mapstructure:"topic"`
	Brokers []string `mapstructure:"brokers"`
}

var Global Config

// Init 加载配置: .env -> config.yaml -> 环境变量 (APP_ENV, ETH_RPC_URL ...)
func Init() {
	if err := Load(""); err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load 读取配置到 Global; file 为空时按默认路径查找 config.yaml
func Load(file string) error {
	// .env 是可选的
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return err
	}
	Global = cfg
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "")
	v.SetDefault("app.http_port", "8080")
	v.SetDefault("app.rate_limit_rps", 0)
	v.SetDefault("app.rate_limit_burst", 20)
	v.SetDefault("app.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("eth.rpc_url", "http://localhost:8545")
	v.SetDefault("eth.rpc_timeout", 15*time.Second)

	v.SetDefault("gas_oracle.url", "https://ethgasstation.info/json/ethgasAPI.json")
	v.SetDefault("gas_oracle.timeout", 10*time.Second)
	v.SetDefault("gas_oracle.cache_ttl", time.Duration(0))

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.block_ttl", time.Duration(0))

	v.SetDefault("send.wait_receipt", true)
	v.SetDefault("send.receipt_timeout", 2*time.Minute)
	v.SetDefault("send.poll_interval", 2*time.Second)
	v.SetDefault("send.lock_ttl", time.Minute)

	v.SetDefault("mq.type", "none")
	v.SetDefault("mq.topic", "eth_gateway_tx_sent")
	v.SetDefault("mq.brokers", []string{"localhost:9092"})
}

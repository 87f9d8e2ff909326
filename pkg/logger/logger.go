package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局 Logger; 包级函数都通过它输出
var Log = zap.NewNop()

// Options 控制 Logger 的输出格式与级别
type Options struct {
	Env   string // production 输出 JSON, 其他输出彩色 console
	Level string // debug / info / warn / error; 空串按 Env 取默认
}

// New 按 Options 构建一个 Logger, 不修改全局 Log
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	if opts.Env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	return config.Build(zap.AddCallerSkip(1)) // 包级函数多一层调用, caller 指向真实位置
}

// Init 替换全局 Logger; 配置错误直接 panic, 只在启动阶段调用
func Init(opts Options) {
	l, err := New(opts)
	if err != nil {
		panic(err)
	}
	Log = l
	zap.ReplaceGlobals(Log)
}

func Sync() {
	_ = Log.Sync()
}

// With 返回携带固定字段的子 Logger (不跳过 caller)
func With(fields ...zap.Field) *zap.Logger {
	return Log.WithOptions(zap.AddCallerSkip(-1)).With(fields...)
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

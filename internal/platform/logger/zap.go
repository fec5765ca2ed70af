package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 初始化 Zap Logger。
// debug 模式：控制台彩色输出，人类可读；
// 其他模式：JSON 输出，机器可读。level 非空时覆盖缺省日志级别。
func New(mode, level string) *zap.Logger {
	var config zap.Config

	if mode == "debug" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if level != "" {
		if lv, err := zapcore.ParseLevel(level); err == nil {
			config.Level = zap.NewAtomicLevelAt(lv)
		}
	}

	logger, err := config.Build()
	if err != nil {
		os.Exit(1)
	}

	return logger
}

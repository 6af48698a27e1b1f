package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func InitLogger(logLevel string) {
	cfg := zap.NewDevelopmentConfig()

	level, parseErr := zapcore.ParseLevel(logLevel)
	if parseErr != nil {
		level = zap.InfoLevel
	}
	cfg.Level.SetLevel(level)

	lgr, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("构建日志器失败: %w", err))
	}

	zap.ReplaceGlobals(lgr)

	if parseErr != nil {
		zap.S().Warnf("未知的日志级别 %q，使用 info", logLevel)
	}
}

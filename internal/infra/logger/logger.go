/*
 * @Description: zap 日志初始化
 * @Author: 安知鱼
 * @Date: 2025-10-02 14:05:11
 * @LastEditTime: 2025-10-02 14:05:11
 * @LastEditors: 安知鱼
 */
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 按级别和格式构建 zap.Logger，并替换全局 logger。
// format 为 "console" 时使用开发模式输出，其余情况输出 JSON。
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("无效的日志级别 '%s': %w", level, err)
		}
		lvl = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("构建 zap logger 失败: %w", err)
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

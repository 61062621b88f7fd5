package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slowQuery 慢查询阈值
const slowQuery = 200 * time.Millisecond

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
}

// GormLogger 将 gorm 日志写入 zap，查询日志统一带 sql/rows/elapsed 字段
type GormLogger struct {
	log   *zap.Logger
	slow  time.Duration
	level gormlogger.LogLevel
}

// NewGormLogger 按数据库日志级别创建，未知级别按 warn 处理
func NewGormLogger(level string) *GormLogger {
	return newGormLogger(Get().Logger.WithOptions(zap.AddCallerSkip(2)).Named("gorm"), parseGormLevel(level), slowQuery)
}

func newGormLogger(log *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *GormLogger {
	return &GormLogger{log: log, slow: slow, level: level}
}

func parseGormLevel(level string) gormlogger.LogLevel {
	if l, ok := gormLevels[level]; ok {
		return l
	}
	return gormlogger.Warn
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return newGormLogger(l.log, level, l.slow)
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	l.printf(gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	l.printf(gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	l.printf(gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(threshold gormlogger.LogLevel, lvl zapcore.Level, msg string, data []interface{}) {
	if l.level >= threshold {
		l.log.Log(lvl, fmt.Sprintf(msg, data...))
	}
}

// Trace 记录每条 SQL: 出错记 error，超过阈值记 warn，info 级别下其余记 debug
// gorm.ErrRecordNotFound 不视为错误
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.slow > 0 && elapsed > l.slow

	var lvl zapcore.Level
	var msg string
	switch {
	case failed && l.level >= gormlogger.Error:
		lvl, msg = zapcore.ErrorLevel, "gorm error"
	case slow && l.level >= gormlogger.Warn:
		lvl, msg = zapcore.WarnLevel, "gorm slow query"
	case l.level >= gormlogger.Info:
		lvl, msg = zapcore.DebugLevel, "gorm query"
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed)}
	if failed {
		fields = append(fields, zap.Error(err))
	}
	l.log.Log(lvl, msg, fields...)
}

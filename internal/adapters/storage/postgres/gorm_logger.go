package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"petrack/internal/platform/logger"
)

const slowQuery = 200 * time.Millisecond

// gormLogger manda los logs de gorm al logger de la app.
type gormLogger struct {
	log   logger.Logger
	level gormlogger.LogLevel
}

func newGormLogger(log logger.Logger) gormlogger.Interface {
	if log == nil {
		log = logger.Nop()
	}
	return &gormLogger{log: log.With(logger.Fields{"component": "gorm"}), level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.from(ctx).Info(fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.from(ctx).Warn(fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.from(ctx).Error(fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.from(ctx).Error("query failed", logger.Fields{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(), "err": err})
	case elapsed > slowQuery && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.from(ctx).Warn("slow query", logger.Fields{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()})
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.from(ctx).Debug("query", logger.Fields{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()})
	}
}

// from prefiere el logger del request (con request_id) si lo hay.
func (l *gormLogger) from(ctx context.Context) logger.Logger {
	return logger.FromContext(ctx, l.log)
}

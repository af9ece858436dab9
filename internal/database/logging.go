package database

import (
	"context"
	"database/sql"
	"time"
)

// executor is the subset of *sql.DB the adapter needs.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

// loggingExecutor logs statements after they run. Bind values are never
// logged, only their count.
type loggingExecutor struct {
	inner     executor
	logger    Logger
	logSQL    bool
	slowQuery time.Duration
}

func (l *loggingExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := l.inner.ExecContext(ctx, query, args...)
	l.log(query, len(args), time.Since(start), err)
	return res, err
}

func (l *loggingExecutor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := l.inner.QueryContext(ctx, query, args...)
	l.log(query, len(args), time.Since(start), err)
	return rows, err
}

func (l *loggingExecutor) log(query string, argc int, dur time.Duration, err error) {
	slow := l.slowQuery > 0 && dur >= l.slowQuery
	if !l.logSQL && !slow {
		return
	}
	prefix := "[SQL]"
	if slow {
		prefix = "[SQL SLOW]"
	}
	l.logger.Printf("%s sql=%s argc=%d dur=%s err=%v", prefix, truncateSQL(query, 2048), argc, dur, err)
}

func truncateSQL(sql string, maxLen int) string {
	if len(sql) <= maxLen {
		return sql
	}
	return sql[:maxLen] + "..."
}

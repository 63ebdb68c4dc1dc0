package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/ngrok/sqlmw"
	"github.com/prometheus/client_golang/prometheus"
)

const instrumentedDriverName = "pgx-instrumented"

var (
	opRegex     = regexp.MustCompile(`^\s*(\w+)`)
	pgOpLatency *prometheus.HistogramVec
	pgOpTotal   *prometheus.CounterVec

	registerDriverOnce sync.Once
)

func init() {
	pgOpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "survey_profiler",
		Subsystem: "store",
		Name:      "pg_op_duration_milliseconds",
		Help:      "Time spent on a postgres operation",
		Buckets:   []float64{5, 25, 100, 300, 1000, 5000},
	},
		[]string{"op", "method"},
	)
	pgOpTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "survey_profiler",
		Subsystem: "store",
		Name:      "pg_op_total",
		Help:      "Number of postgres operations",
	},
		[]string{"op"},
	)

	prometheus.MustRegister(pgOpLatency)
	prometheus.MustRegister(pgOpTotal)
}

// instrumentedDriver registers the pgx stdlib driver wrapped with the metric interceptor
// and returns its name.
func instrumentedDriver() string {
	registerDriverOnce.Do(func() {
		sql.Register(instrumentedDriverName, sqlmw.Driver(stdlib.GetDefaultDriver(), &metricInterceptor{}))
	})
	return instrumentedDriverName
}

type metricInterceptor struct {
	sqlmw.NullInterceptor
}

func (mi *metricInterceptor) ConnBeginTx(ctx context.Context, conn driver.ConnBeginTx, opts driver.TxOptions) (context.Context, driver.Tx, error) {
	defer mi.measure("conn-begin-tx", "begin", time.Now())

	tx, err := conn.BeginTx(ctx, opts)
	return ctx, tx, err
}

func (mi *metricInterceptor) ConnExecContext(ctx context.Context, conn driver.ExecerContext, query string, args []driver.NamedValue) (driver.Result, error) {
	defer mi.measure("conn-exec-context", statementVerb(query, "exec"), time.Now())

	return conn.ExecContext(ctx, query, args)
}

func (mi *metricInterceptor) ConnQueryContext(ctx context.Context, conn driver.QueryerContext, query string, args []driver.NamedValue) (context.Context, driver.Rows, error) {
	defer mi.measure("conn-query-context", statementVerb(query, "query"), time.Now())

	rows, err := conn.QueryContext(ctx, query, args)
	return ctx, rows, err
}

func (mi *metricInterceptor) ConnectorConnect(ctx context.Context, conn driver.Connector) (driver.Conn, error) {
	defer mi.measure("connector-connect", "connect", time.Now())
	return conn.Connect(ctx)
}

func (mi *metricInterceptor) TxCommit(ctx context.Context, conn driver.Tx) error {
	defer mi.measure("tx-commit", "commit", time.Now())
	return conn.Commit()
}

func (mi *metricInterceptor) TxRollback(ctx context.Context, conn driver.Tx) error {
	defer mi.measure("tx-rollback", "rollback", time.Now())
	return conn.Rollback()
}

func (mi *metricInterceptor) measure(op, method string, start time.Time) {
	pgOpTotal.With(prometheus.Labels{"op": op}).Inc()
	pgOpLatency.With(prometheus.Labels{"op": op, "method": method}).
		Observe(float64(time.Since(start).Milliseconds()))
}

// statementVerb returns the lowercased first keyword of query, e.g. "select".
func statementVerb(query, fallback string) string {
	m := opRegex.FindStringSubmatch(query)
	if len(m) < 2 {
		return fallback
	}
	return strings.ToLower(m[1])
}

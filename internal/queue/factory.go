package queue

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/policylens/survey-profiler/internal/config"
	"github.com/policylens/survey-profiler/internal/store"
)

const (
	BackendTable = "table"
	BackendPgmq  = "pgmq"
)

// New picks the queue backend named in the configuration. The pool is only needed by pgmq.
func New(cfg *config.Config, s store.Store, pool *pgxpool.Pool) (Queue, error) {
	name := cfg.Queue.Name
	if name == "" {
		name = DefaultName
	}

	switch cfg.Queue.Backend {
	case "", BackendTable:
		return NewTableQueue(s.QueueMessage(), name), nil
	case BackendPgmq:
		if pool == nil {
			return nil, fmt.Errorf("queue backend %q requires a postgres connection pool", BackendPgmq)
		}
		return NewPgmqQueue(pool, name), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}
}

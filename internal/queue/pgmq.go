package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrMessageNotFound = errors.New("queue message not found")

// PgmqQueue talks to a queue created with the pgmq postgres extension.
type PgmqQueue struct {
	pool *pgxpool.Pool
	name string
}

var _ Queue = (*PgmqQueue)(nil)

func NewPgmqQueue(pool *pgxpool.Pool, name string) *PgmqQueue {
	return &PgmqQueue{pool: pool, name: name}
}

// EnsureQueue creates the queue if it does not exist yet.
func (q *PgmqQueue) EnsureQueue(ctx context.Context) error {
	_, err := q.pool.Exec(ctx, "SELECT pgmq.create($1)", q.name)
	return err
}

func (q *PgmqQueue) Claim(ctx context.Context, n int, vt time.Duration) ([]Item, error) {
	rows, err := q.pool.Query(ctx,
		"SELECT msg_id, read_ct, enqueued_at, message FROM pgmq.read($1, $2, $3)",
		q.name, seconds(vt), n)
	if err != nil {
		return nil, fmt.Errorf("reading from %s: %w", q.name, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		var (
			item Item
			body []byte
		)
		if err := row.Scan(&item.MessageID, &item.ReadCount, &item.EnqueuedAt, &body); err != nil {
			return Item{}, err
		}
		item.Body = json.RawMessage(body)
		return item, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s messages: %w", q.name, err)
	}
	return items, nil
}

func (q *PgmqQueue) Delete(ctx context.Context, msgID int64) error {
	var found bool
	if err := q.pool.QueryRow(ctx, "SELECT pgmq.delete($1, $2::bigint)", q.name, msgID).Scan(&found); err != nil {
		return fmt.Errorf("deleting message %d from %s: %w", msgID, q.name, err)
	}
	if !found {
		zap.S().Named("pgmq_queue").Debugw("message already deleted", "queue", q.name, "msg_id", msgID)
	}
	return nil
}

func (q *PgmqQueue) SetVisibility(ctx context.Context, msgID int64, vt time.Duration) error {
	var id int64
	err := q.pool.QueryRow(ctx, "SELECT msg_id FROM pgmq.set_vt($1, $2::bigint, $3)", q.name, msgID, seconds(vt)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMessageNotFound
	}
	return err
}

func (q *PgmqQueue) Send(ctx context.Context, payload Payload) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := q.pool.QueryRow(ctx, "SELECT pgmq.send($1, $2::jsonb)", q.name, string(body)).Scan(&id); err != nil {
		return 0, fmt.Errorf("sending to %s: %w", q.name, err)
	}
	return id, nil
}

// pgmq takes whole seconds; round up so a claim never gets shorter than asked.
func seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

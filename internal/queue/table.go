package queue

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/internal/store"
)

// TableQueue keeps messages in the queue_messages table through the store.
type TableQueue struct {
	store store.QueueMessage
	name  string
}

var _ Queue = (*TableQueue)(nil)

func NewTableQueue(s store.QueueMessage, name string) *TableQueue {
	return &TableQueue{store: s, name: name}
}

func (q *TableQueue) Claim(ctx context.Context, n int, vt time.Duration) ([]Item, error) {
	msgs, err := q.store.Read(ctx, q.name, n, vt)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, Item{
			MessageID:  m.MsgID,
			ReadCount:  m.ReadCount,
			EnqueuedAt: m.EnqueuedAt,
			Body:       json.RawMessage(m.Message),
		})
	}
	return items, nil
}

func (q *TableQueue) Delete(ctx context.Context, msgID int64) error {
	found, err := q.store.Delete(ctx, q.name, msgID)
	if err != nil {
		return err
	}
	if !found {
		zap.S().Named("table_queue").Debugw("message already deleted", "queue", q.name, "msg_id", msgID)
	}
	return nil
}

func (q *TableQueue) SetVisibility(ctx context.Context, msgID int64, vt time.Duration) error {
	return q.store.SetVisibility(ctx, q.name, msgID, vt)
}

func (q *TableQueue) Send(ctx context.Context, payload Payload) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	return q.store.Send(ctx, q.name, body)
}

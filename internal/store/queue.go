package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/policylens/survey-profiler/internal/store/model"
)

// QueueMessage is a queue with visibility timeouts kept in the queue_messages table.
// A read hides the returned messages until their vt lapses; the caller deletes them once done.
type QueueMessage interface {
	Send(ctx context.Context, queue string, message []byte) (int64, error)
	Read(ctx context.Context, queue string, n int, vt time.Duration) ([]model.QueueMessage, error)
	SetVisibility(ctx context.Context, queue string, msgID int64, vt time.Duration) error
	// Delete reports false when the message was already gone.
	Delete(ctx context.Context, queue string, msgID int64) (bool, error)
}

type QueueMessageStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Make sure we conform to QueueMessage interface
var _ QueueMessage = (*QueueMessageStore)(nil)

func NewQueueMessageStore(db *gorm.DB) QueueMessage {
	return &QueueMessageStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (q *QueueMessageStore) Send(ctx context.Context, queue string, message []byte) (int64, error) {
	now := q.now()
	msg := model.QueueMessage{
		Queue:      queue,
		EnqueuedAt: now,
		VT:         now,
		Message:    message,
	}
	if err := q.getDB(ctx).Create(&msg).Error; err != nil {
		return 0, err
	}
	return msg.MsgID, nil
}

func (q *QueueMessageStore) Read(ctx context.Context, queue string, n int, vt time.Duration) ([]model.QueueMessage, error) {
	var claimed []model.QueueMessage

	err := q.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		now := q.now()

		var msgs []model.QueueMessage
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("queue = ? AND vt <= ?", queue, now).
			Order("msg_id").
			Limit(n).
			Find(&msgs).Error; err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(msgs))
		for _, m := range msgs {
			ids = append(ids, m.MsgID)
		}

		visibleAt := now.Add(vt)
		if err := tx.Model(&model.QueueMessage{}).
			Where("msg_id IN ?", ids).
			Updates(map[string]any{
				"vt":      visibleAt,
				"read_ct": gorm.Expr("read_ct + 1"),
			}).Error; err != nil {
			return err
		}

		for i := range msgs {
			msgs[i].VT = visibleAt
			msgs[i].ReadCount++
		}
		claimed = msgs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}

func (q *QueueMessageStore) SetVisibility(ctx context.Context, queue string, msgID int64, vt time.Duration) error {
	result := q.getDB(ctx).Model(&model.QueueMessage{}).
		Where("queue = ? AND msg_id = ?", queue, msgID).
		Update("vt", q.now().Add(vt))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (q *QueueMessageStore) Delete(ctx context.Context, queue string, msgID int64) (bool, error) {
	result := q.getDB(ctx).Where("queue = ? AND msg_id = ?", queue, msgID).Delete(&model.QueueMessage{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (q *QueueMessageStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return q.db.WithContext(ctx)
}

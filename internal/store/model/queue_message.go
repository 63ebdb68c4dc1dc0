package model

import "time"

// QueueMessage is a row of the table-backed queue. VT is the instant the message becomes
// visible to claimants again.
type QueueMessage struct {
	MsgID      int64     `gorm:"primaryKey;autoIncrement;column:msg_id"`
	Queue      string    `gorm:"not null;type:VARCHAR(100);index:queue_messages_queue_vt_idx,priority:1"`
	ReadCount  int       `gorm:"column:read_ct;not null"`
	EnqueuedAt time.Time `gorm:"not null"`
	VT         time.Time `gorm:"column:vt;not null;index:queue_messages_queue_vt_idx,priority:2"`
	Message    []byte    `gorm:"type:jsonb;not null"`
}

func (QueueMessage) TableName() string {
	return "queue_messages"
}

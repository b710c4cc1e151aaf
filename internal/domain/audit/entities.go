package audit

import "time"

// Entry records one successful status transition of a request. Rows are
// written once and never updated.
type Entry struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	EntryID    string    `gorm:"column:entry_id;size:36;uniqueIndex;not null" json:"entry_id"`
	RequestID  uint64    `gorm:"column:request_id;not null;index:idx_audit_request_time,priority:1" json:"-"`
	FromStatus string    `gorm:"column:from_status;size:32;not null" json:"from_status"`
	ToStatus   string    `gorm:"column:to_status;size:32;not null" json:"to_status"`
	ActorID    string    `gorm:"column:actor_id;size:64;not null" json:"actor_id"`
	Reason     *string   `gorm:"column:reason;type:text" json:"reason,omitempty"`
	Notes      *string   `gorm:"column:notes;type:text" json:"notes,omitempty"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index:idx_audit_request_time,priority:2" json:"occurred_at"`
}

func (Entry) TableName() string { return "audit_entries" }

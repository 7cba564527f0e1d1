package notification

import "time"

type Type string

const (
	TypePaymentReminder Type = "payment_reminder"
	TypeLoanDue         Type = "loan_due"
	TypeLoanUpdate      Type = "loan_update"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Table: notifications
type Notification struct {
	ID             uint64     `gorm:"primaryKey;column:id" json:"-" bson:"-"`
	NotificationID string     `gorm:"column:notification_id;size:32;uniqueIndex" json:"notification_id" bson:"_id"`
	EventID        string     `gorm:"column:event_id;size:36;uniqueIndex" json:"event_id" bson:"event_id"`
	Type           Type       `gorm:"column:type;size:32;not null" json:"type" bson:"type"`
	Title          string     `gorm:"column:title;size:128;not null" json:"title" bson:"title"`
	Message        string     `gorm:"column:message;type:text;not null" json:"message" bson:"message"`
	MemberID       string     `gorm:"column:member_id;size:64;index:idx_notifications_member" json:"member_id" bson:"member_id"`
	LoanID         string     `gorm:"column:loan_id;size:32;index" json:"loan_id" bson:"loan_id"`
	Channel        string     `gorm:"column:channel;size:16;not null;default:'sms'" json:"channel" bson:"channel"`
	Status         Status     `gorm:"column:status;size:16;not null;index" json:"status" bson:"status"`
	Priority       Priority   `gorm:"column:priority;size:16;not null;default:'medium'" json:"priority" bson:"priority"`
	ScheduledFor   *time.Time `gorm:"column:scheduled_for;index" json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty"`
	SentAt         *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime;index:idx_notifications_member" json:"created_at" bson:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

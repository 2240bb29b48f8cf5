package model

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

const (
	LevelSuccess = "success"
	LevelError   = "error"
)

const (
	EventAccountCreated    = "account.created"
	EventAccountSelected   = "account.selected"
	EventAccountDeleted    = "account.deleted"
	EventTransactionPosted = "transaction.posted"
	EventTransactionFailed = "transaction.failed"
)

// Notification 面向用户的操作结果通知，先写入 outbox 再由后台任务投递
type Notification struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Event      string    `gorm:"type:varchar(32);not null" json:"event"`
	Level      string    `gorm:"type:varchar(16);not null" json:"level"`
	AccountID  string    `gorm:"type:varchar(36);index" json:"account_id,omitempty"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Notification) TableName() string {
	return "notification_outbox"
}

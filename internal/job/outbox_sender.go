package job

import (
	"context"
	"sync"
	"time"

	"bankdemo/internal/config"
	"bankdemo/internal/model"
	"bankdemo/internal/repository"

	"github.com/sirupsen/logrus"
)

// Publisher 通知投递目标
type Publisher interface {
	Publish(ctx context.Context, n *model.Notification) error
	Close() error
}

// NotificationSender 轮询 outbox，把待发送的通知投递给 Publisher
type NotificationSender struct {
	outboxRepo    *repository.OutboxRepository
	publisher     Publisher
	log           logrus.FieldLogger
	stopCh        chan struct{}
	stopOnce      sync.Once
	interval      time.Duration
	batchSize     int
	maxRetryCount int
}

func NewNotificationSender(outboxRepo *repository.OutboxRepository, publisher Publisher, cfg *config.Config, log logrus.FieldLogger) *NotificationSender {
	return &NotificationSender{
		outboxRepo:    outboxRepo,
		publisher:     publisher,
		log:           log.WithField("job", "NotificationSender"),
		stopCh:        make(chan struct{}),
		interval:      cfg.Notify.Interval,
		batchSize:     cfg.Notify.BatchSize,
		maxRetryCount: cfg.Business.MaxRetryCount,
	}
}

func (s *NotificationSender) Start(ctx context.Context) {
	s.log.Info("通知发送任务启动")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("收到停止信号，任务退出")
			return
		case <-s.stopCh:
			s.log.Info("任务停止")
			return
		case <-ticker.C:
			s.ProcessPending(ctx)
		}
	}
}

func (s *NotificationSender) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// ProcessPending 投递一批待发送通知
func (s *NotificationSender) ProcessPending(ctx context.Context) {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		s.log.WithError(err).Error("查询待发送通知失败")
		return
	}

	for _, msg := range messages {
		s.send(ctx, msg)
	}
}

func (s *NotificationSender) send(ctx context.Context, msg *model.Notification) {
	entry := s.log.WithField("notification_id", msg.ID).WithField("event", msg.Event)

	err := s.publisher.Publish(ctx, msg)
	if err == nil {
		if updateErr := s.outboxRepo.UpdateStatus(ctx, msg.ID, model.OutboxStatusSent); updateErr != nil {
			entry.WithError(updateErr).Error("更新通知状态失败")
		} else {
			entry.Debug("通知发送成功")
		}
		return
	}

	entry.WithError(err).Warn("通知发送失败")

	if msg.RetryCount+1 >= s.maxRetryCount {
		if err := s.outboxRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			entry.WithError(err).Error("标记通知失败状态失败")
		} else {
			entry.Warn("通知超过最大重试次数，标记为失败")
		}
		return
	}

	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		entry.WithError(err).Error("增加重试次数失败")
	}
}

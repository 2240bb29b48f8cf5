package job

import (
	"context"
	"sync"
	"time"

	"bankdemo/internal/repository"

	"github.com/sirupsen/logrus"
)

// OutboxPurgeJob 定期清理已发送的通知，避免内存 outbox 无限增长
type OutboxPurgeJob struct {
	outboxRepo *repository.OutboxRepository
	log        logrus.FieldLogger
	stopCh     chan struct{}
	stopOnce   sync.Once
	interval   time.Duration
	keep       int
}

func NewOutboxPurgeJob(outboxRepo *repository.OutboxRepository, interval time.Duration, keep int, log logrus.FieldLogger) *OutboxPurgeJob {
	return &OutboxPurgeJob{
		outboxRepo: outboxRepo,
		log:        log.WithField("job", "OutboxPurgeJob"),
		stopCh:     make(chan struct{}),
		interval:   interval,
		keep:       keep,
	}
}

func (j *OutboxPurgeJob) Start(ctx context.Context) {
	j.log.Info("通知清理任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("收到停止信号，任务退出")
			return
		case <-j.stopCh:
			j.log.Info("任务停止")
			return
		case <-ticker.C:
			j.Purge(ctx)
		}
	}
}

func (j *OutboxPurgeJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
}

// Purge 执行一次清理
func (j *OutboxPurgeJob) Purge(ctx context.Context) {
	removed, err := j.outboxRepo.Purge(ctx, j.keep)
	if err != nil {
		j.log.WithError(err).Error("清理通知失败")
		return
	}
	if removed > 0 {
		j.log.WithField("removed", removed).Debug("已清理发送完成的通知")
	}
}

package mq

import (
	"context"

	"bankdemo/internal/model"

	"github.com/sirupsen/logrus"
)

// LogPublisher 未配置消息中间件时的默认投递方式：写结构化日志
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, n *model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := p.log.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"event":           n.Event,
		"account_id":      n.AccountID,
	})
	if n.Level == model.LevelError {
		entry.Warn(n.Message)
	} else {
		entry.Info(n.Message)
	}
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

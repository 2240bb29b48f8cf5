package mq

import (
	"context"
	"encoding/json"

	"bankdemo/internal/config"
	"bankdemo/internal/model"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// KafkaPublisher 将通知同步写入 Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      logrus.FieldLogger
}

// NewKafkaProducer 初始化 Kafka 生产者
func NewKafkaProducer(cfg *config.KafkaConfig) (sarama.SyncProducer, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll // 等待所有副本确认
	kafkaConfig.Producer.Retry.Max = 3                    // 重试次数
	kafkaConfig.Producer.Return.Successes = true          // 返回成功消息

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kafkaConfig)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	return producer, nil
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, log logrus.FieldLogger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

// Publish 发送通知，以账户ID为 key 保证同一账户的通知有序
func (p *KafkaPublisher) Publish(ctx context.Context, n *model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "encode notification")
	}

	key := n.AccountID
	if key == "" {
		key = n.Event
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errors.Wrapf(err, "send notification %d", n.ID)
	}
	p.log.WithFields(logrus.Fields{
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
	}).Debug("notification delivered to kafka")
	return nil
}

// Close 关闭 Kafka 生产者
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

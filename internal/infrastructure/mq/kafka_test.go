package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"bankdemo/internal/model"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

func TestKafkaPublisherSendsJSONKeyedByAccount(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got model.Notification
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.AccountID != "acc-1" || got.Event != model.EventAccountCreated {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewKafkaPublisher(producer, "bank.notifications", quietLogger())
	err := p.Publish(context.Background(), &model.Notification{
		ID:        1,
		Event:     model.EventAccountCreated,
		AccountID: "acc-1",
		Message:   "Account created successfully!",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestKafkaPublisherReturnsSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisher(producer, "bank.notifications", quietLogger())
	err := p.Publish(context.Background(), &model.Notification{ID: 7, Event: model.EventAccountDeleted})

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(quietLogger())
	assert.NoError(t, p.Publish(context.Background(), &model.Notification{Level: model.LevelError, Message: "boom"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, &model.Notification{}), context.Canceled)
	assert.NoError(t, p.Close())
}

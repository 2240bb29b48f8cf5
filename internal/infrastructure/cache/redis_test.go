package cache

import (
	"context"
	"testing"
	"time"

	"bankdemo/internal/config"
	"bankdemo/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient(&config.RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")
}

func TestRedisPublisherWrapsPublishError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	p := NewRedisPublisher(client, "bank.notifications")

	err := p.Publish(context.Background(), &model.Notification{ID: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish notification 3")
	assert.NoError(t, p.Close())
}

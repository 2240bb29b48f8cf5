package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bankdemo/internal/config"
	"bankdemo/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// NewRedisClient 创建 Redis 客户端并检查连通性
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "connect redis")
	}
	return client, nil
}

// RedisPublisher 通过 Redis pub/sub 广播通知，前端网关订阅同一频道
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "encode notification")
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return errors.Wrapf(err, "publish notification %d", n.ID)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
